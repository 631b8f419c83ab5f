// Package chart renders report figures as PNG files with gonum/plot.
package chart

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

// File names written into the chart directory.
const (
	SpeedByDayHourFile = "speed_by_dayhour.png"
	SpeedEnergyFile    = "speed_vs_energy.png"
	MatrixHeatmapFile  = "holiday_weather_heatmap.png"
)

const fitSamples = 100

// Charts writes the report figures into one directory.
// It implements pipeline.ReportSink.
type Charts struct {
	dir    string
	logger *slog.Logger
}

// NewCharts creates a sink writing PNG files into dir.
func NewCharts(dir string, logger *slog.Logger) *Charts {
	return &Charts{dir: dir, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (c *Charts) Name() string { return "charts" }

// Render draws every figure the report has data for. Figures whose inputs
// were skipped are left out; the heatmap is always drawn.
func (c *Charts) Render(ctx context.Context, cleaned domain.Table, report *domain.Report) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	var written []string
	save := func(name string, p *plot.Plot, w, h vg.Length) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(c.dir, name)
		if err := p.Save(w, h, path); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		written = append(written, name)
		return nil
	}

	if report.SpeedByDayHour != nil {
		p, err := SpeedByDayHour(*report.SpeedByDayHour)
		if err != nil {
			return err
		}
		if err := save(SpeedByDayHourFile, p, 14*vg.Inch, 6*vg.Inch); err != nil {
			return err
		}
	}

	if report.SpeedEnergyFit != nil {
		p, err := SpeedVsEnergy(cleaned, *report.SpeedEnergyFit, report.FitsByVehicle)
		if err != nil {
			return err
		}
		if err := save(SpeedEnergyFile, p, 8*vg.Inch, 6*vg.Inch); err != nil {
			return err
		}
	}

	p, err := MatrixHeatmap(report.Matrix)
	if err != nil {
		return err
	}
	if err := save(MatrixHeatmapFile, p, 9*vg.Inch, 7*vg.Inch); err != nil {
		return err
	}

	c.logger.Info("charts written", "dir", c.dir, "files", written)
	return nil
}

// SpeedByDayHour draws a bar per DayHour key. Only the first bar of each
// weekday carries a tick label, so the axis reads as a sequence of days.
func SpeedByDayHour(s domain.Summary) (*plot.Plot, error) {
	col := -1
	for i, c := range s.Columns {
		if c.Column == domain.ColSpeed && c.Agg == domain.AggMean {
			col = i
		}
	}
	if col < 0 || len(s.Rows) == 0 {
		return nil, errors.New("speed by dayhour: no mean speed values")
	}

	values := make(plotter.Values, len(s.Rows))
	for i, r := range s.Rows {
		values[i] = r.Values[col]
	}

	p := plot.New()
	p.Title.Text = "Average Speed by Day and Hour"
	p.X.Label.Text = "Day"
	p.Y.Label.Text = "Average Speed"

	bars, err := plotter.NewBarChart(values, vg.Points(6))
	if err != nil {
		return nil, fmt.Errorf("speed by dayhour: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)

	p.Add(plotter.NewGrid())
	p.Add(bars)
	p.NominalX(DayLabels(s.Keys())...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return p, nil
}

// DayLabels keeps the weekday part of a DayHour key the first time that
// weekday appears and blanks it afterwards.
func DayLabels(keys []string) []string {
	seen := map[string]bool{}
	labels := make([]string, len(keys))
	for i, k := range keys {
		day, _, _ := strings.Cut(k, "_")
		if !seen[day] {
			labels[i] = day
			seen[day] = true
		}
	}
	return labels
}

// SpeedVsEnergy scatters Speed (x) against Energy Consumption (y), one colour
// per vehicle type, and overlays the overall fit plus one dashed fit per
// vehicle type in that vehicle's colour.
func SpeedVsEnergy(cleaned domain.Table, fit domain.LinearFit, byVehicle []domain.GroupFit) (*plot.Plot, error) {
	groups := []domain.Group{{Key: "All", Rows: cleaned}}
	if cleaned.Has(domain.ColVehicleType) {
		var err error
		if groups, err = cleaned.GroupBy(domain.ColVehicleType); err != nil {
			return nil, fmt.Errorf("speed vs energy: %w", err)
		}
	}

	p := plot.New()
	p.Title.Text = "Speed vs Energy Consumption"
	p.X.Label.Text = "Speed"
	p.Y.Label.Text = "Energy Consumption"
	p.Add(plotter.NewGrid())

	for i, g := range groups {
		pts, err := xyPoints(g.Rows, domain.ColSpeed, domain.ColEnergyConsumption)
		if err != nil {
			return nil, fmt.Errorf("speed vs energy: %w", err)
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("speed vs energy: %w", err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add(g.Key, sc)
	}

	groupLines, err := groupFitLines(groups, byVehicle)
	if err != nil {
		return nil, fmt.Errorf("speed vs energy: %w", err)
	}
	for _, l := range groupLines {
		p.Add(l)
	}

	line, err := fitLine(cleaned, fit, color.RGBA{R: 220, G: 20, B: 60, A: 255}, vg.Points(2))
	if err != nil {
		return nil, fmt.Errorf("speed vs energy: %w", err)
	}
	p.Add(line)
	p.Legend.Add("Linear fit", line)
	p.Legend.Top = true

	return p, nil
}

// groupFitLines draws the fit of every group that has one, coloured like the
// group's scatter.
func groupFitLines(groups []domain.Group, byVehicle []domain.GroupFit) ([]*plotter.Line, error) {
	fits := make(map[string]domain.LinearFit, len(byVehicle))
	for _, gf := range byVehicle {
		fits[gf.Key] = gf.Fit
	}

	var lines []*plotter.Line
	for i, g := range groups {
		fit, ok := fits[g.Key]
		if !ok {
			continue
		}
		line, err := fitLine(g.Rows, fit, plotutil.Color(i), vg.Points(1.5))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", g.Key, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// fitLine samples the regression of Speed on Energy Consumption across the
// energy range of rows and plots it, dashed, on the Speed/Energy axes.
func fitLine(rows domain.Table, fit domain.LinearFit, c color.Color, width vg.Length) (*plotter.Line, error) {
	energy, err := rows.Floats(fit.X)
	if err != nil {
		return nil, err
	}
	if len(energy) == 0 {
		return nil, domain.ErrInsufficientData
	}
	lo, hi := floats.Min(energy), floats.Max(energy)

	pts := make(plotter.XYs, fitSamples)
	step := (hi - lo) / float64(fitSamples-1)
	for i := range pts {
		e := lo + step*float64(i)
		pts[i].X = fit.Predict(e)
		pts[i].Y = e
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = width
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	return line, nil
}

func xyPoints(t domain.Table, x, y string) (plotter.XYs, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return nil, err
	}
	ys, err := t.Floats(y)
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts, nil
}

// MatrixHeatmap draws the holiday/weather matrix with each cell annotated.
func MatrixHeatmap(m domain.Matrix) (*plot.Plot, error) {
	if len(m.Holidays) == 0 || len(m.Weathers) == 0 {
		return nil, errors.New("matrix heatmap: empty matrix")
	}

	grid := matrixGrid{m: m}
	rows := len(m.Holidays)
	p := plot.New()
	p.Title.Text = "Average Energy Consumption by Holiday and Weather"

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for r, row := range m.Values {
		for c, v := range row {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(rows - 1 - r)})
			labels = append(labels, fmt.Sprintf("%.1f", v))
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("matrix heatmap: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = draw.XCenter
		lbl.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(lbl)

	p.NominalX(m.Weathers...)
	bottomUp := slices.Clone(m.Holidays)
	slices.Reverse(bottomUp)
	p.NominalY(bottomUp...)
	p.X.Label.Text = "Weather"
	p.Y.Label.Text = "Holiday"

	return p, nil
}

// matrixGrid adapts a Matrix to plotter.GridXYZ: columns are weathers, rows
// holidays. Grid rows count up from the bottom, so the first holiday is the
// top row.
type matrixGrid struct {
	m domain.Matrix
}

func (g matrixGrid) Dims() (c, r int)   { return len(g.m.Weathers), len(g.m.Holidays) }
func (g matrixGrid) Z(c, r int) float64 { return g.m.Values[len(g.m.Holidays)-1-r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }
