package chart

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotutil"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildReport(t *testing.T) (domain.Table, *domain.Report) {
	t.Helper()
	raw, err := domain.NewTable(
		[]string{domain.ColVehicleType, domain.ColDayOfWeek, domain.ColHourOfDay, domain.ColSpeed, domain.ColEnergyConsumption},
		[][]string{
			{"Drone", "Monday", "8", "30", "15"},
			{"Car", "Monday", "9", "50", "25"},
			{"Car", "Tuesday", "8", "55", "28"},
			{"Drone", "Wednesday", "22", "35", "18"},
		},
	)
	require.NoError(t, err)

	cleaned, stats, err := domain.Clean(raw, domain.DefaultCleanOptions())
	require.NoError(t, err)
	report, err := domain.BuildReport(domain.ReportInput{
		Raw: raw, Cleaned: cleaned, Stats: stats,
		Matrix: domain.DefaultMatrixSpec(),
	})
	require.NoError(t, err)
	return cleaned, report
}

func TestDayLabels(t *testing.T) {
	keys := []string{"Monday_00", "Monday_01", "Tuesday_05", "Tuesday_07", "Sunday_23"}
	assert.Equal(t, []string{"Monday", "", "Tuesday", "", "Sunday"}, DayLabels(keys))
	assert.Empty(t, DayLabels(nil))
}

func TestCharts_Render(t *testing.T) {
	cleaned, report := buildReport(t)
	require.NotNil(t, report.SpeedByDayHour)
	require.NotNil(t, report.SpeedEnergyFit)

	dir := filepath.Join(t.TempDir(), "charts")
	c := NewCharts(dir, testLogger())
	require.NoError(t, c.Render(context.Background(), cleaned, report))

	for _, name := range []string{SpeedByDayHourFile, SpeedEnergyFile, MatrixHeatmapFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Equal(t, "charts", c.Name())
}

func TestCharts_RenderSkipsMissingSections(t *testing.T) {
	cleaned, report := buildReport(t)
	report.SpeedByDayHour = nil
	report.SpeedEnergyFit = nil

	dir := t.TempDir()
	require.NoError(t, NewCharts(dir, testLogger()).Render(context.Background(), cleaned, report))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, MatrixHeatmapFile, entries[0].Name())
}

func TestSpeedByDayHour_NoSpeedColumn(t *testing.T) {
	_, err := SpeedByDayHour(domain.Summary{Name: "empty"})
	assert.Error(t, err)
}

func TestSpeedVsEnergy_WithoutVehicleType(t *testing.T) {
	tbl, err := domain.NewTable(
		[]string{domain.ColSpeed, domain.ColEnergyConsumption},
		[][]string{{"10", "1"}, {"20", "2"}},
	)
	require.NoError(t, err)
	fit, err := domain.FitLinear(tbl, domain.ColEnergyConsumption, domain.ColSpeed)
	require.NoError(t, err)

	p, err := SpeedVsEnergy(tbl, fit, nil)
	require.NoError(t, err)
	assert.Equal(t, "Speed vs Energy Consumption", p.Title.Text)
}

func TestSpeedVsEnergy_LinePerVehicle(t *testing.T) {
	cleaned, report := buildReport(t)
	require.Len(t, report.FitsByVehicle, 2)
	assert.Equal(t, "Drone", report.FitsByVehicle[0].Key)
	assert.Equal(t, "Car", report.FitsByVehicle[1].Key)

	p, err := SpeedVsEnergy(cleaned, *report.SpeedEnergyFit, report.FitsByVehicle)
	require.NoError(t, err)
	assert.NotNil(t, p)

	groups, err := cleaned.GroupBy(domain.ColVehicleType)
	require.NoError(t, err)
	lines, err := groupFitLines(groups, report.FitsByVehicle)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for i, l := range lines {
		assert.Equal(t, plotutil.Color(i), l.Color, "line %d", i)
		assert.NotEmpty(t, l.Dashes)
	}

	// A vehicle without a fit gets no line.
	lines, err = groupFitLines(groups, report.FitsByVehicle[1:])
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, plotutil.Color(1), lines[0].Color)
}

func TestMatrixHeatmap(t *testing.T) {
	m, err := domain.GenerateMatrix(domain.DefaultMatrixSpec())
	require.NoError(t, err)

	p, err := MatrixHeatmap(m)
	require.NoError(t, err)
	assert.Equal(t, "Holiday", p.Y.Label.Text)

	_, err = MatrixHeatmap(domain.Matrix{})
	assert.Error(t, err)
}

func TestMatrixGrid(t *testing.T) {
	g := matrixGrid{m: domain.Matrix{
		Holidays: []string{"a", "b"},
		Weathers: []string{"x", "y", "z"},
		Values:   [][]float64{{1, 2, 3}, {4, 5, 6}},
	}}

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	// Grid row 0 is the bottom row, which holds the last holiday.
	assert.Equal(t, 6.0, g.Z(2, 0))
	assert.Equal(t, 3.0, g.Z(2, 1))
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 1.0, g.X(1))
}
