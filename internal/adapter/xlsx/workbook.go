// Package xlsx exports a report as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

const (
	overviewSheet = "Overview"
	dayHourSheet  = "Speed By DayHour"
	matrixSheet   = "Holiday Weather Matrix"

	maxSheetName = 31
)

// Workbook writes one sheet per report section.
// It implements pipeline.ReportSink.
type Workbook struct {
	path   string
	logger *slog.Logger
}

// NewWorkbook creates a sink writing to path.
func NewWorkbook(path string, logger *slog.Logger) *Workbook {
	return &Workbook{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Workbook) Name() string { return "workbook" }

// Render writes the workbook, replacing any existing file.
func (w *Workbook) Render(ctx context.Context, _ domain.Table, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeOverview(&sheet{f: f, name: overviewSheet}, report); err != nil {
		return err
	}

	for _, s := range report.Summaries {
		if err := addSheet(f, s.Name, func(sh *sheet) error { return writeSummary(sh, s) }); err != nil {
			return err
		}
	}
	if report.SpeedByDayHour != nil {
		if err := addSheet(f, dayHourSheet, func(sh *sheet) error { return writeSummary(sh, *report.SpeedByDayHour) }); err != nil {
			return err
		}
	}
	if err := addSheet(f, matrixSheet, func(sh *sheet) error { return writeMatrix(sh, report.Matrix) }); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("workbook written", "path", w.path, "sheets", len(f.GetSheetList()))
	return nil
}

func addSheet(f *excelize.File, title string, fill func(*sheet) error) error {
	name := SheetName(title)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %q: %w", name, err)
	}
	return fill(&sheet{f: f, name: name})
}

// sheet appends rows to one worksheet, remembering the first error.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	err  error
}

func (s *sheet) append(values ...any) {
	s.row++
	if s.err != nil {
		return
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, s.row)
		if err != nil {
			s.err = err
			return
		}
		if err := s.f.SetCellValue(s.name, cell, v); err != nil {
			s.err = fmt.Errorf("sheet %q cell %s: %w", s.name, cell, err)
			return
		}
	}
}

func (s *sheet) skip() { s.row++ }

func writeOverview(s *sheet, r *domain.Report) error {
	s.append("Generated At", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	s.skip()

	s.append("Cleaning", "Rows")
	s.append("Raw", r.Cleaning.RawRows)
	s.append("Dropped (missing values)", r.Cleaning.DroppedMissing)
	s.append("Dropped (excluded vehicle)", r.Cleaning.DroppedExcluded)
	s.append("Clean", r.Cleaning.CleanRows)
	s.skip()

	s.append("Column", "Missing Values")
	for _, c := range r.MissingByColumn {
		s.append(c.Column, c.Count)
	}

	if fit := r.SpeedEnergyFit; fit != nil {
		s.skip()
		s.append("Linear Fit", "Intercept", "Slope", "N")
		s.append(fit.Y+" ~ "+fit.X, fit.Intercept, fit.Slope, fit.N)
		for _, gf := range r.FitsByVehicle {
			s.append(gf.Key, gf.Fit.Intercept, gf.Fit.Slope, gf.Fit.N)
		}
	}

	if len(r.Skipped) > 0 {
		s.skip()
		s.append("Skipped", "Reason")
		for _, sk := range r.Skipped {
			s.append(sk.Name, sk.Reason)
		}
	}
	return s.err
}

func writeSummary(s *sheet, sum domain.Summary) error {
	header := []any{sum.GroupBy, "Count"}
	for _, c := range sum.Columns {
		header = append(header, c.Label())
	}
	s.append(header...)

	for _, row := range sum.Rows {
		values := []any{row.Key, row.Count}
		for _, v := range row.Values {
			values = append(values, v)
		}
		s.append(values...)
	}
	return s.err
}

func writeMatrix(s *sheet, m domain.Matrix) error {
	header := []any{"Holiday"}
	for _, w := range m.Weathers {
		header = append(header, w)
	}
	s.append(header...)

	for i, h := range m.Holidays {
		values := []any{h}
		for _, v := range m.Values[i] {
			values = append(values, v)
		}
		s.append(values...)
	}
	return s.err
}

// SheetName makes a report title usable as a sheet name: characters Excel
// forbids are replaced and the result is cut to 31 characters.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, title)
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}
