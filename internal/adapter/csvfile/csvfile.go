// Package csvfile reads the raw traffic dataset and writes the cleaned table.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

const utf8BOM = "\ufeff"

// Reader loads a CSV file into a domain.Table.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Load reads the whole file. The first row is the header. A leading unnamed
// column, as written by tools that export a row index, is dropped.
func (r *Reader) Load(ctx context.Context) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read %s: %w", r.path, err)
	}

	r.logger.Info("dataset loaded", "path", r.path, "rows", t.Len(), "columns", len(t.Columns()))
	return t, nil
}

// Decode parses CSV content into a Table.
func Decode(src io.Reader) (domain.Table, error) {
	reader := csv.NewReader(src)
	rows, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return domain.Table{}, fmt.Errorf("read csv: no header row")
	}

	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	body := rows[1:]
	if len(header) > 1 && header[0] == "" {
		header = header[1:]
		for i := range body {
			body[i] = body[i][1:]
		}
	}

	return domain.NewTable(header, body)
}

// Writer writes a cleaned table to a CSV file without a row-index column.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer for the file at path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Write replaces the output file. Content is written to a temporary file in
// the same directory and renamed into place, so readers never observe a
// partial file.
func (w *Writer) Write(ctx context.Context, t domain.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cleaned-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := Encode(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	w.logger.Info("cleaned dataset written", "path", w.path, "rows", t.Len())
	return nil
}

// Encode writes the header followed by every row.
func Encode(dst io.Writer, t domain.Table) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return err
	}
	return cw.Error()
}
