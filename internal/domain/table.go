package domain

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// naTokens are the cell values treated as missing, matching the defaults
// used by pandas when the dataset was first explored.
var naTokens = map[string]struct{}{
	"":       {},
	"NA":     {},
	"N/A":    {},
	"n/a":    {},
	"#N/A":   {},
	"NaN":    {},
	"nan":    {},
	"-NaN":   {},
	"-nan":   {},
	"null":   {},
	"NULL":   {},
	"None":   {},
	"<NA>":   {},
	"#NA":    {},
	"1.#IND": {},
}

// IsMissing reports whether a raw cell value represents a missing value.
func IsMissing(value string) bool {
	_, ok := naTokens[strings.TrimSpace(value)]
	return ok
}

// Table is an ordered sequence of rows sharing one column set.
// Every operation returns a new Table; a Table is never modified after construction.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a Table, copying the header and rows. Every row must have
// exactly one cell per column and column names must be unique.
func NewTable(columns []string, rows [][]string) (Table, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; dup {
			return Table{}, fmt.Errorf("duplicate column %q", col)
		}
		index[col] = i
	}

	copied := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return Table{}, fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(columns))
		}
		copied[i] = slices.Clone(row)
	}

	return Table{columns: slices.Clone(columns), index: index, rows: copied}, nil
}

// derive shares the receiver's header with a new row set. Row slices are
// treated as read-only, so sharing them between tables is safe.
func (t Table) derive(rows [][]string) Table {
	return Table{columns: t.columns, index: t.index, rows: rows}
}

// Columns returns the column names in order.
func (t Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// Has reports whether the table has the named column.
func (t Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Record returns the i-th row.
func (t Table) Record(i int) Record {
	return Record{index: t.index, values: t.rows[i]}
}

// Records returns all rows in order.
func (t Table) Records() []Record {
	out := make([]Record, len(t.rows))
	for i := range t.rows {
		out[i] = t.Record(i)
	}
	return out
}

// Column returns the raw cells of one column.
func (t Table) Column(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Floats parses one column as float64. Missing or non-numeric cells are errors.
func (t Table) Floats(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for r, cell := range cells {
		v, err := parseFloat(cell)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, r+1, err)
		}
		out[r] = v
	}
	return out, nil
}

// Filter returns the rows for which keep returns true, in their original order.
func (t Table) Filter(keep func(Record) bool) Table {
	rows := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(Record{index: t.index, values: row}) {
			rows = append(rows, row)
		}
	}
	return t.derive(rows)
}

// SortStable returns the rows ordered by less; equal rows keep their relative order.
func (t Table) SortStable(less func(a, b Record) bool) Table {
	rows := slices.Clone(t.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return less(Record{index: t.index, values: rows[i]}, Record{index: t.index, values: rows[j]})
	})
	return t.derive(rows)
}

// WithColumn returns a table with a column computed per row. An existing
// column of the same name is recomputed in place; otherwise the column is appended.
func (t Table) WithColumn(name string, compute func(Record) (string, error)) (Table, error) {
	pos, exists := t.index[name]
	columns := t.columns
	index := t.index
	if !exists {
		columns = append(slices.Clone(t.columns), name)
		index = maps.Clone(t.index)
		pos = len(t.columns)
		index[name] = pos
	}

	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		value, err := compute(Record{index: t.index, values: row})
		if err != nil {
			return Table{}, fmt.Errorf("derive %q row %d: %w", name, r+1, err)
		}
		next := make([]string, len(columns))
		copy(next, row)
		next[pos] = value
		rows[r] = next
	}

	return Table{columns: columns, index: index, rows: rows}, nil
}

// Group is the subset of rows sharing one value of the group-by column.
type Group struct {
	Key  string
	Rows Table
}

// GroupBy partitions the table by the values of one column. Groups are
// returned in order of each key's first appearance.
func (t Table) GroupBy(column string) ([]Group, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	var keys []string
	buckets := map[string][][]string{}
	for _, row := range t.rows {
		key := row[i]
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], row)
	}

	groups := make([]Group, len(keys))
	for g, key := range keys {
		groups[g] = Group{Key: key, Rows: t.derive(buckets[key])}
	}
	return groups, nil
}

// Rows returns a copy of the raw cells, suitable for writers.
func (t Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// Record is a read-only view of one row.
type Record struct {
	index  map[string]int
	values []string
}

// Value returns the raw cell for a column.
func (r Record) Value(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Float parses a cell as float64.
func (r Record) Float(column string) (float64, error) {
	v, ok := r.Value(column)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	return parseFloat(v)
}

// Int parses a cell as an integer. Integral float notation such as "8.0"
// is accepted because NA-bearing numeric columns are often exported as floats;
// signs other than a leading minus, exponents, and fractions are not.
func (r Record) Int(column string) (int, error) {
	v, ok := r.Value(column)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	return parseInt(v)
}

// HasMissing reports whether any cell of the row is missing.
func (r Record) HasMissing() bool {
	return slices.ContainsFunc(r.values, IsMissing)
}

// Map returns the row keyed by column name.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.index))
	for col, i := range r.index {
		out[col] = r.values[i]
	}
	return out
}

func parseFloat(s string) (float64, error) {
	if IsMissing(s) {
		return 0, ErrMissingValue
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

var integralPattern = regexp.MustCompile(`^(-?\d+)(\.0+)?$`)

func parseInt(s string) (int, error) {
	if IsMissing(s) {
		return 0, ErrMissingValue
	}
	m := integralPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("parse %q: not an integer", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return n, nil
}
