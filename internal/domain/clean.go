package domain

import "fmt"

// CleanOptions controls the cleaning stage.
type CleanOptions struct {
	// ExcludedVehicleType is removed from the table. Empty disables the filter.
	ExcludedVehicleType string
	// IncludeTimeOfDay appends the TimeOfDayBucket column.
	IncludeTimeOfDay bool
}

// DefaultCleanOptions excludes flying cars and derives the time-of-day bucket.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{ExcludedVehicleType: FlyingCar, IncludeTimeOfDay: true}
}

// CleanStats counts rows through each cleaning step.
type CleanStats struct {
	RawRows         int `json:"raw_rows"`
	DroppedMissing  int `json:"dropped_missing"`
	DroppedExcluded int `json:"dropped_excluded"`
	CleanRows       int `json:"clean_rows"`
}

// ColumnCount pairs a column with a row count.
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Clean drops incomplete and excluded rows, sorts by weekday then hour, and
// derives the DayHour (and optionally TimeOfDayBucket) columns.
// The raw table is left untouched.
func Clean(raw Table, opts CleanOptions) (Table, CleanStats, error) {
	for _, col := range []string{ColDayOfWeek, ColHourOfDay} {
		if !raw.Has(col) {
			return Table{}, CleanStats{}, fmt.Errorf("clean: %w: %q", ErrMissingColumn, col)
		}
	}

	stats := CleanStats{RawRows: raw.Len()}

	complete := DropMissing(raw)
	stats.DroppedMissing = raw.Len() - complete.Len()

	kept := complete
	if opts.ExcludedVehicleType != "" && complete.Has(ColVehicleType) {
		kept = ExcludeValue(complete, ColVehicleType, opts.ExcludedVehicleType)
	}
	stats.DroppedExcluded = complete.Len() - kept.Len()

	hours := make(map[string]int)
	for _, rec := range kept.Records() {
		v, _ := rec.Value(ColHourOfDay)
		if _, ok := hours[v]; ok {
			continue
		}
		h, err := ParseHour(v)
		if err != nil {
			return Table{}, CleanStats{}, fmt.Errorf("clean: %w", err)
		}
		hours[v] = h
	}
	hourOf := func(r Record) int {
		v, _ := r.Value(ColHourOfDay)
		return hours[v]
	}

	sorted := SortByWeekdayHour(kept, hourOf)

	out, err := sorted.WithColumn(ColDayHour, func(r Record) (string, error) {
		day, _ := r.Value(ColDayOfWeek)
		return DayHour(day, hourOf(r)), nil
	})
	if err != nil {
		return Table{}, CleanStats{}, fmt.Errorf("clean: %w", err)
	}

	if opts.IncludeTimeOfDay {
		out, err = out.WithColumn(ColTimeOfDay, func(r Record) (string, error) {
			bucket, err := TimeOfDay(hourOf(r))
			return string(bucket), err
		})
		if err != nil {
			return Table{}, CleanStats{}, fmt.Errorf("clean: %w", err)
		}
	}

	stats.CleanRows = out.Len()
	return out, stats, nil
}

// DropMissing removes every row with a missing value in any column.
func DropMissing(t Table) Table {
	return t.Filter(func(r Record) bool { return !r.HasMissing() })
}

// ExcludeValue removes rows whose column equals value. A table without the
// column is returned unchanged.
func ExcludeValue(t Table, column, value string) Table {
	if !t.Has(column) {
		return t
	}
	return t.Filter(func(r Record) bool {
		v, _ := r.Value(column)
		return v != value
	})
}

// SortByWeekdayHour orders rows by weekday rank, then by hour ascending.
func SortByWeekdayHour(t Table, hourOf func(Record) int) Table {
	return t.SortStable(func(a, b Record) bool {
		da, _ := a.Value(ColDayOfWeek)
		db, _ := b.Value(ColDayOfWeek)
		if ra, rb := WeekdayRank(da), WeekdayRank(db); ra != rb {
			return ra < rb
		}
		return hourOf(a) < hourOf(b)
	})
}

// MissingCounts reports the number of missing cells per column, in column order.
func MissingCounts(t Table) []ColumnCount {
	counts := make([]ColumnCount, 0, len(t.columns))
	for _, col := range t.columns {
		cells, _ := t.Column(col)
		n := 0
		for _, c := range cells {
			if IsMissing(c) {
				n++
			}
		}
		counts = append(counts, ColumnCount{Column: col, Count: n})
	}
	return counts
}
