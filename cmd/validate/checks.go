package main

import (
	"regexp"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

var dayHourPattern = regexp.MustCompile(`^[^_]+_\d{2}$`)

// validate runs every phase. rawRows < 0 skips the row-count phase.
func validate(cleaned domain.Table, excluded string, rawRows int) []*phase {
	phases := []*phase{validateSchema(cleaned)}
	if !phases[0].passed() {
		return phases
	}

	phases = append(phases,
		validateCompleteness(cleaned),
		validateExclusion(cleaned, excluded),
		validateOrder(cleaned),
		validateDerived(cleaned),
	)
	if rawRows >= 0 {
		phases = append(phases, validateRowCount(cleaned, rawRows))
	}
	return phases
}

func validateSchema(t domain.Table) *phase {
	p := &phase{name: "Schema"}
	for _, col := range []string{domain.ColDayOfWeek, domain.ColHourOfDay, domain.ColDayHour} {
		if !t.Has(col) {
			p.errorf("missing column %q", col)
		}
	}
	return p
}

func validateCompleteness(t domain.Table) *phase {
	p := &phase{name: "No missing values"}
	for i, rec := range t.Records() {
		if rec.HasMissing() {
			p.errorf("row %d has a missing value", i+1)
		}
	}
	return p
}

func validateExclusion(t domain.Table, excluded string) *phase {
	p := &phase{name: "Excluded vehicle type absent"}
	if excluded == "" || !t.Has(domain.ColVehicleType) {
		return p
	}
	for i, rec := range t.Records() {
		if v, _ := rec.Value(domain.ColVehicleType); v == excluded {
			p.errorf("row %d has vehicle type %q", i+1, v)
		}
	}
	return p
}

func validateOrder(t domain.Table) *phase {
	p := &phase{name: "Sorted by weekday then hour"}
	prevRank, prevHour := -1, -1
	for i, rec := range t.Records() {
		day, _ := rec.Value(domain.ColDayOfWeek)
		hour, err := rec.Int(domain.ColHourOfDay)
		if err != nil {
			p.errorf("row %d: %v", i+1, err)
			continue
		}
		rank := domain.WeekdayRank(day)
		if rank < prevRank || (rank == prevRank && hour < prevHour) {
			p.errorf("row %d (%s %d) is out of order", i+1, day, hour)
		}
		prevRank, prevHour = rank, hour
	}
	return p
}

func validateDerived(t domain.Table) *phase {
	p := &phase{name: "Derived columns consistent"}
	checkBucket := t.Has(domain.ColTimeOfDay)
	for i, rec := range t.Records() {
		day, _ := rec.Value(domain.ColDayOfWeek)
		key, _ := rec.Value(domain.ColDayHour)
		hour, err := domain.ParseHour(mustValue(rec, domain.ColHourOfDay))
		if err != nil {
			p.errorf("row %d: %v", i+1, err)
			continue
		}

		if !dayHourPattern.MatchString(key) {
			p.errorf("row %d: DayHour %q is malformed", i+1, key)
		} else if want := domain.DayHour(day, hour); key != want {
			p.errorf("row %d: DayHour %q, want %q", i+1, key, want)
		}

		if checkBucket {
			bucket, _ := rec.Value(domain.ColTimeOfDay)
			want, _ := domain.TimeOfDay(hour)
			if bucket != string(want) {
				p.errorf("row %d: TimeOfDayBucket %q, want %q", i+1, bucket, want)
			}
		}
	}
	return p
}

func validateRowCount(t domain.Table, rawRows int) *phase {
	p := &phase{name: "Row count not above raw"}
	if t.Len() > rawRows {
		p.errorf("cleaned has %d rows, raw has %d", t.Len(), rawRows)
	}
	return p
}

func mustValue(rec domain.Record, column string) string {
	v, _ := rec.Value(column)
	return v
}
