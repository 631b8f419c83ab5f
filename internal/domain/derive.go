package domain

import (
	"fmt"
	"slices"
)

// weekdayOrder is the calendar order used to sort the cleaned table.
var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays returns the weekday names in sort order.
func Weekdays() []string { return slices.Clone(weekdayOrder) }

// WeekdayRank maps a weekday name to its ordinal (Monday=0 .. Sunday=6).
// Unrecognised names rank after Sunday so they sort last.
func WeekdayRank(day string) int {
	if i := slices.Index(weekdayOrder, day); i >= 0 {
		return i
	}
	return len(weekdayOrder)
}

// DayHour builds the composite key "<weekday>_<HH>", e.g. "Monday_08".
func DayHour(day string, hour int) string {
	return fmt.Sprintf("%s_%02d", day, hour)
}

// TimeOfDayBucket is a coarse, four-way bucket of the hour of day.
type TimeOfDayBucket string

const (
	EarlyMorning TimeOfDayBucket = "Early Morning"
	Morning      TimeOfDayBucket = "Morning"
	Afternoon    TimeOfDayBucket = "Afternoon"
	EveningNight TimeOfDayBucket = "Evening/Night"
)

// TimeOfDay buckets an hour using half-open ranges:
// [0,6) early morning, [6,12) morning, [12,18) afternoon, [18,24) evening/night.
func TimeOfDay(hour int) (TimeOfDayBucket, error) {
	switch {
	case hour < 0 || hour > 23:
		return "", fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	case hour < 6:
		return EarlyMorning, nil
	case hour < 12:
		return Morning, nil
	case hour < 18:
		return Afternoon, nil
	default:
		return EveningNight, nil
	}
}

// ParseHour parses an hour-of-day cell and checks it lies in 0..23.
func ParseHour(value string) (int, error) {
	hour, err := parseInt(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidHour, err)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	}
	return hour, nil
}
