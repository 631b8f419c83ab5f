package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

var cleanedColumns = []string{domain.ColVehicleType, domain.ColDayOfWeek, domain.ColHourOfDay, domain.ColDayHour, domain.ColTimeOfDay}

func table(t *testing.T, rows ...[]string) domain.Table {
	t.Helper()
	tbl, err := domain.NewTable(cleanedColumns, rows)
	require.NoError(t, err)
	return tbl
}

func failed(phases []*phase) []string {
	var names []string
	for _, p := range phases {
		if !p.passed() {
			names = append(names, p.name)
		}
	}
	return names
}

func TestValidate_Valid(t *testing.T) {
	tbl := table(t,
		[]string{"Car", "Monday", "5", "Monday_05", "Early Morning"},
		[]string{"Drone", "Monday", "18", "Monday_18", "Evening/Night"},
		[]string{"Car", "Sunday", "12", "Sunday_12", "Afternoon"},
	)

	phases := validate(tbl, domain.FlyingCar, 10)
	assert.Len(t, phases, 6)
	assert.Empty(t, failed(phases))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		rawRows int
		failed  []string
	}{
		{
			name:   "missing value",
			rows:   [][]string{{"", "Monday", "5", "Monday_05", "Early Morning"}},
			failed: []string{"No missing values"},
		},
		{
			name:   "excluded vehicle",
			rows:   [][]string{{"Flying Car", "Monday", "5", "Monday_05", "Early Morning"}},
			failed: []string{"Excluded vehicle type absent"},
		},
		{
			name: "out of order",
			rows: [][]string{
				{"Car", "Tuesday", "5", "Tuesday_05", "Early Morning"},
				{"Car", "Monday", "5", "Monday_05", "Early Morning"},
			},
			failed: []string{"Sorted by weekday then hour"},
		},
		{
			name:   "unpadded day hour",
			rows:   [][]string{{"Car", "Monday", "5", "Monday_5", "Early Morning"}},
			failed: []string{"Derived columns consistent"},
		},
		{
			name:   "wrong bucket",
			rows:   [][]string{{"Car", "Monday", "6", "Monday_06", "Early Morning"}},
			failed: []string{"Derived columns consistent"},
		},
		{
			name: "more rows than raw",
			rows: [][]string{
				{"Car", "Monday", "5", "Monday_05", "Early Morning"},
				{"Car", "Monday", "6", "Monday_06", "Morning"},
			},
			rawRows: 1,
			failed:  []string{"Row count not above raw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rawRows := tt.rawRows
			if rawRows == 0 {
				rawRows = 10
			}
			phases := validate(table(t, tt.rows...), domain.FlyingCar, rawRows)
			assert.Equal(t, tt.failed, failed(phases))
		})
	}
}

func TestValidate_SchemaStopsEarly(t *testing.T) {
	tbl, err := domain.NewTable([]string{domain.ColDayOfWeek}, nil)
	require.NoError(t, err)

	phases := validate(tbl, domain.FlyingCar, -1)
	require.Len(t, phases, 1)
	assert.Len(t, phases[0].errors, 2)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cleaned := filepath.Join(dir, "cleaned.csv")
	require.NoError(t, os.WriteFile(cleaned, []byte(
		"Vehicle Type,Day Of Week,Hour Of Day,DayHour,TimeOfDayBucket\n"+
			"Car,Monday,8,Monday_08,Morning\n"), 0o600))

	assert.Equal(t, 0, run(cleaned, "", domain.FlyingCar))
	assert.Equal(t, 1, run(filepath.Join(dir, "absent.csv"), "", domain.FlyingCar))
}
