package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	fixedTime := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	raw := rawTraffic(t)
	cleaned, stats, err := Clean(raw, DefaultCleanOptions())
	require.NoError(t, err)

	report, err := BuildReport(ReportInput{
		Raw:      raw,
		Cleaned:  cleaned,
		Stats:    stats,
		Requests: DefaultSummaryRequests(),
		Matrix:   DefaultMatrixSpec(),
	})
	require.NoError(t, err)

	assert.Equal(t, fixedTime, report.GeneratedAt)
	assert.Equal(t, stats, report.Cleaning)
	assert.Len(t, report.MissingByColumn, len(trafficColumns))
	assert.Len(t, report.Summaries, 4)
	assert.Empty(t, report.Skipped)
	require.NotNil(t, report.SpeedByDayHour)
	assert.Len(t, report.SpeedByDayHour.Rows, 5)
	require.NotNil(t, report.SpeedEnergyFit)
	assert.Equal(t, ColEnergyConsumption, report.SpeedEnergyFit.X)
	assert.Equal(t, ColSpeed, report.SpeedEnergyFit.Y)
	// Only Drone has enough rows for its own line.
	require.Len(t, report.FitsByVehicle, 1)
	assert.Equal(t, "Drone", report.FitsByVehicle[0].Key)
	assert.Equal(t, 3, report.FitsByVehicle[0].Fit.N)
	assert.Len(t, report.Matrix.Values, 8)
}

func TestBuildReport_SkipsInapplicable(t *testing.T) {
	raw := mustTable(t, []string{ColDayOfWeek, ColHourOfDay, ColSpeed},
		[]string{"Monday", "1", "10"},
		[]string{"Tuesday", "2", "20"},
	)
	cleaned, stats, err := Clean(raw, DefaultCleanOptions())
	require.NoError(t, err)

	report, err := BuildReport(ReportInput{
		Raw: raw, Cleaned: cleaned, Stats: stats,
		Requests: DefaultSummaryRequests(),
		Matrix:   DefaultMatrixSpec(),
	})
	require.NoError(t, err)

	assert.Empty(t, report.Summaries)
	names := make([]string, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		names = append(names, s.Name)
		assert.NotEmpty(t, s.Reason)
	}
	assert.Equal(t, []string{
		"Day Of Week Summary",
		"Peak Hour Summary",
		"Weather Summary",
		"Economic Condition Summary",
		"Speed vs Energy Consumption fit",
		"Speed vs Energy Consumption fit by Vehicle Type",
	}, names)
	require.NotNil(t, report.SpeedByDayHour)
	assert.Nil(t, report.SpeedEnergyFit)
	assert.Nil(t, report.FitsByVehicle)
}

func TestBuildReport_BadMatrixFails(t *testing.T) {
	spec := DefaultMatrixSpec()
	spec.Holidays = []string{"Arbor Day"}

	_, err := BuildReport(ReportInput{Raw: mustTable(t, nil), Cleaned: mustTable(t, nil), Matrix: spec})
	assert.ErrorIs(t, err, ErrUnknownHoliday)
}
