package domain

import (
	"fmt"
	"time"
)

// Report collects everything computed from one cleaned table.
type Report struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Cleaning        CleanStats       `json:"cleaning"`
	MissingByColumn []ColumnCount    `json:"missing_by_column"`
	Summaries       []Summary        `json:"summaries"`
	Skipped         []SkippedSummary `json:"skipped,omitempty"`
	SpeedByDayHour  *Summary         `json:"speed_by_day_hour,omitempty"`
	SpeedEnergyFit  *LinearFit       `json:"speed_energy_fit,omitempty"`
	FitsByVehicle   []GroupFit       `json:"speed_energy_fit_by_vehicle,omitempty"`
	Matrix          Matrix           `json:"holiday_weather_matrix"`
}

// SkippedSummary records an analysis that did not apply to the data.
type SkippedSummary struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ReportInput is everything BuildReport needs.
type ReportInput struct {
	Raw      Table
	Cleaned  Table
	Stats    CleanStats
	Requests []SummaryRequest
	Matrix   MatrixSpec
}

// BuildReport runs the aggregations over the cleaned table and generates the
// holiday/weather matrix. Summaries whose columns are absent are recorded in
// Skipped rather than failing the report; an invalid matrix spec is an error.
func BuildReport(in ReportInput) (*Report, error) {
	report := &Report{
		Cleaning:        in.Stats,
		MissingByColumn: MissingCounts(in.Raw),
	}

	for _, req := range in.Requests {
		s, err := Summarize(in.Cleaned, req)
		if err != nil {
			if !isSkippable(err) {
				return nil, fmt.Errorf("build report: %w", err)
			}
			report.Skipped = append(report.Skipped, SkippedSummary{Name: req.Name, Reason: err.Error()})
			continue
		}
		report.Summaries = append(report.Summaries, s)
	}

	byDayHour := SpeedByDayHourRequest()
	s, err := Summarize(in.Cleaned, byDayHour)
	switch {
	case err == nil:
		report.SpeedByDayHour = &s
	case isSkippable(err):
		report.Skipped = append(report.Skipped, SkippedSummary{Name: byDayHour.Name, Reason: err.Error()})
	default:
		return nil, fmt.Errorf("build report: %w", err)
	}

	fit, err := FitLinear(in.Cleaned, ColEnergyConsumption, ColSpeed)
	switch {
	case err == nil:
		report.SpeedEnergyFit = &fit
	case isSkippable(err):
		report.Skipped = append(report.Skipped, SkippedSummary{Name: "Speed vs Energy Consumption fit", Reason: err.Error()})
	default:
		return nil, fmt.Errorf("build report: %w", err)
	}

	byVehicle, err := FitLinearBy(in.Cleaned, ColVehicleType, ColEnergyConsumption, ColSpeed)
	switch {
	case err == nil:
		report.FitsByVehicle = byVehicle
	case isSkippable(err):
		report.Skipped = append(report.Skipped, SkippedSummary{Name: "Speed vs Energy Consumption fit by Vehicle Type", Reason: err.Error()})
	default:
		return nil, fmt.Errorf("build report: %w", err)
	}

	matrix, err := GenerateMatrix(in.Matrix)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	report.Matrix = matrix
	report.GeneratedAt = clock.Now()

	return report, nil
}
