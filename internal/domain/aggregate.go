package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Agg names an aggregation applied to a numeric column within a group.
type Agg string

const (
	AggMean  Agg = "mean"
	AggMax   Agg = "max"
	AggMin   Agg = "min"
	AggSum   Agg = "sum"
	AggCount Agg = "count"
)

// Metric lists the aggregations computed for one column.
type Metric struct {
	Column string `json:"column"`
	Aggs   []Agg  `json:"aggs"`
}

// SummaryRequest describes one grouped summary.
type SummaryRequest struct {
	Name    string   `json:"name"`
	GroupBy string   `json:"group_by"`
	Metrics []Metric `json:"metrics"`
}

// SummaryColumn identifies one output column of a summary.
type SummaryColumn struct {
	Column string `json:"column"`
	Agg    Agg    `json:"agg"`
}

// Label renders the column as "<column> <agg>", e.g. "Speed mean".
func (c SummaryColumn) Label() string { return c.Column + " " + string(c.Agg) }

// SummaryRow holds the aggregated values of one group, aligned with Summary.Columns.
type SummaryRow struct {
	Key    string    `json:"key"`
	Count  int       `json:"count"`
	Values []float64 `json:"values"`
}

// Summary is the result of one SummaryRequest.
type Summary struct {
	Name    string          `json:"name"`
	GroupBy string          `json:"group_by"`
	Columns []SummaryColumn `json:"columns"`
	Rows    []SummaryRow    `json:"rows"`
}

// Keys returns the group keys in output order.
func (s Summary) Keys() []string {
	keys := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		keys[i] = r.Key
	}
	return keys
}

// Lookup returns one aggregated value.
func (s Summary) Lookup(key, column string, agg Agg) (float64, bool) {
	col := -1
	for i, c := range s.Columns {
		if c.Column == column && c.Agg == agg {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range s.Rows {
		if r.Key == key {
			return r.Values[col], true
		}
	}
	return 0, false
}

// DefaultSummaryRequests returns the grouped summaries of the traffic report:
// by weekday, peak-hour flag, weather, and economic condition.
func DefaultSummaryRequests() []SummaryRequest {
	speed := Metric{Column: ColSpeed, Aggs: []Agg{AggMean, AggMax, AggMin}}
	return []SummaryRequest{
		{
			Name:    "Day Of Week Summary",
			GroupBy: ColDayOfWeek,
			Metrics: []Metric{speed, {Column: ColTrafficDensity, Aggs: []Agg{AggMean, AggSum}}},
		},
		{
			Name:    "Peak Hour Summary",
			GroupBy: ColIsPeakHour,
			Metrics: []Metric{
				speed,
				{Column: ColEnergyConsumption, Aggs: []Agg{AggMean}},
				{Column: ColTrafficDensity, Aggs: []Agg{AggMean}},
			},
		},
		{
			Name:    "Weather Summary",
			GroupBy: ColWeather,
			Metrics: []Metric{speed, {Column: ColTrafficDensity, Aggs: []Agg{AggMean}}},
		},
		{
			Name:    "Economic Condition Summary",
			GroupBy: ColEconomicCondition,
			Metrics: []Metric{
				speed,
				{Column: ColTrafficDensity, Aggs: []Agg{AggMean}},
				{Column: ColEnergyConsumption, Aggs: []Agg{AggMean}},
			},
		},
	}
}

// SpeedByDayHourRequest averages speed per DayHour key.
func SpeedByDayHourRequest() SummaryRequest {
	return SummaryRequest{
		Name:    "Average Speed By DayHour",
		GroupBy: ColDayHour,
		Metrics: []Metric{{Column: ColSpeed, Aggs: []Agg{AggMean}}},
	}
}

// Summarize computes a grouped summary. When the group-by column or any metric
// column is absent the error wraps ErrMissingColumn, letting callers decide
// whether to skip the summary or fail.
func Summarize(t Table, req SummaryRequest) (Summary, error) {
	if !t.Has(req.GroupBy) {
		return Summary{}, fmt.Errorf("summarize %q: %w: %q", req.Name, ErrMissingColumn, req.GroupBy)
	}
	var columns []SummaryColumn
	for _, m := range req.Metrics {
		if !t.Has(m.Column) {
			return Summary{}, fmt.Errorf("summarize %q: %w: %q", req.Name, ErrMissingColumn, m.Column)
		}
		for _, agg := range m.Aggs {
			columns = append(columns, SummaryColumn{Column: m.Column, Agg: agg})
		}
	}

	groups, err := t.GroupBy(req.GroupBy)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %q: %w", req.Name, err)
	}

	rows := make([]SummaryRow, 0, len(groups))
	for _, g := range groups {
		row := SummaryRow{Key: g.Key, Count: g.Rows.Len(), Values: make([]float64, 0, len(columns))}
		for _, m := range req.Metrics {
			xs, err := g.Rows.Floats(m.Column)
			if err != nil {
				return Summary{}, fmt.Errorf("summarize %q group %q: %w", req.Name, g.Key, err)
			}
			for _, agg := range m.Aggs {
				v, err := aggregate(agg, xs)
				if err != nil {
					return Summary{}, fmt.Errorf("summarize %q: %w", req.Name, err)
				}
				row.Values = append(row.Values, v)
			}
		}
		rows = append(rows, row)
	}

	return Summary{Name: req.Name, GroupBy: req.GroupBy, Columns: columns, Rows: rows}, nil
}

// aggregate applies agg to a non-empty slice.
func aggregate(agg Agg, xs []float64) (float64, error) {
	switch agg {
	case AggMean:
		return stat.Mean(xs, nil), nil
	case AggMax:
		return floats.Max(xs), nil
	case AggMin:
		return floats.Min(xs), nil
	case AggSum:
		return floats.Sum(xs), nil
	case AggCount:
		return float64(len(xs)), nil
	default:
		return 0, fmt.Errorf("unknown aggregation %q", agg)
	}
}

// LinearFit is a least-squares line Y = Intercept + Slope*X.
type LinearFit struct {
	X         string  `json:"x"`
	Y         string  `json:"y"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	N         int     `json:"n"`
}

// Predict evaluates the line at x.
func (f LinearFit) Predict(x float64) float64 { return f.Intercept + f.Slope*x }

// FitLinear regresses column y on column x. It needs at least two rows and
// a non-constant x; otherwise the error wraps ErrInsufficientData.
func FitLinear(t Table, x, y string) (LinearFit, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return LinearFit{}, fmt.Errorf("fit %s on %s: %w", y, x, err)
	}
	ys, err := t.Floats(y)
	if err != nil {
		return LinearFit{}, fmt.Errorf("fit %s on %s: %w", y, x, err)
	}
	if len(xs) < 2 || floats.Min(xs) == floats.Max(xs) {
		return LinearFit{}, fmt.Errorf("fit %s on %s: %w", y, x, ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return LinearFit{X: x, Y: y, Intercept: alpha, Slope: beta, N: len(xs)}, nil
}

// GroupFit is a LinearFit restricted to the rows of one group.
type GroupFit struct {
	Key string    `json:"key"`
	Fit LinearFit `json:"fit"`
}

// FitLinearBy fits y on x separately within each group of column groupBy,
// in first-appearance order. Groups with too few rows or a constant x get no
// fit; when no group can be fitted the error wraps ErrInsufficientData.
func FitLinearBy(t Table, groupBy, x, y string) ([]GroupFit, error) {
	for _, col := range []string{groupBy, x, y} {
		if !t.Has(col) {
			return nil, fmt.Errorf("fit %s on %s by %s: %w: %q", y, x, groupBy, ErrMissingColumn, col)
		}
	}

	groups, err := t.GroupBy(groupBy)
	if err != nil {
		return nil, err
	}

	var fits []GroupFit
	for _, g := range groups {
		fit, err := FitLinear(g.Rows, x, y)
		if errors.Is(err, ErrInsufficientData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Key, err)
		}
		fits = append(fits, GroupFit{Key: g.Key, Fit: fit})
	}
	if len(fits) == 0 {
		return nil, fmt.Errorf("fit %s on %s by %s: %w", y, x, groupBy, ErrInsufficientData)
	}
	return fits, nil
}

// isSkippable reports errors that mean "this analysis does not apply to the data".
func isSkippable(err error) bool {
	return errors.Is(err, ErrMissingColumn) || errors.Is(err, ErrInsufficientData)
}
