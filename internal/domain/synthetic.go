package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed seeds the noise source of the holiday/weather matrix.
const DefaultSeed uint64 = 42

// NoiseStdDev is the standard deviation of the Gaussian noise added to each cell.
const NoiseStdDev = 0.2

// WeatherBaseline maps a weather condition to its baseline energy consumption.
type WeatherBaseline map[string]float64

// HolidayOffset maps a holiday to the consumption it adds on top of the baseline.
type HolidayOffset map[string]float64

var weatherOrder = []string{"Clear", "Electromagnetic Storm", "Rainy Weather", "Snowy", "Solar Flare"}

var holidayOrder = []string{
	"New Year's Day",
	"Martin Luther King Jr. Day",
	"Presidents' Day",
	"Memorial Day",
	"Independence Day",
	"Labor Day",
	"Thanksgiving",
	"Christmas",
}

// WeatherOrder returns the matrix column order.
func WeatherOrder() []string { return slices.Clone(weatherOrder) }

// HolidayOrder returns the matrix row order.
func HolidayOrder() []string { return slices.Clone(holidayOrder) }

// DefaultWeatherBaseline returns the reference baseline per weather condition.
func DefaultWeatherBaseline() WeatherBaseline {
	return WeatherBaseline{
		"Clear":                 2.0,
		"Electromagnetic Storm": 4.0,
		"Rainy Weather":         3.0,
		"Snowy":                 3.5,
		"Solar Flare":           4.5,
	}
}

// DefaultHolidayOffset returns the reference offset per holiday.
func DefaultHolidayOffset() HolidayOffset {
	return HolidayOffset{
		"New Year's Day":             2.5,
		"Martin Luther King Jr. Day": 0.5,
		"Presidents' Day":            0.5,
		"Memorial Day":               1.5,
		"Independence Day":           2.0,
		"Labor Day":                  1.0,
		"Thanksgiving":               2.5,
		"Christmas":                  3.0,
	}
}

// MatrixSpec is the full input of GenerateMatrix. Empty Holidays or Weathers
// default to the fixed orders; a zero NoiseStdDev defaults to NoiseStdDev and
// a negative one is rejected.
type MatrixSpec struct {
	Seed        uint64
	Holidays    []string
	Weathers    []string
	Baseline    WeatherBaseline
	Offsets     HolidayOffset
	NoiseStdDev float64
}

// DefaultMatrixSpec uses seed 42 and the default reference tables.
func DefaultMatrixSpec() MatrixSpec {
	return MatrixSpec{
		Seed:     DefaultSeed,
		Holidays: HolidayOrder(),
		Weathers: WeatherOrder(),
		Baseline: DefaultWeatherBaseline(),
		Offsets:  DefaultHolidayOffset(),
	}
}

// Matrix is a Holiday × Weather table of average consumption values.
// Values[i][j] belongs to Holidays[i] and Weathers[j].
type Matrix struct {
	Seed     uint64      `json:"seed"`
	Holidays []string    `json:"holidays"`
	Weathers []string    `json:"weathers"`
	Values   [][]float64 `json:"values"`
}

// Cell returns the value for one holiday and weather.
func (m Matrix) Cell(holiday, weather string) (float64, error) {
	i := slices.Index(m.Holidays, holiday)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownHoliday, holiday)
	}
	j := slices.Index(m.Weathers, weather)
	if j < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWeather, weather)
	}
	return m.Values[i][j], nil
}

// GenerateMatrix builds the synthetic matrix: each cell is
// baseline[weather] + offset[holiday] plus N(0, σ) noise, rounded to one decimal.
//
// The noise source is created here from the seed and consumed in a fixed order,
// holidays outer and weathers inner, one draw per cell. Every name is checked
// against the reference tables before the first draw.
func GenerateMatrix(spec MatrixSpec) (Matrix, error) {
	holidays := spec.Holidays
	if len(holidays) == 0 {
		holidays = holidayOrder
	}
	weathers := spec.Weathers
	if len(weathers) == 0 {
		weathers = weatherOrder
	}
	sigma := spec.NoiseStdDev
	switch {
	case sigma < 0 || math.IsNaN(sigma):
		return Matrix{}, fmt.Errorf("generate matrix: %w: %v", ErrInvalidNoise, sigma)
	case sigma == 0:
		sigma = NoiseStdDev
	}

	for _, h := range holidays {
		if _, ok := spec.Offsets[h]; !ok {
			return Matrix{}, fmt.Errorf("generate matrix: %w: %q", ErrUnknownHoliday, h)
		}
	}
	for _, w := range weathers {
		if _, ok := spec.Baseline[w]; !ok {
			return Matrix{}, fmt.Errorf("generate matrix: %w: %q", ErrUnknownWeather, w)
		}
	}

	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewPCG(spec.Seed, 0)}

	values := make([][]float64, len(holidays))
	for i, h := range holidays {
		values[i] = make([]float64, len(weathers))
		for j, w := range weathers {
			mean := spec.Baseline[w] + spec.Offsets[h]
			values[i][j] = roundTenth(mean + noise.Rand())
		}
	}

	return Matrix{
		Seed:     spec.Seed,
		Holidays: slices.Clone(holidays),
		Weathers: slices.Clone(weathers),
		Values:   values,
	}, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
