// Package reference loads the baseline and offset tables that drive the
// synthetic holiday/weather matrix.
package reference

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

// Tables holds the weather baselines and holiday offsets.
type Tables struct {
	Baseline domain.WeatherBaseline
	Offsets  domain.HolidayOffset
}

// file is the on-disk YAML layout:
//
//	weather_baseline:
//	  Clear: 2.0
//	holiday_offset:
//	  Christmas: 3.0
type file struct {
	WeatherBaseline map[string]float64 `yaml:"weather_baseline"`
	HolidayOffset   map[string]float64 `yaml:"holiday_offset"`
}

// Defaults returns the built-in reference tables.
func Defaults() Tables {
	return Tables{Baseline: domain.DefaultWeatherBaseline(), Offsets: domain.DefaultHolidayOffset()}
}

// Load reads a YAML override file. Entries replace the defaults one by one;
// entries omitted from the file keep their default value. Names outside the
// fixed weather and holiday sets are rejected. An empty path returns Defaults.
func Load(path string) (Tables, error) {
	tables := Defaults()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read reference file: %w", err)
	}
	return Parse(data)
}

// Parse applies YAML overrides to the defaults.
func Parse(data []byte) (Tables, error) {
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return Tables{}, fmt.Errorf("parse reference file: %w", err)
	}

	tables := Defaults()
	for name, v := range f.WeatherBaseline {
		if _, ok := tables.Baseline[name]; !ok {
			return Tables{}, fmt.Errorf("parse reference file: %w: %q", domain.ErrUnknownWeather, name)
		}
		tables.Baseline[name] = v
	}
	for name, v := range f.HolidayOffset {
		if _, ok := tables.Offsets[name]; !ok {
			return Tables{}, fmt.Errorf("parse reference file: %w: %q", domain.ErrUnknownHoliday, name)
		}
		tables.Offsets[name] = v
	}
	return tables, nil
}

// MatrixSpec combines the tables with a seed in the fixed row and column order.
func (t Tables) MatrixSpec(seed uint64) domain.MatrixSpec {
	spec := domain.DefaultMatrixSpec()
	spec.Seed = seed
	spec.Baseline = t.Baseline
	spec.Offsets = t.Offsets
	return spec
}
