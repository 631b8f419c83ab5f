package main

import (
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

var (
	cities          = []string{"SolarisVille", "AquaCity", "Neuroburg", "Ecoopolis", "TechHaven", "MetropolisX"}
	economicStates  = []string{"Booming", "Stable", "Recession"}
	rawColumnsOrder = []string{
		domain.ColCity, domain.ColVehicleType, domain.ColWeather, domain.ColEconomicCondition,
		domain.ColDayOfWeek, domain.ColHourOfDay, domain.ColSpeed, domain.ColIsPeakHour,
		domain.ColRandomEvent, domain.ColEnergyConsumption, domain.ColTrafficDensity,
	}
)

// vehicleProfile holds the mean speed of a vehicle type.
type vehicleProfile struct {
	name      string
	meanSpeed float64
}

var vehicles = []vehicleProfile{
	{"Drone", 35},
	{domain.FlyingCar, 110},
	{"Autonomous Vehicle", 60},
	{"Car", 55},
	{"Public Transit", 30},
}

type genOptions struct {
	Rows        int
	Seed        uint64
	MissingRate float64
}

// generate builds a raw table. Output depends only on the options.
func generate(opts genOptions) (domain.Table, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, 1))
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(opts.Seed, 2)}
	density := distuv.Uniform{Min: 0.05, Max: 1, Src: rand.NewPCG(opts.Seed, 3)}

	weathers := domain.WeatherOrder()
	days := domain.Weekdays()

	rows := make([][]string, opts.Rows)
	for i := range rows {
		v := vehicles[rng.IntN(len(vehicles))]
		hour := rng.IntN(24)
		peak := isPeak(hour)

		speed := math.Max(1, v.meanSpeed+10*noise.Rand())
		if peak {
			speed *= 0.8
		}
		energy := math.Max(0.5, 0.5*speed+3*noise.Rand())

		event := "0"
		if rng.Float64() < 0.05 {
			event = "1"
		}

		row := []string{
			cities[rng.IntN(len(cities))],
			v.name,
			weathers[rng.IntN(len(weathers))],
			economicStates[rng.IntN(len(economicStates))],
			days[rng.IntN(len(days))],
			strconv.Itoa(hour),
			formatFloat(speed),
			boolFlag(peak),
			event,
			formatFloat(energy),
			formatFloat(density.Rand()),
		}

		if rng.Float64() < opts.MissingRate {
			row[rng.IntN(len(row))] = ""
		}
		rows[i] = row
	}

	return domain.NewTable(rawColumnsOrder, rows)
}

func isPeak(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 19)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
