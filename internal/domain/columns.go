package domain

// Column names of the futuristic city traffic dataset.
const (
	ColCity              = "City"
	ColVehicleType       = "Vehicle Type"
	ColWeather           = "Weather"
	ColEconomicCondition = "Economic Condition"
	ColDayOfWeek         = "Day Of Week"
	ColHourOfDay         = "Hour Of Day"
	ColSpeed             = "Speed"
	ColIsPeakHour        = "Is Peak Hour"
	ColRandomEvent       = "Random Event Occurred"
	ColEnergyConsumption = "Energy Consumption"
	ColTrafficDensity    = "Traffic Density"
)

// Derived columns appended by Clean.
const (
	ColDayHour   = "DayHour"
	ColTimeOfDay = "TimeOfDayBucket"
)

// FlyingCar is the vehicle type excluded from the cleaned table by default.
const FlyingCar = "Flying Car"
