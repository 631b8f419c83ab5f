package domain

import "errors"

var (
	// ErrMissingColumn reports that an operation needs a column the table does not have.
	ErrMissingColumn = errors.New("missing column")

	// ErrMissingValue reports an NA cell where a number was required.
	ErrMissingValue = errors.New("missing value")

	// ErrInvalidHour reports an hour cell that is not a plain integer in 0..23.
	ErrInvalidHour = errors.New("invalid hour of day")

	// ErrInsufficientData reports too few rows, or a constant regressor, for a fit.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidNoise reports a negative or NaN noise standard deviation.
	ErrInvalidNoise = errors.New("invalid noise standard deviation")

	// ErrUnknownHoliday and ErrUnknownWeather are returned by GenerateMatrix when a
	// requested name has no entry in the reference tables.
	ErrUnknownHoliday = errors.New("unknown holiday")
	ErrUnknownWeather = errors.New("unknown weather")
)
