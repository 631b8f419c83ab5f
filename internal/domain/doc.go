// Package domain models the futuristic-city traffic dataset and the analyses
// run over it.
//
// # Data Source
//
// Each row of the raw CSV is one traffic observation: a city, a vehicle type,
// weather and economic condition labels, a weekday and hour, and numeric
// measurements (speed, energy consumption, traffic density). Flag columns such
// as "Is Peak Hour" and "Random Event Occurred" hold 0 or 1.
//
// # Missing Values
//
// Cells are raw strings. A cell is missing when it matches one of the NA tokens
// recognised by [IsMissing] (empty, "NA", "NaN", "null", "None", ...). Rows with
// any missing cell are dropped before derivation.
//
// # Derived Columns
//
//	DayHour          "<weekday>_<HH>", e.g. "Monday_08"
//	TimeOfDayBucket  [0,6) Early Morning | [6,12) Morning | [12,18) Afternoon | [18,24) Evening/Night
//
// Hours are accepted in integral float notation ("8.0") because numeric columns
// with NA cells are commonly exported that way.
//
// # Ordering
//
// The cleaned table is sorted stably by weekday (Monday first, unrecognised
// names last) and then by hour. Grouped summaries list keys in order of first
// appearance, so summaries over a cleaned table follow the same calendar order.
//
// # Synthetic Matrix
//
// [GenerateMatrix] produces a Holiday × Weather table of average energy
// consumption. Each cell is the weather baseline plus the holiday offset plus
// one draw of N(0, 0.2) from a PCG source seeded by the caller, rounded to one
// decimal. Draws are taken holiday-major, so the same seed and reference tables
// always reproduce the same matrix.
package domain
