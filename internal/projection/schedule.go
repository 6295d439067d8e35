package projection

import "github.com/theirongolddev/mrrcast/internal/model"

// RateKind selects how a scheduled rate is applied.
type RateKind int

const (
	// Growth returns 1 + rate, a month-over-month multiplier.
	Growth RateKind = iota
	// Probability returns the raw rate.
	Probability
)

// YearFor maps a 1-based month number to its projection year (1..5).
// Months 1-12 are year 1, 13-24 year 2, and anything past month 60 stays in
// year 5. Month numbers below 1 resolve to year 1.
func YearFor(month int) int {
	if month < 1 {
		return 1
	}
	year := (month + model.MonthsPerYear - 1) / model.MonthsPerYear
	if year > model.YearsProjected {
		year = model.YearsProjected
	}
	return year
}

// RateFor resolves the schedule entry for a 1-based month number.
func RateFor(month int, s model.Schedule, kind RateKind) float64 {
	rate := s[YearFor(month)-1]
	if kind == Growth {
		return 1 + rate
	}
	return rate
}
