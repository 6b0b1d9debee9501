package labor

import (
	"math"
	"time"
)

// HoursPrecision is the number of decimal places hours and costs are rounded
// to. Two places matches payroll rounding; changing it changes every stored
// hours_worked and total_labor_cost going forward.
const HoursPrecision = 2

const secondsPerHour = 3600

// ComputeDurationAndCost converts a start/end pair and an hourly rate into
// elapsed hours and labor cost. A nil rate yields a nil cost: the entry is
// "hours known, cost pending", which callers must not collapse into zero-cost
// work. The rate used here is the one captured on the entry, never re-read
// from the employee record, so historical costs survive rate changes.
func ComputeDurationAndCost(start, end time.Time, rate *float64) (float64, *float64, error) {
	if !end.After(start) {
		return 0, nil, &InvalidRangeError{Start: start, End: end}
	}
	hours := roundTo(end.Sub(start).Seconds()/secondsPerHour, HoursPrecision)
	if rate == nil {
		return hours, nil, nil
	}
	cost := roundTo(hours**rate, HoursPrecision)
	return hours, &cost, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
