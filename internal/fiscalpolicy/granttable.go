package fiscalpolicy

import (
	"errors"
	"time"
)

// ErrNegativeSeniority is returned by GrantDays/Grant when the computed
// seniority is negative (as_of_date before hire_date).
var ErrNegativeSeniority = errors.New("invalid seniority: negative")

// GrantStep is one row of the Article 39 statutory grant table.
type GrantStep struct {
	SeniorityYears float64
	Days           int
}

// GrantTable maps seniority (whole-and-half years of service) to granted
// days. Seniority below the first step grants zero days; seniority at or
// above the last step grants the capped maximum of 20.
var GrantTable = []GrantStep{
	{SeniorityYears: 0.5, Days: 10},
	{SeniorityYears: 1.5, Days: 11},
	{SeniorityYears: 2.5, Days: 12},
	{SeniorityYears: 3.5, Days: 14},
	{SeniorityYears: 4.5, Days: 16},
	{SeniorityYears: 5.5, Days: 18},
	{SeniorityYears: 6.5, Days: 20},
}

// GrantDays floors seniorityYears to the nearest table key at or below it
// and returns the corresponding days. Seniority < 0.5 grants 0. Negative
// seniority is an error.
func GrantDays(seniorityYears float64) (int, error) {
	if seniorityYears < 0 {
		return 0, ErrNegativeSeniority
	}
	days := 0
	for _, step := range GrantTable {
		if seniorityYears >= step.SeniorityYears {
			days = step.Days
		} else {
			break
		}
	}
	return days, nil
}

// SeniorityYears computes whole-and-half years of service between hireDate
// and asOf, the unit GrantDays expects. A full half-year of tenure adds
// 0.5; tenure is truncated, not rounded, to the nearest half-year.
func SeniorityYears(hireDate, asOf time.Time) float64 {
	if asOf.Before(hireDate) {
		return -1
	}
	months := monthsBetween(hireDate, asOf)
	halfYears := months / 6
	return float64(halfYears) * 0.5
}

// Grant computes the granted days for an employee as of a given date,
// combining SeniorityYears and GrantDays. Returns ErrNegativeSeniority if
// asOf precedes hireDate.
func Grant(hireDate, asOf time.Time) (int, error) {
	seniority := SeniorityYears(hireDate, asOf)
	if seniority < 0 {
		return 0, ErrNegativeSeniority
	}
	return GrantDays(seniority)
}

// monthsBetween counts whole elapsed calendar months from start to end,
// only counting a month once its day-of-month has been reached.
func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
