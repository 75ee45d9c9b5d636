// Package fiscalpolicy holds the process-wide, read-at-boot statutory
// policy constants (Labor Standards Act Article 39) and the single
// date→fiscal-year resolver every other package must go through.
package fiscalpolicy

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// FiscalPolicy is loaded once at boot and frozen; nothing mutates it after
// Load returns.
type FiscalPolicy struct {
	PeriodStartDay           int
	PeriodEndDay             int
	MaxCarryOverYears        int
	MaxAccumulatedDays       int
	MinimumAnnualUse         int
	MinimumDaysForObligation int
	LedgerRetentionYears     int
}

// Default returns the statutory defaults (§3.1): fiscal period runs day-21
// of the previous month to day-20 of the current month.
func Default() FiscalPolicy {
	return FiscalPolicy{
		PeriodStartDay:           21,
		PeriodEndDay:             20,
		MaxCarryOverYears:        2,
		MaxAccumulatedDays:       40,
		MinimumAnnualUse:         5,
		MinimumDaysForObligation: 10,
		LedgerRetentionYears:     3,
	}
}

// Load reads optional environment overrides on top of Default and validates
// the result. It fails rather than silently falling back when an override
// is out of range, so a bad deploy config is caught at boot, not at the
// first carry-over run.
func Load() (FiscalPolicy, error) {
	p := Default()

	overrides := []struct {
		env    string
		target *int
	}{
		{"FISCAL_PERIOD_START_DAY", &p.PeriodStartDay},
		{"FISCAL_PERIOD_END_DAY", &p.PeriodEndDay},
		{"FISCAL_MAX_CARRY_OVER_YEARS", &p.MaxCarryOverYears},
		{"FISCAL_MAX_ACCUMULATED_DAYS", &p.MaxAccumulatedDays},
		{"FISCAL_MINIMUM_ANNUAL_USE", &p.MinimumAnnualUse},
		{"FISCAL_MINIMUM_DAYS_FOR_OBLIGATION", &p.MinimumDaysForObligation},
		{"FISCAL_LEDGER_RETENTION_YEARS", &p.LedgerRetentionYears},
	}
	for _, o := range overrides {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return FiscalPolicy{}, fmt.Errorf("%s: invalid integer %q: %w", o.env, v, err)
		}
		*o.target = n
	}

	if err := p.Validate(); err != nil {
		return FiscalPolicy{}, err
	}
	return p, nil
}

// Validate checks every bound named in §3.1. Called by Load, and directly
// by tests constructing a FiscalPolicy literal.
func (p FiscalPolicy) Validate() error {
	if p.PeriodStartDay < 1 || p.PeriodStartDay > 31 {
		return fmt.Errorf("period_start_day out of range [1,31]: %d", p.PeriodStartDay)
	}
	if p.PeriodEndDay < 1 || p.PeriodEndDay > 31 {
		return fmt.Errorf("period_end_day out of range [1,31]: %d", p.PeriodEndDay)
	}
	if p.PeriodEndDay >= p.PeriodStartDay {
		return fmt.Errorf("period_end_day (%d) must be before period_start_day (%d)", p.PeriodEndDay, p.PeriodStartDay)
	}
	if p.MaxCarryOverYears < 1 || p.MaxCarryOverYears > 10 {
		return fmt.Errorf("max_carry_over_years out of range [1,10]: %d", p.MaxCarryOverYears)
	}
	if p.MaxAccumulatedDays < 1 || p.MaxAccumulatedDays > 365 {
		return fmt.Errorf("max_accumulated_days out of range [1,365]: %d", p.MaxAccumulatedDays)
	}
	if p.MinimumAnnualUse < 0 {
		return fmt.Errorf("minimum_annual_use must be non-negative: %d", p.MinimumAnnualUse)
	}
	if p.MinimumDaysForObligation < 0 {
		return fmt.Errorf("minimum_days_for_obligation must be non-negative: %d", p.MinimumDaysForObligation)
	}
	if p.LedgerRetentionYears < 1 || p.LedgerRetentionYears > 50 {
		return fmt.Errorf("ledger_retention_years out of range [1,50]: %d", p.LedgerRetentionYears)
	}
	return nil
}

// YearFor is the one function in this module that resolves a calendar date
// to a fiscal year. A date on or after PeriodStartDay belongs to the period
// that starts in its own month; a date before PeriodStartDay belongs to the
// period that started the previous month. The fiscal year is the calendar
// year of the period's starting month.
func (p FiscalPolicy) YearFor(d time.Time) int {
	y, m := d.Year(), d.Month()
	if d.Day() < p.PeriodStartDay {
		m--
	}
	anchor := time.Date(y, m, 1, 0, 0, 0, 0, d.Location())
	return anchor.Year()
}

// PeriodEnd returns the last day belonging to fiscal year `year`. Because
// YearFor only shifts the calendar year at the January boundary (every
// other month-end cutoff falls inside the same calendar year), the fiscal
// year that YearFor labels `year` runs from PeriodStartDay of January
// `year` through PeriodEndDay of January `year+1`. Used to date lapsed
// expiration UsageEvents (§3.3).
func (p FiscalPolicy) PeriodEnd(year int) time.Time {
	return time.Date(year+1, time.January, p.PeriodEndDay, 0, 0, 0, 0, time.UTC)
}
