package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// AuditRecorder is the subset of internal/audit's Recorder the engine needs.
// Declared here, rather than importing internal/audit directly, so the two
// packages don't form a cycle; internal/audit.Service satisfies this.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry) error
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, models.AuditEntry) error { return nil }

// TxRunner is the transaction boundary the engine needs. *database.GormDB
// satisfies this directly; tests substitute a fake that runs fn inline
// against a mock Repository.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Engine implements LedgerEngine (§4.3): grant computation, LIFO balance
// breakdown, deduction, year-end carry-over, and the five-day compliance
// check.
type Engine struct {
	txRunner TxRunner
	repo     Repository
	policy   fiscalpolicy.FiscalPolicy
	audit    AuditRecorder
}

// NewEngine constructs a ledger Engine. audit may be nil, in which case
// audit entries are silently dropped (used by tests that don't care).
func NewEngine(txRunner TxRunner, repo Repository, policy fiscalpolicy.FiscalPolicy, audit AuditRecorder) *Engine {
	if audit == nil {
		audit = noopAudit{}
	}
	return &Engine{txRunner: txRunner, repo: repo, policy: policy, audit: audit}
}

// Grant computes the statutory granted days for an employee as of a date.
func (e *Engine) Grant(hireDate, asOf time.Time) (decimal.Decimal, error) {
	days, err := fiscalpolicy.Grant(hireDate, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return decimal.NewFromInt(int64(days)), nil
}

// BalanceBreakdown is the result of a LIFO balance query: Rows is ordered
// (priority ASC, year DESC) — current year first, then carry-over years
// newest-first — and Total is the sum of all rows' balances.
type BalanceBreakdown struct {
	EmployeeNum string
	Year        int
	Rows        []models.EmployeeYear
	Total       decimal.Decimal
}

// Balance returns the LIFO breakdown for (employeeNum, year): the
// current-year row plus prior-year rows with non-zero balance, within
// MaxCarryOverYears.
func (e *Engine) Balance(ctx context.Context, employeeNum string, year int) (*BalanceBreakdown, error) {
	return e.balance(ctx, e.repo, employeeNum, year)
}

func (e *Engine) balance(ctx context.Context, repo Repository, employeeNum string, year int) (*BalanceBreakdown, error) {
	current, err := repo.GetYear(ctx, employeeNum, year)
	if err != nil {
		return nil, err
	}

	all, err := repo.ListYears(ctx, employeeNum)
	if err != nil {
		return nil, err
	}

	rows := []models.EmployeeYear{*current}
	var carryOver []models.EmployeeYear
	for _, y := range all {
		if y.Year == year {
			continue
		}
		if y.Year < year && year-y.Year <= e.policy.MaxCarryOverYears && !y.Balance.IsZero() {
			carryOver = append(carryOver, y)
		}
	}
	sort.Slice(carryOver, func(i, j int) bool { return carryOver[i].Year > carryOver[j].Year })
	rows = append(rows, carryOver...)

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Balance.Decimal)
	}

	return &BalanceBreakdown{EmployeeNum: employeeNum, Year: year, Rows: rows, Total: total}, nil
}

// Deduct consumes days from the employee's LIFO balance across current and
// carry-over years, debiting each row's balance and incrementing its used.
// Returns the per-year breakdown so the caller (RequestWorkflow) can credit
// it back exactly on a later revert/cancel.
func (e *Engine) Deduct(ctx context.Context, employeeNum string, days decimal.Decimal, currentYear int) ([]models.YearDeduction, error) {
	if days.IsNegative() || days.IsZero() {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidArgument)
	}

	var breakdown []models.YearDeduction
	err := e.txRunner.Transaction(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)

		bal, err := e.balance(ctx, repo, employeeNum, currentYear)
		if err != nil {
			return err
		}

		remaining := days
		touched := make([]models.EmployeeYear, 0, len(bal.Rows))
		for i := range bal.Rows {
			if remaining.IsZero() {
				break
			}
			row := bal.Rows[i]
			if row.Balance.LessThanOrEqual(decimal.Zero) {
				continue
			}
			draw := decimal.Min(remaining, row.Balance.Decimal)
			row.Used = models.NewDecimal(row.Used.Add(draw))
			row.Recompute()
			remaining = remaining.Sub(draw)
			breakdown = append(breakdown, models.YearDeduction{Year: row.Year, DaysUsed: models.NewDecimal(draw)})
			touched = append(touched, row)
		}

		if !remaining.IsZero() {
			return &InsufficientBalanceError{Available: bal.Total, Requested: days}
		}

		for _, row := range touched {
			if err := repo.UpsertYear(ctx, &row); err != nil {
				return err
			}
		}

		// Post-write assertion: reread and confirm the persisted balance
		// matches what we computed, guarding against a concurrent writer
		// inside the same transaction window.
		for _, row := range touched {
			reread, err := repo.GetYear(ctx, employeeNum, row.Year)
			if err != nil {
				return err
			}
			if !reread.Balance.Equal(row.Balance.Decimal) {
				return ErrConflict
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

// Credit reverses a prior Deduct: it adds days back to each year named in
// breakdown, decrementing that year's used. Used by RequestWorkflow on
// cancel/revert of an approved request.
func (e *Engine) Credit(ctx context.Context, employeeNum string, breakdown []models.YearDeduction) error {
	return e.txRunner.Transaction(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)
		for _, line := range breakdown {
			row, err := repo.GetYear(ctx, employeeNum, line.Year)
			if err != nil {
				return err
			}
			used := row.Used.Sub(line.DaysUsed.Decimal)
			if used.IsNegative() {
				used = decimal.Zero
			}
			row.Used = models.NewDecimal(used)
			row.Recompute()
			if err := repo.UpsertYear(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// CarryOver performs year-end processing (§4.3.4): rolls every active
// employee's positive from_year balance into to_year, capped at
// MaxAccumulatedDays with the excess lapsed to expired; separately expires
// rows aged past MaxCarryOverYears; and purges rows older than
// LedgerRetentionYears. The whole operation is one transaction.
func (e *Engine) CarryOver(ctx context.Context, fromYear, toYear int) error {
	if toYear <= fromYear {
		return fmt.Errorf("%w: to_year must be after from_year", ErrInvalidArgument)
	}

	return e.txRunner.Transaction(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)

		rolling, err := repo.ListActiveWithPositiveBalance(ctx, fromYear)
		if err != nil {
			return err
		}
		for _, src := range rolling {
			grantedNew, err := fiscalpolicy.Grant(src.HireDate, time.Date(toYear, time.January, e.policy.PeriodStartDay, 0, 0, 0, 0, time.UTC))
			if err != nil {
				return &CarryOverError{EmployeeNum: src.EmployeeNum, Year: fromYear, Err: err}
			}

			capAmount := decimal.NewFromInt(int64(e.policy.MaxAccumulatedDays)).Sub(decimal.NewFromInt(int64(grantedNew)))
			if capAmount.IsNegative() {
				capAmount = decimal.Zero
			}
			carriedIn := decimal.Min(src.Balance.Decimal, capAmount)
			lapsed := src.Balance.Decimal.Sub(carriedIn)

			if !lapsed.IsZero() {
				src.Expired = models.NewDecimal(src.Expired.Add(lapsed))
				src.Recompute()
				if err := repo.UpsertYear(ctx, &src); err != nil {
					return &CarryOverError{EmployeeNum: src.EmployeeNum, Year: fromYear, Err: err}
				}
			}

			dst, err := repo.GetYear(ctx, src.EmployeeNum, toYear)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return &CarryOverError{EmployeeNum: src.EmployeeNum, Year: toYear, Err: err}
			}
			if dst == nil {
				dst = &models.EmployeeYear{
					EmployeeNum:  src.EmployeeNum,
					Year:         toYear,
					Name:         src.Name,
					Category:     src.Category,
					WorkLocation: src.WorkLocation,
					HireDate:     src.HireDate,
					Status:       src.Status,
					Granted:      models.NewDecimalFromFloat(float64(grantedNew)),
				}
			}
			dst.CarriedIn = models.NewDecimal(carriedIn)
			dst.Recompute()
			if err := repo.UpsertYear(ctx, dst); err != nil {
				return &CarryOverError{EmployeeNum: src.EmployeeNum, Year: toYear, Err: err}
			}
		}

		// Expire rows that have aged past the carry-over window.
		aged, err := repo.ListYearsAtOrBefore(ctx, toYear-e.policy.MaxCarryOverYears)
		if err != nil {
			return err
		}
		for _, row := range aged {
			remaining := row.Balance.Decimal
			if remaining.IsZero() {
				continue
			}
			row.Expired = models.NewDecimal(row.Expired.Add(remaining))
			row.Recompute()
			if err := repo.UpsertYear(ctx, &row); err != nil {
				return &CarryOverError{EmployeeNum: row.EmployeeNum, Year: row.Year, Err: err}
			}
			ev := &models.UsageEvent{
				EmployeeNum: row.EmployeeNum,
				Year:        row.Year,
				UseDate:     e.policy.PeriodEnd(row.Year),
				DaysUsed:    models.NewDecimal(decimal.Zero),
				Type:        models.UsageExpired,
				Source:      models.SourceManual,
			}
			if err := repo.AppendUsageEvent(ctx, ev); err != nil {
				return &CarryOverError{EmployeeNum: row.EmployeeNum, Year: row.Year, Err: err}
			}
		}

		// Purge rows older than the retention window.
		purgeable, err := repo.ListYearsAtOrBefore(ctx, toYear-e.policy.LedgerRetentionYears)
		if err != nil {
			return err
		}
		for _, row := range purgeable {
			if err := repo.DeleteYear(ctx, row.EmployeeNum, row.Year); err != nil {
				return &CarryOverError{EmployeeNum: row.EmployeeNum, Year: row.Year, Err: err}
			}
			_ = e.audit.Record(ctx, models.AuditEntry{
				Timestamp:  time.Now(),
				Actor:      "system:carry_over",
				Action:     models.AuditDelete,
				EntityKind: "employee_year",
				EntityID:   fmt.Sprintf("%s/%d", row.EmployeeNum, row.Year),
			})
		}

		return nil
	})
}

// CheckFiveDay classifies every active employee whose combined available
// days (granted this year + carried-in) meet MinimumDaysForObligation,
// per §4.3.5.
func (e *Engine) CheckFiveDay(ctx context.Context, year int, now time.Time) ([]models.ComplianceResult, error) {
	rows, err := e.repo.ListAllForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	results := make([]models.ComplianceResult, 0, len(rows))
	for _, row := range rows {
		res, ok := e.evaluateFiveDay(row, year, now)
		if ok {
			results = append(results, res)
		}
	}
	return results, nil
}

func (e *Engine) evaluateFiveDay(row models.EmployeeYear, year int, now time.Time) (models.ComplianceResult, bool) {
	deadline := e.policy.PeriodEnd(year)

	if row.Status != models.StatusActive {
		return models.ComplianceResult{
			EmployeeNum: row.EmployeeNum,
			Year:        year,
			DaysDrawn:   row.Used,
			State:       models.ComplianceExempted,
			DeadlineAt:  deadline,
		}, true
	}

	combined := row.Granted.Add(row.CarriedIn.Decimal)
	threshold := decimal.NewFromInt(int64(e.policy.MinimumDaysForObligation))
	if combined.LessThan(threshold) {
		return models.ComplianceResult{}, false
	}

	monthsRemaining := monthsUntil(now, deadline)

	var state models.ComplianceState
	minimumUse := decimal.NewFromInt(int64(e.policy.MinimumAnnualUse))
	switch {
	case row.Used.GreaterThanOrEqual(minimumUse):
		state = models.ComplianceCompliant
	case row.Used.IsZero() && monthsRemaining <= 3:
		state = models.ComplianceNonCompliant
	case monthsRemaining >= 3:
		state = models.ComplianceAtRisk
	default:
		state = models.ComplianceNonCompliant
	}

	return models.ComplianceResult{
		EmployeeNum: row.EmployeeNum,
		Year:        year,
		DaysDrawn:   row.Used,
		State:       state,
		DeadlineAt:  deadline,
	}, true
}

func monthsUntil(now, deadline time.Time) int {
	months := (deadline.Year()-now.Year())*12 + int(deadline.Month()) - int(now.Month())
	if deadline.Day() < now.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
