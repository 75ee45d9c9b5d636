package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// ImportYear writes one employee's ingested state for a fiscal year:
// upserting every usage event (idempotent on employee_num/year/use_date,
// per §4.2), setting granted from the workbook value passed in, and
// recomputing the year's used/balance from the resulting event set. This is the only path through which Ingestion
// mutates EmployeeYear — the register's Granted and Used fields stay
// LedgerEngine-owned even for imported history.
func (e *Engine) ImportYear(ctx context.Context, entry models.EmployeeDirectoryEntry, year int, granted decimal.Decimal, events []models.UsageEvent) error {
	return e.txRunner.Transaction(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)

		for i := range events {
			ev := events[i]
			ev.EmployeeNum = entry.EmployeeNum
			ev.Year = year
			ev.Source = models.SourceIngested
			if err := repo.UpsertUsageEvent(ctx, &ev); err != nil {
				return fmt.Errorf("import usage event for %s/%d: %w", entry.EmployeeNum, year, err)
			}
		}

		all, err := repo.ListUsageEvents(ctx, entry.EmployeeNum, year)
		if err != nil {
			return err
		}
		used := decimal.Zero
		for _, ev := range all {
			used = used.Add(ev.DaysUsed.Decimal)
		}

		row, err := repo.GetYear(ctx, entry.EmployeeNum, year)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if row == nil {
			row = &models.EmployeeYear{EmployeeNum: entry.EmployeeNum, Year: year}
		}
		row.Name = entry.Name
		row.Category = entry.Category
		row.WorkLocation = entry.WorkLocation
		row.HireDate = entry.HireDate
		row.LeaveDate = entry.LeaveDate
		row.Status = entry.Status
		row.Granted = models.NewDecimal(granted)
		row.Used = models.NewDecimal(used)
		row.Recompute()

		return repo.UpsertYear(ctx, row)
	})
}
