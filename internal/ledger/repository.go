package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// Repository defines the contract for ledger-row and usage-event storage.
// Mutating methods assume the caller already holds the transaction (via
// WithTx) that couples them to the rest of the operation.
type Repository interface {
	GetYear(ctx context.Context, employeeNum string, year int) (*models.EmployeeYear, error)
	ListYears(ctx context.Context, employeeNum string) ([]models.EmployeeYear, error)
	UpsertYear(ctx context.Context, row *models.EmployeeYear) error
	DeleteYear(ctx context.Context, employeeNum string, year int) error
	AppendUsageEvent(ctx context.Context, ev *models.UsageEvent) error
	UpsertUsageEvent(ctx context.Context, ev *models.UsageEvent) error
	ListUsageEvents(ctx context.Context, employeeNum string, year int) ([]models.UsageEvent, error)
	ListActiveWithPositiveBalance(ctx context.Context, year int) ([]models.EmployeeYear, error)
	ListAllForYear(ctx context.Context, year int) ([]models.EmployeeYear, error)
	ListYearsAtOrBefore(ctx context.Context, year int) ([]models.EmployeeYear, error)
	WithTx(tx *gorm.DB) Repository
}

// GORMRepository implements Repository against the single-schema Postgres
// database via GORM, the module's primary persistence path.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a ledger repository bound to db.
func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// WithTx returns a repository bound to an in-flight transaction.
func (r *GORMRepository) WithTx(tx *gorm.DB) Repository {
	return &GORMRepository{db: tx}
}

func (r *GORMRepository) GetYear(ctx context.Context, employeeNum string, year int) (*models.EmployeeYear, error) {
	var row models.EmployeeYear
	err := r.db.WithContext(ctx).
		Where("employee_num = ? AND year = ?", employeeNum, year).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee year: %w", err)
	}
	return &row, nil
}

func (r *GORMRepository) ListYears(ctx context.Context, employeeNum string) ([]models.EmployeeYear, error) {
	var rows []models.EmployeeYear
	err := r.db.WithContext(ctx).
		Where("employee_num = ?", employeeNum).
		Order("year DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list employee years: %w", err)
	}
	return rows, nil
}

func (r *GORMRepository) UpsertYear(ctx context.Context, row *models.EmployeeYear) error {
	row.Recompute()
	err := r.db.WithContext(ctx).
		Where("employee_num = ? AND year = ?", row.EmployeeNum, row.Year).
		Assign(*row).
		FirstOrCreate(&models.EmployeeYear{EmployeeNum: row.EmployeeNum, Year: row.Year}).Error
	if err != nil {
		return fmt.Errorf("upsert employee year: %w", err)
	}
	return nil
}

func (r *GORMRepository) DeleteYear(ctx context.Context, employeeNum string, year int) error {
	err := r.db.WithContext(ctx).
		Where("employee_num = ? AND year = ?", employeeNum, year).
		Delete(&models.EmployeeYear{}).Error
	if err != nil {
		return fmt.Errorf("delete employee year: %w", err)
	}
	return nil
}

func (r *GORMRepository) AppendUsageEvent(ctx context.Context, ev *models.UsageEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("append usage event: %w", err)
	}
	return nil
}

// UpsertUsageEvent writes one usage event keyed on (employee_num, year,
// use_date), last-writer-wins on days_used/type — the idempotence contract
// Ingestion needs to re-run the same workbook without duplicating rows.
func (r *GORMRepository) UpsertUsageEvent(ctx context.Context, ev *models.UsageEvent) error {
	err := r.db.WithContext(ctx).
		Where("employee_num = ? AND year = ? AND use_date = ?", ev.EmployeeNum, ev.Year, ev.UseDate).
		Assign(map[string]interface{}{
			"days_used": ev.DaysUsed,
			"type":      ev.Type,
			"source":    ev.Source,
			"note":      ev.Note,
		}).
		FirstOrCreate(ev).Error
	if err != nil {
		return fmt.Errorf("upsert usage event: %w", err)
	}
	return nil
}

func (r *GORMRepository) ListUsageEvents(ctx context.Context, employeeNum string, year int) ([]models.UsageEvent, error) {
	var rows []models.UsageEvent
	err := r.db.WithContext(ctx).
		Where("employee_num = ? AND year = ?", employeeNum, year).
		Order("use_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list usage events: %w", err)
	}
	return rows, nil
}

// DeleteUsageEventsByRequestID removes every UsageEvent linked to a
// LeaveRequest, used by RequestWorkflow's revert transition. Not part of
// Repository — it's exercised structurally by internal/workflow, which
// declares its own narrow interface over GORMRepository.
func (r *GORMRepository) DeleteUsageEventsByRequestID(ctx context.Context, requestID string) error {
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&models.UsageEvent{}).Error
	if err != nil {
		return fmt.Errorf("delete usage events for request %s: %w", requestID, err)
	}
	return nil
}

func (r *GORMRepository) ListActiveWithPositiveBalance(ctx context.Context, year int) ([]models.EmployeeYear, error) {
	var rows []models.EmployeeYear
	err := r.db.WithContext(ctx).
		Where("year = ? AND status = ? AND balance > 0", year, models.StatusActive).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list active employee years with positive balance: %w", err)
	}
	return rows, nil
}

func (r *GORMRepository) ListAllForYear(ctx context.Context, year int) ([]models.EmployeeYear, error) {
	var rows []models.EmployeeYear
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list employee years for %d: %w", year, err)
	}
	return rows, nil
}

func (r *GORMRepository) ListYearsAtOrBefore(ctx context.Context, year int) ([]models.EmployeeYear, error) {
	var rows []models.EmployeeYear
	err := r.db.WithContext(ctx).
		Where("year <= ? AND balance > 0", year).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list employee years at or before %d: %w", year, err)
	}
	return rows, nil
}
