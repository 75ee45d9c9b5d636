// Package registry implements the three Employee Registers (dispatch,
// contract, staff): the source of truth for employee existence, wage, and
// status, which RequestWorkflow and the ledger's carry-over/grant paths read
// from and Ingestion writes to.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("registry: employee not found")

// Directory resolves a category-agnostic view across the three register
// tables. Each register keys on employee_num as its primary key, so a
// per-category lookup is a single indexed query; Lookup tries each in turn
// and returns on the first hit, which is the common case (one query) since
// an employee_num belongs to exactly one register.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Lookup resolves an employee_num to its category-agnostic directory entry.
func (d *Directory) Lookup(ctx context.Context, employeeNum string) (*models.EmployeeDirectoryEntry, error) {
	var dispatch models.DispatchEmployee
	if err := d.db.WithContext(ctx).First(&dispatch, "employee_num = ?", employeeNum).Error; err == nil {
		return dispatchEntry(dispatch), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup dispatch employee: %w", err)
	}

	var contract models.ContractEmployee
	if err := d.db.WithContext(ctx).First(&contract, "employee_num = ?", employeeNum).Error; err == nil {
		return contractEntry(contract), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup contract employee: %w", err)
	}

	var staff models.StaffEmployee
	if err := d.db.WithContext(ctx).First(&staff, "employee_num = ?", employeeNum).Error; err == nil {
		return staffEntry(staff), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup staff employee: %w", err)
	}

	return nil, ErrNotFound
}

// ListCategory returns every register row for one category, for
// CarryOver/grant-computation sweeps and admin listing.
func (d *Directory) ListCategory(ctx context.Context, category models.EmployeeCategory) ([]models.EmployeeDirectoryEntry, error) {
	switch category {
	case models.CategoryDispatch:
		var rows []models.DispatchEmployee
		if err := d.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list dispatch employees: %w", err)
		}
		out := make([]models.EmployeeDirectoryEntry, len(rows))
		for i, r := range rows {
			out[i] = *dispatchEntry(r)
		}
		return out, nil
	case models.CategoryContract:
		var rows []models.ContractEmployee
		if err := d.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list contract employees: %w", err)
		}
		out := make([]models.EmployeeDirectoryEntry, len(rows))
		for i, r := range rows {
			out[i] = *contractEntry(r)
		}
		return out, nil
	case models.CategoryStaff:
		var rows []models.StaffEmployee
		if err := d.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list staff employees: %w", err)
		}
		out := make([]models.EmployeeDirectoryEntry, len(rows))
		for i, r := range rows {
			out[i] = *staffEntry(r)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("registry: unknown category %q", category)
	}
}

// ListAll returns every active register row across all three categories,
// for the annual grant-computation and carry-over sweeps.
func (d *Directory) ListAll(ctx context.Context) ([]models.EmployeeDirectoryEntry, error) {
	var out []models.EmployeeDirectoryEntry
	for _, cat := range []models.EmployeeCategory{models.CategoryDispatch, models.CategoryContract, models.CategoryStaff} {
		rows, err := d.ListCategory(ctx, cat)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Upsert writes one register row, keyed on employee_num, as produced by
// Ingestion. The category on entry selects the destination table.
func (d *Directory) Upsert(ctx context.Context, category models.EmployeeCategory, entry models.EmployeeDirectoryEntry) error {
	switch category {
	case models.CategoryDispatch:
		row := models.DispatchEmployee{
			EmployeeNum: entry.EmployeeNum,
			Name:        entry.Name,
			Department:  entry.WorkLocation,
			HourlyWage:  entry.HourlyWage,
			HireDate:    entry.HireDate,
			LeaveDate:   entry.LeaveDate,
			Status:      entry.Status,
		}
		return d.upsert(ctx, &row, "employee_num = ?", row.EmployeeNum)
	case models.CategoryContract:
		row := models.ContractEmployee{
			EmployeeNum: entry.EmployeeNum,
			Name:        entry.Name,
			Business:    entry.WorkLocation,
			HourlyWage:  entry.HourlyWage,
			HireDate:    entry.HireDate,
			LeaveDate:   entry.LeaveDate,
			Status:      entry.Status,
		}
		return d.upsert(ctx, &row, "employee_num = ?", row.EmployeeNum)
	case models.CategoryStaff:
		row := models.StaffEmployee{
			EmployeeNum: entry.EmployeeNum,
			Name:        entry.Name,
			Office:      entry.WorkLocation,
			HourlyWage:  entry.HourlyWage,
			HireDate:    entry.HireDate,
			LeaveDate:   entry.LeaveDate,
			Status:      entry.Status,
		}
		return d.upsert(ctx, &row, "employee_num = ?", row.EmployeeNum)
	default:
		return fmt.Errorf("registry: unknown category %q", category)
	}
}

func (d *Directory) upsert(ctx context.Context, row interface{}, cond string, args ...interface{}) error {
	err := d.db.WithContext(ctx).Where(cond, args...).Assign(row).FirstOrCreate(row).Error
	if err != nil {
		return fmt.Errorf("upsert register row: %w", err)
	}
	return nil
}

func dispatchEntry(r models.DispatchEmployee) *models.EmployeeDirectoryEntry {
	return &models.EmployeeDirectoryEntry{
		EmployeeNum:  r.EmployeeNum,
		Name:         r.Name,
		Category:     models.CategoryDispatch,
		WorkLocation: r.WorkLocation(),
		HourlyWage:   r.HourlyWage,
		HireDate:     r.HireDate,
		LeaveDate:    r.LeaveDate,
		Status:       r.Status,
	}
}

func contractEntry(r models.ContractEmployee) *models.EmployeeDirectoryEntry {
	return &models.EmployeeDirectoryEntry{
		EmployeeNum:  r.EmployeeNum,
		Name:         r.Name,
		Category:     models.CategoryContract,
		WorkLocation: r.WorkLocation(),
		HourlyWage:   r.HourlyWage,
		HireDate:     r.HireDate,
		LeaveDate:    r.LeaveDate,
		Status:       r.Status,
	}
}

func staffEntry(r models.StaffEmployee) *models.EmployeeDirectoryEntry {
	return &models.EmployeeDirectoryEntry{
		EmployeeNum:  r.EmployeeNum,
		Name:         r.Name,
		Category:     models.CategoryStaff,
		WorkLocation: r.WorkLocation(),
		HourlyWage:   r.HourlyWage,
		HireDate:     r.HireDate,
		LeaveDate:    r.LeaveDate,
		Status:       r.Status,
	}
}
