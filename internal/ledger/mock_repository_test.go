package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// mockRepository is an in-memory Repository for unit tests, grounded on the
// teacher's MockAbsenceRepository pattern.
type mockRepository struct {
	years  map[string]models.EmployeeYear
	events []models.UsageEvent
}

func newMockRepository() *mockRepository {
	return &mockRepository{years: make(map[string]models.EmployeeYear)}
}

func key(employeeNum string, year int) string {
	return fmt.Sprintf("%s/%d", employeeNum, year)
}

func (m *mockRepository) WithTx(tx *gorm.DB) Repository { return m }

func (m *mockRepository) GetYear(_ context.Context, employeeNum string, year int) (*models.EmployeeYear, error) {
	row, ok := m.years[key(employeeNum, year)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := row
	return &cp, nil
}

func (m *mockRepository) ListYears(_ context.Context, employeeNum string) ([]models.EmployeeYear, error) {
	var out []models.EmployeeYear
	for _, row := range m.years {
		if row.EmployeeNum == employeeNum {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (m *mockRepository) UpsertYear(_ context.Context, row *models.EmployeeYear) error {
	row.Recompute()
	m.years[key(row.EmployeeNum, row.Year)] = *row
	return nil
}

func (m *mockRepository) DeleteYear(_ context.Context, employeeNum string, year int) error {
	delete(m.years, key(employeeNum, year))
	return nil
}

func (m *mockRepository) AppendUsageEvent(_ context.Context, ev *models.UsageEvent) error {
	m.events = append(m.events, *ev)
	return nil
}

func (m *mockRepository) UpsertUsageEvent(_ context.Context, ev *models.UsageEvent) error {
	for i, existing := range m.events {
		if existing.EmployeeNum == ev.EmployeeNum && existing.Year == ev.Year && existing.UseDate.Equal(ev.UseDate) {
			m.events[i].DaysUsed = ev.DaysUsed
			m.events[i].Type = ev.Type
			m.events[i].Source = ev.Source
			m.events[i].Note = ev.Note
			return nil
		}
	}
	m.events = append(m.events, *ev)
	return nil
}

func (m *mockRepository) ListUsageEvents(_ context.Context, employeeNum string, year int) ([]models.UsageEvent, error) {
	var out []models.UsageEvent
	for _, ev := range m.events {
		if ev.EmployeeNum == employeeNum && ev.Year == year {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockRepository) ListActiveWithPositiveBalance(_ context.Context, year int) ([]models.EmployeeYear, error) {
	var out []models.EmployeeYear
	for _, row := range m.years {
		if row.Year == year && row.Status == models.StatusActive && row.Balance.IsPositive() {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockRepository) ListAllForYear(_ context.Context, year int) ([]models.EmployeeYear, error) {
	var out []models.EmployeeYear
	for _, row := range m.years {
		if row.Year == year {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockRepository) ListYearsAtOrBefore(_ context.Context, year int) ([]models.EmployeeYear, error) {
	var out []models.EmployeeYear
	for _, row := range m.years {
		if row.Year <= year && row.Balance.IsPositive() {
			out = append(out, row)
		}
	}
	return out, nil
}
