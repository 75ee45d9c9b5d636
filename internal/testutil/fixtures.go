//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDispatchEmployee inserts one dispatch-register row directly, for
// integration tests that need a known employee without going through
// Ingestion.
func SeedDispatchEmployee(t *testing.T, pool *pgxpool.Pool, employeeNum, name string, hourlyWage int, hireDate time.Time) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
		INSERT INTO dispatch_employees (employee_num, name, department, hourly_wage, hire_date, status, updated_at)
		VALUES ($1, $2, 'logistics', $3, $4, 'active', now())
		ON CONFLICT (employee_num) DO UPDATE SET hourly_wage = EXCLUDED.hourly_wage
	`, employeeNum, name, hourlyWage, hireDate)
	if err != nil {
		t.Fatalf("failed to seed dispatch employee %s: %v", employeeNum, err)
	}
}

// SeedEmployeeYear inserts a ledger row directly, bypassing Grant/CarryOver,
// for tests that exercise Deduct/Balance/CheckFiveDay in isolation.
func SeedEmployeeYear(t *testing.T, pool *pgxpool.Pool, employeeNum string, year int, granted, carriedIn, used, expired float64) {
	t.Helper()
	ctx := context.Background()
	balance := granted + carriedIn - used - expired
	_, err := pool.Exec(ctx, `
		INSERT INTO employee_years (employee_num, year, granted, carried_in, used, expired, balance, status, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', now())
		ON CONFLICT (employee_num, year) DO UPDATE SET
			granted = EXCLUDED.granted, carried_in = EXCLUDED.carried_in,
			used = EXCLUDED.used, expired = EXCLUDED.expired, balance = EXCLUDED.balance
	`, employeeNum, year, granted, carriedIn, used, expired, balance)
	if err != nil {
		t.Fatalf("failed to seed employee year %s/%d: %v", employeeNum, year, err)
	}
}
