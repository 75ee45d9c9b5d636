//go:build integration

// Package testutil provides test utilities for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// tables lists every table truncated between tests, in FK-safe order
// (children before the parents they reference).
var tables = []string{
	"usage_events",
	"leave_requests",
	"employee_years",
	"audit_entries",
	"dispatch_employees",
	"contract_employees",
	"staff_employees",
	"users",
}

// SetupTestDB connects to the test database.
// If DATABASE_URL is set, it uses that database.
// Otherwise, it uses testcontainers to start a PostgreSQL container.
// Returns the pool.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return GetTestContainer(t)
}

// TruncateAll clears every domain table between tests, leaving the schema
// itself (and its constraints) intact. Registered as a t.Cleanup so each
// test starts from an empty database without paying for a fresh container.
func TruncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Cleanup(func() {
		stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", joinTables(tables))
		if _, err := pool.Exec(context.Background(), stmt); err != nil {
			t.Logf("warning: failed to truncate test tables: %v", err)
		}
	})

	stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", joinTables(tables))
	if _, err := pool.Exec(ctx, stmt); err != nil {
		t.Logf("warning: failed to truncate test tables before run: %v", err)
	}
}

func joinTables(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// CreateTestUser creates a test user for integration tests.
// Returns the user ID. The user is automatically cleaned up after the test.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, email string, role string) string {
	t.Helper()

	ctx := context.Background()

	userID := uuid.New().String()
	now := time.Now()

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, $7)
	`, userID, email, "$2a$10$test.hash.placeholder", "Test User", role, now, now)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", userID)
	})

	return userID
}

// SetupGormDB creates a GORM database connection for testing.
// If DATABASE_URL is set, it uses that database.
// Otherwise, it uses testcontainers to start a PostgreSQL container.
// Returns the GORM DB instance.
func SetupGormDB(t *testing.T) *gorm.DB {
	t.Helper()

	var dbURL string
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" {
		dbURL = envURL
	} else {
		pool := GetTestContainer(t)
		if containerInstance != nil {
			dbURL = containerInstance.ConnStr
		} else {
			config := pool.Config().ConnConfig
			dbURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
				config.User, config.Password, config.Host, config.Port, config.Database)
		}
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database with GORM: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying sql.DB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Logf("warning: failed to close GORM connection: %v", err)
		}
	})

	return db
}
