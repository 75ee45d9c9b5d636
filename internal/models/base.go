package models

import (
	"time"

	"github.com/yukyu/ledger/internal/database"
)

// Re-export database types for convenience
type Decimal = database.Decimal
type JSONB = database.JSONB
type JSONBRaw = database.JSONBRaw

// Convenience functions
var (
	NewDecimal           = database.NewDecimal
	NewDecimalFromFloat  = database.NewDecimalFromFloat
	NewDecimalFromString = database.NewDecimalFromString
	DecimalZero          = database.DecimalZero
)

// Base is the common surrogate-key/timestamp embed for entities that are
// not naturally keyed (LeaveRequest, AuditEntry, UsageEvent).
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}
