// Package ledger implements the fiscal-year leave ledger: grant
// computation, LIFO balance breakdown, deduction, year-end carry-over with
// expiration, and the five-day compliance check (Labor Standards Act
// Article 39).
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Failure taxonomy per §7: mutating operations fail into one of these: read
// operations only ever return ErrNotFound or an internal error.
var (
	ErrNotFound            = errors.New("ledger: employee-year not found")
	ErrConflict            = errors.New("ledger: balance conflict")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrPolicyViolation     = errors.New("ledger: would violate fiscal policy")
	ErrInvalidArgument     = errors.New("ledger: invalid argument")
	ErrCarryOverFailed     = errors.New("ledger: carry-over failed")
)

// CarryOverError wraps ErrCarryOverFailed with the offending row identifier
// so callers can report which (employee_num, year) caused the rollback.
type CarryOverError struct {
	EmployeeNum string
	Year        int
	Err         error
}

func (e *CarryOverError) Error() string {
	return "ledger: carry-over failed for " + e.EmployeeNum + ": " + e.Err.Error()
}

func (e *CarryOverError) Unwrap() error { return ErrCarryOverFailed }

// InsufficientBalanceError wraps ErrInsufficientBalance with the
// available-vs-requested delta so callers can surface it in
// error.details (§7's "available"/"requested" detail keys).
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("ledger: insufficient balance: available %s, requested %s", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }
