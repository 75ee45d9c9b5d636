// Package workflow implements RequestWorkflow: the LeaveRequest state
// machine and its atomic coupling to the ledger engine on approve/revert.
package workflow

import "errors"

var (
	ErrNotFound          = errors.New("workflow: leave request not found")
	ErrInvalidTransition = errors.New("workflow: invalid state transition")
	ErrInvalidArgument   = errors.New("workflow: invalid argument")
	ErrForbidden         = errors.New("workflow: actor lacks required scope")
	ErrEmployeeInactive  = errors.New("workflow: employee is not active")
	ErrEmployeeNotFound  = errors.New("workflow: employee not found")
)
