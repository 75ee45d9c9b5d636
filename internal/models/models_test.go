package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployeeYear_Recompute(t *testing.T) {
	ey := EmployeeYear{
		Granted:   NewDecimalFromFloat(10),
		CarriedIn: NewDecimalFromFloat(3),
		Used:      NewDecimalFromFloat(4),
		Expired:   NewDecimalFromFloat(1),
	}
	ey.Recompute()
	assert.True(t, ey.Balance.Equal(NewDecimalFromFloat(8).Decimal))
}

func TestLeaveRequest_CanTransitionTo(t *testing.T) {
	pending := LeaveRequest{Status: RequestPending}
	assert.True(t, pending.CanTransitionTo(RequestApproved))
	assert.True(t, pending.CanTransitionTo(RequestRejected))
	assert.True(t, pending.CanTransitionTo(RequestCancelled))
	assert.False(t, pending.CanTransitionTo(RequestPending))

	approved := LeaveRequest{Status: RequestApproved}
	assert.True(t, approved.CanTransitionTo(RequestPending))
	assert.True(t, approved.CanTransitionTo(RequestCancelled))
	assert.False(t, approved.CanTransitionTo(RequestRejected))

	rejected := LeaveRequest{Status: RequestRejected}
	assert.False(t, rejected.CanTransitionTo(RequestPending))
	assert.False(t, rejected.CanTransitionTo(RequestApproved))
}

func TestWorkLocationAccessors(t *testing.T) {
	d := DispatchEmployee{Department: "logistics"}
	assert.Equal(t, "logistics", d.WorkLocation())

	c := ContractEmployee{Business: "sales"}
	assert.Equal(t, "sales", c.WorkLocation())

	s := StaffEmployee{Office: "tokyo"}
	assert.Equal(t, "tokyo", s.WorkLocation())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "employee_years", EmployeeYear{}.TableName())
	assert.Equal(t, "usage_events", UsageEvent{}.TableName())
	assert.Equal(t, "leave_requests", LeaveRequest{}.TableName())
	assert.Equal(t, "audit_entries", AuditEntry{}.TableName())
	assert.Equal(t, "dispatch_employees", DispatchEmployee{}.TableName())
	assert.Equal(t, "contract_employees", ContractEmployee{}.TableName())
	assert.Equal(t, "staff_employees", StaffEmployee{}.TableName())
	assert.Equal(t, "users", User{}.TableName())
}
