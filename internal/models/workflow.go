package models

import "time"

// LeaveStatus is the state of a LeaveRequest in the approval workflow.
type LeaveStatus string

const (
	RequestPending   LeaveStatus = "PENDING"
	RequestApproved  LeaveStatus = "APPROVED"
	RequestRejected  LeaveStatus = "REJECTED"
	RequestCancelled LeaveStatus = "CANCELLED"
)

// LeaveType mirrors the ingestion sentinel grammar's day-unit classification
// so a request's cost estimate and ledger deduction use the same units.
type LeaveType string

const (
	LeaveFull   LeaveType = "full"
	LeaveHalf   LeaveType = "half"
	LeaveHourly LeaveType = "hourly"
)

// LeaveRequest is the unit of work in the approval workflow. Approving one
// deducts DaysRequested from the employee's ledger via LIFO across years;
// the exact per-year breakdown is snapshotted into DeductionBreakdown so a
// later revert can credit back precisely what was taken.
type LeaveRequest struct {
	Base

	EmployeeNum  string `gorm:"column:employee_num;size:20;index" json:"employee_num"`
	EmployeeName string `json:"employee_name"`
	Year         int    `json:"year"`

	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	DaysRequested  Decimal   `json:"days_requested"`
	HoursRequested Decimal   `json:"hours_requested,omitempty"`
	LeaveType      LeaveType `gorm:"size:20" json:"leave_type"`
	Reason         string    `json:"reason,omitempty"`

	Status LeaveStatus `gorm:"size:20;index" json:"status"`

	RequestedAt time.Time `json:"requested_at"`
	RequestedBy string    `json:"requested_by"`

	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	CancelledBy string     `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// HourlyWage is snapshotted from the employee register at creation time
	// so a later wage change never alters a request already in flight.
	HourlyWage   int     `json:"hourly_wage"`
	CostEstimate Decimal `json:"cost_estimate"`

	// DeductionBreakdown holds the []YearDeduction the ledger engine
	// produced on approval, so CancelRequest/RevertRequest can credit back
	// the exact years and amounts it took from.
	DeductionBreakdown JSONBRaw `json:"deduction_breakdown,omitempty"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// YearDeduction is one line of a LIFO deduction breakdown: DaysUsed days
// were drawn from the ledger year Year. Serialized into
// LeaveRequest.DeductionBreakdown.
type YearDeduction struct {
	Year     int     `json:"year"`
	DaysUsed Decimal `json:"days_used"`
}

// CanTransitionTo reports whether the workflow permits moving from the
// request's current status to target.
func (r LeaveRequest) CanTransitionTo(target LeaveStatus) bool {
	switch r.Status {
	case RequestPending:
		return target == RequestApproved || target == RequestRejected || target == RequestCancelled
	case RequestApproved:
		return target == RequestPending || target == RequestCancelled
	default:
		return false
	}
}
