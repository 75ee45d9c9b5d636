package models

import "time"

// EmployeeYear is the per-employee, per-fiscal-year statutory leave ledger
// row. Its natural key is (employee_num, year); it does not embed Base
// because it is never looked up by surrogate ID.
//
// balance = granted + carried_in - used - expired.
type EmployeeYear struct {
	EmployeeNum string `gorm:"column:employee_num;size:20;primaryKey" json:"employee_num"`
	Year        int    `gorm:"primaryKey" json:"year"`

	Name         string           `json:"name"`
	Category     EmployeeCategory `gorm:"size:20" json:"category"`
	WorkLocation string           `json:"work_location,omitempty"`

	Granted   Decimal `json:"granted"`
	CarriedIn Decimal `json:"carried_in"`
	Used      Decimal `json:"used"`
	Expired   Decimal `json:"expired"`
	Balance   Decimal `json:"balance"`

	HireDate  time.Time        `json:"hire_date"`
	LeaveDate *time.Time       `json:"leave_date,omitempty"`
	Status    EmploymentStatus `gorm:"size:20" json:"status"`

	LastUpdated time.Time `json:"last_updated"`
}

func (EmployeeYear) TableName() string { return "employee_years" }

// Recompute refreshes Balance from the other four fields. The ledger engine
// calls this after every mutation and compares against the previously
// persisted value before committing, per the post-write balance assertion.
func (e *EmployeeYear) Recompute() {
	sum := e.Granted.Add(e.CarriedIn.Decimal).Sub(e.Used.Decimal).Sub(e.Expired.Decimal)
	e.Balance = NewDecimal(sum)
}

// UsageType classifies a single deduction recorded against a ledger year.
type UsageType string

const (
	UsageFull    UsageType = "full"
	UsageHalf    UsageType = "half"
	UsageHourly  UsageType = "hourly"
	UsageExpired UsageType = "expired"
	UsagePaidOut UsageType = "paid_out"
)

// UsageSource distinguishes usage recorded from a workbook import versus
// one produced by an approved LeaveRequest or a manual adjustment.
type UsageSource string

const (
	SourceIngested        UsageSource = "ingested"
	SourceApprovedRequest UsageSource = "approved_request"
	SourceManual          UsageSource = "manual"
)

// UsageEvent is one dated deduction against an EmployeeYear. Rows are
// append-only: corrections are made by inserting a reversing event, never
// by editing one in place.
type UsageEvent struct {
	Base

	EmployeeNum string      `gorm:"column:employee_num;size:20;index:idx_usage_events_employee_year" json:"employee_num"`
	Year        int         `gorm:"index:idx_usage_events_employee_year" json:"year"`
	UseDate     time.Time   `json:"use_date"`
	DaysUsed    Decimal     `json:"days_used"`
	Type        UsageType   `gorm:"size:20" json:"type"`
	Source      UsageSource `gorm:"size:20" json:"source"`
	RequestID   *string     `json:"request_id,omitempty"`
	Note        string      `json:"note,omitempty"`
}

func (UsageEvent) TableName() string { return "usage_events" }

// ComplianceState is the five-day-rule classification an EmployeeYear is
// assigned once it accrues at least minimum_days_for_obligation days.
type ComplianceState string

const (
	ComplianceCompliant    ComplianceState = "compliant"
	ComplianceAtRisk       ComplianceState = "at_risk"
	ComplianceNonCompliant ComplianceState = "non_compliant"
	ComplianceExempted     ComplianceState = "exempted"
)

// ComplianceResult is the read-only output of a five-day-compliance check,
// not persisted as its own table — it is derived from EmployeeYear +
// UsageEvent at query time or scheduler sweep time.
type ComplianceResult struct {
	EmployeeNum string          `json:"employee_num"`
	Year        int             `json:"year"`
	DaysDrawn   Decimal         `json:"days_drawn"`
	State       ComplianceState `json:"state"`
	DeadlineAt  time.Time       `json:"deadline_at"`
}
