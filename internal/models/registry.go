package models

import "time"

// EmployeeCategory is one of the three employment categories the registers
// are split by. Each category has its own register schema (§3.1).
type EmployeeCategory string

const (
	CategoryDispatch EmployeeCategory = "dispatch"
	CategoryContract EmployeeCategory = "contract"
	CategoryStaff    EmployeeCategory = "staff"
)

// EmploymentStatus tracks whether an employee is currently eligible to
// accrue and use leave.
type EmploymentStatus string

const (
	StatusActive    EmploymentStatus = "active"
	StatusRetired   EmploymentStatus = "retired"
	StatusSuspended EmploymentStatus = "suspended"
)

// DispatchEmployee is a row in the dispatch register (columns 1, 3, 7, 13
// of the register workbook per §4.2).
type DispatchEmployee struct {
	EmployeeNum string     `gorm:"column:employee_num;size:20;primaryKey" json:"employee_num"`
	DispatchName string   `json:"dispatch_name"`
	Name        string     `json:"name"`
	Department  string     `json:"department,omitempty"`
	Line        string     `json:"line,omitempty"`
	Job         string     `json:"job,omitempty"`
	HourlyWage  int        `json:"hourly_wage"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	HireDate    time.Time  `json:"hire_date"`
	LeaveDate   *time.Time `json:"leave_date,omitempty"`
	Status      EmploymentStatus `gorm:"size:20" json:"status"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (DispatchEmployee) TableName() string { return "dispatch_employees" }

// ContractEmployee is a row in the contract register (columns 1, 2, 3).
type ContractEmployee struct {
	EmployeeNum string     `gorm:"column:employee_num;size:20;primaryKey" json:"employee_num"`
	Business    string     `json:"business,omitempty"`
	Name        string     `json:"name"`
	HourlyWage  int        `json:"hourly_wage"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	HireDate    time.Time  `json:"hire_date"`
	LeaveDate   *time.Time `json:"leave_date,omitempty"`
	Status      EmploymentStatus `gorm:"size:20" json:"status"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ContractEmployee) TableName() string { return "contract_employees" }

// StaffEmployee is a row in the staff register (columns 1, 3, 15, 16).
type StaffEmployee struct {
	EmployeeNum string     `gorm:"column:employee_num;size:20;primaryKey" json:"employee_num"`
	Name        string     `json:"name"`
	Office      string     `json:"office,omitempty"`
	HourlyWage  int        `json:"hourly_wage"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	HireDate    time.Time  `json:"hire_date"`
	LeaveDate   *time.Time `json:"leave_date,omitempty"`
	Status      EmploymentStatus `gorm:"size:20" json:"status"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (StaffEmployee) TableName() string { return "staff_employees" }

// EmployeeDirectoryEntry is the category-agnostic read shape ApiPlane
// returns from /employees and /employees/search — register rows do not
// share a Go type, but callers need one to paginate/filter across them.
type EmployeeDirectoryEntry struct {
	EmployeeNum string           `json:"employee_num"`
	Name        string           `json:"name"`
	Category    EmployeeCategory `json:"category"`
	WorkLocation string          `json:"work_location,omitempty"`
	HourlyWage  int              `json:"hourly_wage"`
	HireDate    time.Time        `json:"hire_date"`
	LeaveDate   *time.Time       `json:"leave_date,omitempty"`
	Status      EmploymentStatus `json:"status"`
}

// WorkLocation resolves the category-specific "location" attribute used
// by the full-text index over (name, location): department for dispatch,
// business for contract, office for staff.
func (e DispatchEmployee) WorkLocation() string { return e.Department }
func (e ContractEmployee) WorkLocation() string { return e.Business }
func (e StaffEmployee) WorkLocation() string    { return e.Office }
