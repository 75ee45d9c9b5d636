package models

// Role is a user's permission level in the ApiPlane.
type Role string

const (
	RoleUser     Role = "user"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

// User is an authentication principal. EmployeeNum is optional and links a
// self-service login back to its own register/ledger rows; it is empty for
// approver/admin accounts that are not themselves employees in the
// registers.
type User struct {
	Base

	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         Role   `gorm:"size:20" json:"role"`
	EmployeeNum  string `gorm:"column:employee_num;size:20;index" json:"employee_num,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

func (User) TableName() string { return "users" }
