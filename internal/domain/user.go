package domain

import "time"

// Role enumerates actor privilege levels, in increasing order:
// user < technician < manager < admin.
type Role string

const (
	RoleUser       Role = "USER"
	RoleTechnician Role = "TECHNICIAN"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
)

// ValidRole reports whether the value is a known role.
func ValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleTechnician, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is any authenticated account, submitter or staff. Role decides
// what the account may see and mutate.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Role         Role
	DepartmentID *int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
