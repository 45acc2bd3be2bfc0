package model

type Role struct {
	ID          int64
	Name        string
	Description string
}

const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleManager    = "Manager"
	RoleHR         = "HR"
	RoleEmployee   = "Employee"
)

// DefaultRole is assigned to every account at registration.
const DefaultRole = RoleEmployee

// SeededRoles are created once at startup and never modified afterwards.
var SeededRoles = []Role{
	{Name: RoleSuperAdmin, Description: "Full system access"},
	{Name: RoleAdmin, Description: "Administrative access"},
	{Name: RoleManager, Description: "Manages a department's employees"},
	{Name: RoleHR, Description: "Human resources staff"},
	{Name: RoleEmployee, Description: "Regular employee"},
}
