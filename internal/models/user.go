package models

type Role string

const (
	RoleUser     Role = "user"
	RoleMechanic Role = "mechanic"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated identity held for the lifetime of the
// session. Role determines the allowed route set and request actions.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
	Token string `json:"-"`
}

// Home is the canonical landing route for the principal's role.
func (r Role) Home() string {
	switch r {
	case RoleMechanic:
		return "/mechanic/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/user/dashboard"
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMechanic, RoleAdmin:
		return true
	}
	return false
}
