package models

import "strings"

// Role is the access level of the selected user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored role string onto a Role. Anything that is not
// admin is treated as a customer.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	if r == "" {
		return string(RoleCustomer)
	}
	return string(r)
}

// Selection is the user currently being viewed in a browser session.
type Selection struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the selection broadens queries to all users.
func (s Selection) IsAdmin() bool {
	return s.Role.IsAdmin()
}
