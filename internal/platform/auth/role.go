package auth

import "fmt"

// Role is the closed set of account types the API authorizes. Route gates
// match on Role, not on free-form strings, so an unknown value can never
// slip through a comparison.
type Role string

const (
	RoleProvider Role = "provider"
	RolePatient  Role = "patient"
	RoleStaff    Role = "staff"
)

// ParseRole validates a wire-format role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleProvider, RolePatient, RoleStaff:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}
