package domain

import "strings"

// Role is the closed set of user types the portal knows about.
type Role string

const (
	RoleNone      Role = ""
	RoleApplicant Role = "applicant"
	RoleSupplier  Role = "supplier"
)

// ParseRole maps a raw role tag to a Role. Unknown tags map to RoleNone.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleApplicant:
		return RoleApplicant
	case RoleSupplier:
		return RoleSupplier
	default:
		return RoleNone
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleApplicant || r == RoleSupplier
}

func (r Role) String() string { return string(r) }
