// Package access decides whether a session may enter a role-scoped view.
package access

import (
	"github.com/99minutos/service-portal/internal/core/domain"
)

// Decision is the outcome of a gate evaluation.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Policy is the fixed set of roles allowed into one view.
type Policy struct {
	allowed map[domain.Role]struct{}
}

// NewPolicy builds a policy from a non-empty list of valid roles.
func NewPolicy(roles ...domain.Role) (Policy, error) {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		if r.Valid() {
			allowed[r] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return Policy{}, domain.ErrEmptyPolicy
	}
	return Policy{allowed: allowed}, nil
}

// MustPolicy is NewPolicy for route tables built at startup.
func MustPolicy(roles ...domain.Role) Policy {
	p, err := NewPolicy(roles...)
	if err != nil {
		panic(err)
	}
	return p
}

// Allows reports whether r is a member of the policy.
func (p Policy) Allows(r domain.Role) bool {
	_, ok := p.allowed[r]
	return ok
}

// Roles returns the allowed roles in a stable order.
func (p Policy) Roles() []domain.Role {
	out := make([]domain.Role, 0, len(p.allowed))
	for _, r := range []domain.Role{domain.RoleApplicant, domain.RoleSupplier} {
		if p.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}

// Decide evaluates s against p. It has no side effects and must be called
// again on every navigation.
func Decide(s domain.Session, p Policy) Decision {
	if !s.Authenticated() {
		return RedirectLogin
	}
	if !p.Allows(s.Role) {
		return RedirectForbidden
	}
	return Allow
}
