package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/service-portal/internal/core/domain"
)

func TestNewPolicy(t *testing.T) {
	_, err := NewPolicy()
	assert.ErrorIs(t, err, domain.ErrEmptyPolicy)

	_, err = NewPolicy(domain.RoleNone, domain.Role("admin"))
	assert.ErrorIs(t, err, domain.ErrEmptyPolicy)

	p, err := NewPolicy(domain.RoleSupplier, domain.RoleApplicant, domain.RoleSupplier)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleApplicant, domain.RoleSupplier}, p.Roles())

	assert.Panics(t, func() { MustPolicy() })
}

func TestDecide(t *testing.T) {
	applicantOnly := MustPolicy(domain.RoleApplicant)
	both := MustPolicy(domain.RoleApplicant, domain.RoleSupplier)

	tests := []struct {
		name    string
		session domain.Session
		policy  Policy
		want    Decision
	}{
		{"no session", domain.Session{}, applicantOnly, RedirectLogin},
		{"role without token", domain.Session{Role: domain.RoleApplicant}, applicantOnly, RedirectLogin},
		{"token without role", domain.Session{Token: "t"}, both, RedirectForbidden},
		{"allowed role", domain.Session{Token: "t", Role: domain.RoleApplicant}, applicantOnly, Allow},
		{"other role", domain.Session{Token: "t", Role: domain.RoleSupplier}, applicantOnly, RedirectForbidden},
		{"either role", domain.Session{Token: "t", Role: domain.RoleSupplier}, both, Allow},
		{"unknown role", domain.Session{Token: "t", Role: domain.Role("admin")}, both, RedirectForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.session, tt.policy))
		})
	}
}

// An empty token always sends the user to login, whatever the policy.
func TestDecide_EmptyTokenAlwaysLogin(t *testing.T) {
	policies := []Policy{
		MustPolicy(domain.RoleApplicant),
		MustPolicy(domain.RoleSupplier),
		MustPolicy(domain.RoleApplicant, domain.RoleSupplier),
	}
	roles := []domain.Role{domain.RoleNone, domain.RoleApplicant, domain.RoleSupplier}
	for _, p := range policies {
		for _, r := range roles {
			assert.Equal(t, RedirectLogin, Decide(domain.Session{Role: r}, p))
		}
	}
}

// Decide is evaluated fresh each time: the same session gets a different
// answer after its token is dropped.
func TestDecide_ReevaluatedAfterLogout(t *testing.T) {
	p := MustPolicy(domain.RoleApplicant)
	s := domain.Session{Token: "t", Role: domain.RoleApplicant}

	assert.Equal(t, Allow, Decide(s, p))
	assert.Equal(t, Allow, Decide(s, p))

	s = domain.Session{}
	assert.Equal(t, RedirectLogin, Decide(s, p))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect_login", RedirectLogin.String())
	assert.Equal(t, "redirect_forbidden", RedirectForbidden.String())
	assert.Equal(t, "unknown", Decision(99).String())
}
