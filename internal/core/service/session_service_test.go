package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/service-portal/internal/core/access"
	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/infrastructure/db/memory"
)

func TestSessionService_Login_StoresMatchingRole(t *testing.T) {
	backend := newStubBackend()
	backend.loginResult = &ports.LoginResult{AccessToken: "acc", RefreshToken: "ref", Role: domain.RoleSupplier}
	store := memory.NewSessionStore(0)
	svc := NewSessionService(backend, store, zerolog.Nop())

	sess, sid, err := svc.Login(context.Background(), "sid", domain.RoleSupplier, "sam", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupplier, sess.Role)

	stored, err := store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Token: "acc", RefreshToken: "ref", Role: domain.RoleSupplier}, stored)
}

func TestSessionService_Login_IssuesFreshID(t *testing.T) {
	ctx := context.Background()
	backend := newStubBackend()
	backend.loginResult = &ports.LoginResult{AccessToken: "acc", Role: domain.RoleApplicant}
	store := memory.NewSessionStore(0)
	svc := NewSessionService(backend, store, zerolog.Nop())

	// A record planted under the pre-login id must not survive login.
	require.NoError(t, store.Set(ctx, "planted", domain.Session{Token: "old", Role: domain.RoleApplicant}))

	_, sid, err := svc.Login(ctx, "planted", domain.RoleApplicant, "ana", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	assert.NotEqual(t, "planted", sid)

	old, err := store.Get(ctx, "planted")
	require.NoError(t, err)
	assert.False(t, old.Authenticated())

	fresh, err := store.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "acc", fresh.Token)

	_, again, err := svc.Login(ctx, sid, domain.RoleApplicant, "ana", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, sid, again)
}

func TestSessionService_Login_RoleMismatchStoresNothing(t *testing.T) {
	backend := newStubBackend()
	backend.loginResult = &ports.LoginResult{AccessToken: "acc", Role: domain.RoleSupplier}
	store := memory.NewSessionStore(0)
	svc := NewSessionService(backend, store, zerolog.Nop())

	_, sid, err := svc.Login(context.Background(), "sid", domain.RoleApplicant, "sam", "pw")
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)
	assert.Empty(t, sid)

	stored, _ := store.Get(context.Background(), "sid")
	assert.False(t, stored.Authenticated())
}

func TestSessionService_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		result   *ports.LoginResult
		err      error
		want     error
	}{
		{name: "empty username", user: "", password: "pw", want: domain.ErrInvalidCredentials},
		{name: "backend rejects", user: "a", password: "pw", err: &domain.LoginRejectedError{Message: "No active account"}, want: domain.ErrInvalidCredentials},
		{name: "network", user: "a", password: "pw", err: domain.ErrNetworkFailure, want: domain.ErrNetworkFailure},
		{name: "no token", user: "a", password: "pw", result: &ports.LoginResult{Role: domain.RoleApplicant}, want: domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newStubBackend()
			backend.loginResult, backend.loginErr = tt.result, tt.err
			store := memory.NewSessionStore(0)
			svc := NewSessionService(backend, store, zerolog.Nop())

			_, _, err := svc.Login(context.Background(), "sid", domain.RoleApplicant, tt.user, tt.password)
			assert.ErrorIs(t, err, tt.want)

			stored, _ := store.Get(context.Background(), "sid")
			assert.False(t, stored.Authenticated())
		})
	}
}

func TestSessionService_Login_KeepsBackendMessage(t *testing.T) {
	backend := newStubBackend()
	backend.loginErr = &domain.LoginRejectedError{Message: "No active account found"}
	svc := NewSessionService(backend, memory.NewSessionStore(0), zerolog.Nop())

	_, _, err := svc.Login(context.Background(), "sid", domain.RoleApplicant, "a", "b")
	var rejected *domain.LoginRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "No active account found", rejected.Error())
}

// Supplier logs in, reaches a supplier view, is refused an applicant view,
// logs out and is sent back to login.
func TestSessionService_SupplierJourney(t *testing.T) {
	ctx := context.Background()
	backend := newStubBackend()
	backend.loginResult = &ports.LoginResult{AccessToken: "acc", Role: domain.RoleSupplier}
	store := memory.NewSessionStore(0)
	svc := NewSessionService(backend, store, zerolog.Nop())

	supplierView := access.MustPolicy(domain.RoleSupplier)
	applicantView := access.MustPolicy(domain.RoleApplicant)

	_, sid, err := svc.Login(ctx, "anon", domain.RoleSupplier, "sam", "pw")
	require.NoError(t, err)

	sess, err := svc.Current(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, access.Allow, access.Decide(sess, supplierView))
	assert.Equal(t, access.RedirectForbidden, access.Decide(sess, applicantView))

	require.NoError(t, svc.Logout(ctx, sid))
	require.NoError(t, svc.Logout(ctx, sid))

	sess, err = svc.Current(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, access.RedirectLogin, access.Decide(sess, supplierView))
}
