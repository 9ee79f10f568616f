package ports

import (
	"context"

	"github.com/99minutos/service-portal/internal/core/domain"
)

// SessionStore holds one Session per browser session id. It is the only
// place a session lives; every decision re-reads it.
type SessionStore interface {
	// Set stores token and role together, replacing any prior session.
	Set(ctx context.Context, sid string, s domain.Session) error
	// Get returns the stored session, or the zero Session when none exists.
	Get(ctx context.Context, sid string) (domain.Session, error)
	// Clear removes the session. Clearing a missing session is not an error.
	Clear(ctx context.Context, sid string) error
	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
}

// SubmitGuard suppresses duplicate order submissions sharing a key.
type SubmitGuard interface {
	// Claim returns true the first time key is seen within the guard window.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed submission can be retried.
	Release(ctx context.Context, key string) error
}
