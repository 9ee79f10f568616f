package ports

import (
	"context"

	"github.com/99minutos/service-portal/internal/core/domain"
)

// SessionService drives login and logout for one browser session.
type SessionService interface {
	// Login authenticates against the backend and stores the session only
	// when the returned role matches the login surface. The session moves to
	// a new id, which is returned; prevSID no longer resolves afterwards.
	Login(ctx context.Context, prevSID string, surface domain.Role, username, password string) (domain.Session, string, error)
	Logout(ctx context.Context, sid string) error
	Current(ctx context.Context, sid string) (domain.Session, error)
}
