package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/pkg/metrics"
)

// SessionService implements login and logout against the session store.
type SessionService struct {
	backend ports.Backend
	store   ports.SessionStore
	log     zerolog.Logger
	newID   func() string
}

func NewSessionService(backend ports.Backend, store ports.SessionStore, log zerolog.Logger) *SessionService {
	return &SessionService{backend: backend, store: store, log: log, newID: uuid.NewString}
}

// Login authenticates username on the given surface. A role returned by the
// backend that differs from the surface is a RoleMismatch and nothing is stored.
// On success the session is stored under a freshly issued id, returned to the
// caller, and the record under prevSID is cleared.
func (s *SessionService) Login(ctx context.Context, prevSID string, surface domain.Role, username, password string) (domain.Session, string, error) {
	if username == "" || password == "" {
		return domain.Session{}, "", domain.ErrInvalidCredentials
	}
	if !surface.Valid() {
		return domain.Session{}, "", domain.ErrRoleMismatch
	}

	res, err := s.backend.Login(ctx, username, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(surface.String(), "rejected").Inc()
		return domain.Session{}, "", err
	}
	if res.AccessToken == "" {
		metrics.LoginsTotal.WithLabelValues(surface.String(), "rejected").Inc()
		return domain.Session{}, "", domain.ErrInvalidCredentials
	}
	if res.Role != surface {
		metrics.LoginsTotal.WithLabelValues(surface.String(), "role_mismatch").Inc()
		s.log.Info().
			Str("surface", surface.String()).
			Str("role", res.Role.String()).
			Msg("login rejected: role does not match surface")
		return domain.Session{}, "", domain.ErrRoleMismatch
	}

	sess := domain.Session{
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		Role:         res.Role,
	}
	sid := s.newID()
	if err := s.store.Set(ctx, sid, sess); err != nil {
		return domain.Session{}, "", fmt.Errorf("store session: %w", err)
	}
	if prevSID != "" && prevSID != sid {
		if err := s.store.Clear(ctx, prevSID); err != nil {
			s.log.Warn().Err(err).Msg("previous session not cleared")
		}
	}

	metrics.LoginsTotal.WithLabelValues(surface.String(), "ok").Inc()
	s.log.Info().Str("role", sess.Role.String()).Msg("session started")
	return sess, sid, nil
}

// Logout clears the session. Logging out twice is harmless.
func (s *SessionService) Logout(ctx context.Context, sid string) error {
	if err := s.store.Clear(ctx, sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionService) Current(ctx context.Context, sid string) (domain.Session, error) {
	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return sess.Normalize(), nil
}
