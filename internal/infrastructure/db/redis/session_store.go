package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/service-portal/internal/core/domain"
)

const (
	fieldToken   = "token"
	fieldRefresh = "refresh_token"
	fieldRole    = "role"
)

// SessionStore keeps one hash per browser session.
// Key format: session:<sid>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps client. A ttl of zero keeps sessions until cleared.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Set replaces the session in a single MULTI/EXEC so no reader sees the
// token without the role.
func (s *SessionStore) Set(ctx context.Context, sid string, sess domain.Session) error {
	key := s.key(sid)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			fieldToken:   sess.Token,
			fieldRefresh: sess.RefreshToken,
			fieldRole:    string(sess.Role),
		})
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sid string) (domain.Session, error) {
	vals, err := s.client.HGetAll(ctx, s.key(sid)).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("session get: %w", err)
	}
	sess := domain.Session{
		Token:        vals[fieldToken],
		RefreshToken: vals[fieldRefresh],
		Role:         domain.ParseRole(vals[fieldRole]),
	}
	return sess.Normalize(), nil
}

func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(sid string) string {
	return "session:" + sid
}
