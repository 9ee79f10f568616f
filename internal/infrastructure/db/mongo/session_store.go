package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/service-portal/internal/core/domain"
)

const sessionCollection = "portal_sessions"

// SessionStore keeps one document per browser session. Expiry is handled by
// a TTL index on expires_at.
type SessionStore struct {
	coll *mongo.Collection
	ttl  time.Duration
}

type mongoSession struct {
	ID           string     `bson:"_id"`
	Token        string     `bson:"token"`
	RefreshToken string     `bson:"refresh_token,omitempty"`
	Role         string     `bson:"role"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	ExpiresAt    *time.Time `bson:"expires_at,omitempty"`
}

// NewSessionStore returns a store over db. A ttl of zero keeps sessions until cleared.
func NewSessionStore(db *mongo.Database, ttl time.Duration) *SessionStore {
	return &SessionStore{coll: db.Collection(sessionCollection), ttl: ttl}
}

// EnsureIndexes creates the TTL index used to expire sessions.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

// Set replaces the whole document, so token and role change together.
func (s *SessionStore) Set(ctx context.Context, sid string, sess domain.Session) error {
	now := time.Now().UTC()
	doc := mongoSession{
		ID:           sid,
		Token:        sess.Token,
		RefreshToken: sess.RefreshToken,
		Role:         string(sess.Role),
		UpdatedAt:    now,
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		doc.ExpiresAt = &exp
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sid}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sid string) (domain.Session, error) {
	var doc mongoSession
	if err := s.coll.FindOne(ctx, bson.M{"_id": sid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Session{}, nil
		}
		return domain.Session{}, fmt.Errorf("session get: %w", err)
	}
	// The TTL monitor runs about once a minute; do not serve an expired document.
	if doc.ExpiresAt != nil && time.Now().After(*doc.ExpiresAt) {
		return domain.Session{}, nil
	}
	sess := domain.Session{
		Token:        doc.Token,
		RefreshToken: doc.RefreshToken,
		Role:         domain.ParseRole(doc.Role),
	}
	return sess.Normalize(), nil
}

func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": sid}); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
