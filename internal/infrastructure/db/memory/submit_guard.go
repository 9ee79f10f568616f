package memory

import (
	"context"
	"sync"
	"time"
)

// SubmitGuard is a process-local duplicate submission guard.
type SubmitGuard struct {
	mu   sync.Mutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewSubmitGuard(ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SubmitGuard{keys: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (g *SubmitGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.keys[key] = now.Add(g.ttl)
	return true, nil
}

func (g *SubmitGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
	return nil
}
