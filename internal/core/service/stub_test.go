package service

import (
	"context"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub backend
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu sync.Mutex

	loginResult *ports.LoginResult
	loginErr    error

	current    []domain.Order
	currentErr error
	history    []domain.Order
	historyErr error

	orders     map[int64]*domain.Order
	profile    *domain.UserProfile
	profileErr error
	services   []domain.Service
	recipients []domain.Recipient

	createErr error
	created   []ports.CreateOrderInput
	cancelled []int64
	completed []int64
	ratings   map[int64]int
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		orders:  make(map[int64]*domain.Order),
		ratings: make(map[int64]int),
		profile: &domain.UserProfile{ID: 7, Username: "ana", Budget: 100, OrderCount: 0},
		services: []domain.Service{
			{ID: 1, Name: "Cleaning", Price: 40},
			{ID: 2, Name: "Delivery", Price: 25},
		},
		recipients: []domain.Recipient{{ID: 11, Username: "bob"}},
	}
}

func (b *stubBackend) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	return b.loginResult, b.loginErr
}

func (b *stubBackend) CurrentOrders(context.Context, string) ([]domain.Order, error) {
	return b.current, b.currentErr
}

func (b *stubBackend) OrderHistory(context.Context, string) ([]domain.Order, error) {
	return b.history, b.historyErr
}

func (b *stubBackend) GetOrder(_ context.Context, _ string, id int64) (*domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (b *stubBackend) CreateOrder(_ context.Context, _ string, in ports.CreateOrderInput) (*domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.created = append(b.created, in)
	id := int64(100 + len(b.created))
	o := &domain.Order{ID: id, Status: domain.StatusPending, RecipientID: in.RecipientID}
	b.orders[id] = o
	clone := *o
	return &clone, nil
}

func (b *stubBackend) CancelOrder(_ context.Context, _ string, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = append(b.cancelled, id)
	return nil
}

func (b *stubBackend) CompleteOrder(_ context.Context, _ string, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completed = append(b.completed, id)
	return nil
}

func (b *stubBackend) RateOrder(_ context.Context, _ string, id int64, rating int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ratings[id] = rating
	return nil
}

func (b *stubBackend) GetUser(_ context.Context, _ string, id int64) (*domain.UserProfile, error) {
	if b.profileErr != nil {
		return nil, b.profileErr
	}
	p := *b.profile
	p.ID = id
	return &p, nil
}

func (b *stubBackend) ListServices(context.Context, string) ([]domain.Service, error) {
	return b.services, nil
}

func (b *stubBackend) ListRecipients(context.Context, string) ([]domain.Recipient, error) {
	return b.recipients, nil
}

// accessToken returns an unverifiable token carrying user_id, the way the
// ordering API issues them.
func accessToken(t *testing.T, userID int64) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"token_type": "access",
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func applicantSession(t *testing.T) domain.Session {
	return domain.Session{Token: accessToken(t, 7), Role: domain.RoleApplicant}
}

func supplierSession(t *testing.T) domain.Session {
	return domain.Session{Token: accessToken(t, 9), Role: domain.RoleSupplier}
}
