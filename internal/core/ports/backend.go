package ports

import (
	"context"

	"github.com/99minutos/service-portal/internal/core/domain"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Role         domain.Role
}

// CreateOrderInput is the body of a new order submission.
type CreateOrderInput struct {
	Items       []domain.LineItem
	RecipientID int64
}

// Backend is the remote ordering REST API. Every call except Login carries
// token as a bearer credential.
type Backend interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	CurrentOrders(ctx context.Context, token string) ([]domain.Order, error)
	OrderHistory(ctx context.Context, token string) ([]domain.Order, error)
	GetOrder(ctx context.Context, token string, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, token string, in CreateOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, token string, id int64) error
	CompleteOrder(ctx context.Context, token string, id int64) error
	RateOrder(ctx context.Context, token string, id int64, rating int) error

	GetUser(ctx context.Context, token string, id int64) (*domain.UserProfile, error)
	ListServices(ctx context.Context, token string) ([]domain.Service, error)
	ListRecipients(ctx context.Context, token string) ([]domain.Recipient, error)
}
