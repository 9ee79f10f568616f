package ports

import (
	"context"

	"github.com/99minutos/service-portal/internal/core/domain"
)

// OrderList is one list of a dashboard. Err is set when that list could
// not be fetched; the other list is still shown.
type OrderList struct {
	Orders []domain.Order
	Err    error
}

// Dashboard is the role's view of its current and past orders.
type Dashboard struct {
	Role           domain.Role
	Current        OrderList
	Past           OrderList
	NextOrderFree  bool
	OrderCount     int
	ProfileMissing bool
}

// OrderForm carries everything needed to compose a new order.
type OrderForm struct {
	Services      []domain.Service
	Recipients    []domain.Recipient
	Budget        float64
	OrderCount    int
	NextOrderFree bool
	// Quote is the empty cart, giving the initial per-service increment flags.
	Quote Quote
}

// Quote is the priced result of replaying a selection through the cart.
type Quote struct {
	Lines           []domain.CartLine
	Subtotal        float64
	Total           float64
	RemainingBudget float64
	Free            bool
	CanIncrement    map[int64]bool
}

// PlaceOrderInput is an applicant's order submission.
type PlaceOrderInput struct {
	Items          []domain.LineItem
	RecipientID    int64
	IdempotencyKey string
}

// PlaceOrderResult is the created order and the price that was applied.
type PlaceOrderResult struct {
	Order *domain.Order
	Quote Quote
}

// RepeatPreview shows a prior order's contents re-priced for today.
type RepeatPreview struct {
	Source    *domain.Order
	Items     []domain.LineItem
	Recipient int64
	Quote     Quote
}

// OrderService implements the order views and actions.
type OrderService interface {
	Dashboard(ctx context.Context, s domain.Session) (*Dashboard, error)
	Form(ctx context.Context, s domain.Session) (*OrderForm, error)
	Quote(ctx context.Context, s domain.Session, items []domain.LineItem) (*Quote, error)
	Place(ctx context.Context, s domain.Session, in PlaceOrderInput) (*PlaceOrderResult, error)
	Get(ctx context.Context, s domain.Session, id int64) (*domain.Order, error)
	Cancel(ctx context.Context, s domain.Session, id int64) error
	Complete(ctx context.Context, s domain.Session, id int64) error
	PreviewRepeat(ctx context.Context, s domain.Session, id int64) (*RepeatPreview, error)
	Repeat(ctx context.Context, s domain.Session, id int64, idempotencyKey string) (*PlaceOrderResult, error)
	Rate(ctx context.Context, s domain.Session, id int64, rating int) error
}
