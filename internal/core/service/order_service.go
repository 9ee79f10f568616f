package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/core/token"
	"github.com/99minutos/service-portal/internal/pkg/metrics"
)

// OrderService implements the dashboards, the new-order flow and the order
// actions on top of the backend API.
type OrderService struct {
	backend ports.Backend
	guard   ports.SubmitGuard
	log     zerolog.Logger
}

// NewOrderService returns an OrderService. guard may be nil, in which case
// Idempotency-Key headers are ignored.
func NewOrderService(backend ports.Backend, guard ports.SubmitGuard, log zerolog.Logger) *OrderService {
	return &OrderService{backend: backend, guard: guard, log: log}
}

func requireRole(s domain.Session, roles ...domain.Role) error {
	if !s.Authenticated() {
		return domain.ErrMissingCredential
	}
	for _, r := range roles {
		if s.Role == r {
			return nil
		}
	}
	return domain.ErrRoleMismatch
}

// profile resolves the applicant's profile from the user id in the token.
func (o *OrderService) profile(ctx context.Context, s domain.Session) (*domain.UserProfile, error) {
	claims, err := token.DecodeClaims(s.Token)
	if err != nil {
		return nil, err
	}
	return o.backend.GetUser(ctx, s.Token, claims.UserID)
}

// Dashboard fetches the current and past orders concurrently. A failed list
// is reported on that list only.
func (o *OrderService) Dashboard(ctx context.Context, s domain.Session) (*ports.Dashboard, error) {
	if err := requireRole(s, domain.RoleApplicant, domain.RoleSupplier); err != nil {
		return nil, err
	}

	d := &ports.Dashboard{Role: s.Role}
	var profile *domain.UserProfile
	var profileErr error

	var g errgroup.Group
	g.Go(func() error {
		d.Current.Orders, d.Current.Err = o.backend.CurrentOrders(ctx, s.Token)
		return nil
	})
	g.Go(func() error {
		d.Past.Orders, d.Past.Err = o.backend.OrderHistory(ctx, s.Token)
		return nil
	})
	if s.Role == domain.RoleApplicant {
		g.Go(func() error {
			profile, profileErr = o.profile(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	// The request went away while we were fetching; drop the results.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.Current.Err != nil {
		o.log.Warn().Err(d.Current.Err).Msg("current orders unavailable")
	}
	if d.Past.Err != nil {
		o.log.Warn().Err(d.Past.Err).Msg("past orders unavailable")
	}
	if s.Role == domain.RoleApplicant {
		if profileErr != nil {
			d.ProfileMissing = true
			o.log.Warn().Err(profileErr).Msg("profile unavailable")
		} else {
			d.OrderCount = profile.OrderCount
			d.NextOrderFree = domain.IsNextOrderFree(profile.OrderCount)
		}
	}
	return d, nil
}

// Form gathers the catalog, recipients and the applicant's budget.
func (o *OrderService) Form(ctx context.Context, s domain.Session) (*ports.OrderForm, error) {
	if err := requireRole(s, domain.RoleApplicant); err != nil {
		return nil, err
	}

	var (
		services   []domain.Service
		recipients []domain.Recipient
		profile    *domain.UserProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		services, err = o.backend.ListServices(gctx, s.Token)
		return err
	})
	g.Go(func() (err error) {
		recipients, err = o.backend.ListRecipients(gctx, s.Token)
		return err
	})
	g.Go(func() (err error) {
		profile, err = o.profile(gctx, s)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	free := domain.IsNextOrderFree(profile.OrderCount)
	return &ports.OrderForm{
		Services:      services,
		Recipients:    recipients,
		Budget:        profile.Budget,
		OrderCount:    profile.OrderCount,
		NextOrderFree: free,
		Quote:         quoteOf(domain.NewCart(services, profile.Budget, free), services),
	}, nil
}

func quoteOf(c *domain.Cart, catalog []domain.Service) ports.Quote {
	can := make(map[int64]bool, len(catalog))
	for _, svc := range catalog {
		can[svc.ID] = c.CanIncrement(svc.ID)
	}
	return ports.Quote{
		Lines:           c.Lines(),
		Subtotal:        c.Subtotal(),
		Total:           c.Total(),
		RemainingBudget: c.RemainingBudget(),
		Free:            c.Free(),
		CanIncrement:    can,
	}
}

// priced replays items through a fresh cart.
func (o *OrderService) priced(ctx context.Context, s domain.Session, items []domain.LineItem) (*domain.Cart, ports.Quote, error) {
	var (
		services []domain.Service
		profile  *domain.UserProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		services, err = o.backend.ListServices(gctx, s.Token)
		return err
	})
	g.Go(func() (err error) {
		profile, err = o.profile(gctx, s)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, ports.Quote{}, err
	}

	c := domain.NewCart(services, profile.Budget, domain.IsNextOrderFree(profile.OrderCount))
	if err := c.Apply(items); err != nil {
		return nil, ports.Quote{}, err
	}
	return c, quoteOf(c, services), nil
}

// Quote prices a selection without submitting it.
func (o *OrderService) Quote(ctx context.Context, s domain.Session, items []domain.LineItem) (*ports.Quote, error) {
	if err := requireRole(s, domain.RoleApplicant); err != nil {
		return nil, err
	}
	_, q, err := o.priced(ctx, s, items)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Place validates and submits a new order. The submitted items are the
// actual selection; only the price is overridden for a free order.
func (o *OrderService) Place(ctx context.Context, s domain.Session, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	if err := requireRole(s, domain.RoleApplicant); err != nil {
		return nil, err
	}
	if in.RecipientID <= 0 {
		return nil, domain.ErrNoRecipient
	}

	c, q, err := o.priced(ctx, s, in.Items)
	if err != nil {
		return nil, err
	}
	if c.Units() == 0 {
		return nil, domain.ErrNoServiceSelected
	}

	key, err := o.claim(ctx, s, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	order, err := o.backend.CreateOrder(ctx, s.Token, ports.CreateOrderInput{
		Items:       c.Items(),
		RecipientID: in.RecipientID,
	})
	if err != nil {
		o.release(ctx, key)
		return nil, err
	}

	metrics.OrdersPlacedTotal.WithLabelValues(strconv.FormatBool(q.Free)).Inc()
	o.log.Info().
		Int64("order_id", order.ID).
		Int("units", c.Units()).
		Bool("free", q.Free).
		Float64("total", q.Total).
		Msg("order placed")

	return &ports.PlaceOrderResult{Order: order, Quote: q}, nil
}

// claim reserves an idempotency key scoped to the user. Guard failures are
// logged and the submission proceeds.
func (o *OrderService) claim(ctx context.Context, s domain.Session, idempotencyKey string) (string, error) {
	if o.guard == nil || idempotencyKey == "" {
		return "", nil
	}
	claims, err := token.DecodeClaims(s.Token)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%d:%s", claims.UserID, idempotencyKey)

	fresh, err := o.guard.Claim(ctx, key)
	if err != nil {
		o.log.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("submit guard unavailable, submitting anyway")
		return "", nil
	}
	if !fresh {
		o.log.Info().Str("idempotency_key", idempotencyKey).Msg("duplicate order submission")
		return "", domain.ErrDuplicateSubmission
	}
	return key, nil
}

func (o *OrderService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := o.guard.Release(ctx, key); err != nil {
		o.log.Warn().Err(err).Msg("failed to release submit guard key")
	}
}

func (o *OrderService) Get(ctx context.Context, s domain.Session, id int64) (*domain.Order, error) {
	if err := requireRole(s, domain.RoleApplicant, domain.RoleSupplier); err != nil {
		return nil, err
	}
	return o.backend.GetOrder(ctx, s.Token, id)
}

// Cancel cancels an in-progress order.
func (o *OrderService) Cancel(ctx context.Context, s domain.Session, id int64) error {
	order, err := o.Get(ctx, s, id)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.StatusCancelled) {
		return fmt.Errorf("cancel order %d: %w (from %s)", id, domain.ErrInvalidTransition, order.Status)
	}
	if err := o.backend.CancelOrder(ctx, s.Token, id); err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.StatusCancelled), s.Role.String()).Inc()
	o.log.Info().Int64("order_id", id).Str("role", s.Role.String()).Msg("order cancelled")
	return nil
}

// Complete marks an in-progress order completed. Suppliers only.
func (o *OrderService) Complete(ctx context.Context, s domain.Session, id int64) error {
	if err := requireRole(s, domain.RoleSupplier); err != nil {
		return err
	}
	order, err := o.backend.GetOrder(ctx, s.Token, id)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.StatusCompleted) {
		return fmt.Errorf("complete order %d: %w (from %s)", id, domain.ErrInvalidTransition, order.Status)
	}
	if err := o.backend.CompleteOrder(ctx, s.Token, id); err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.StatusCompleted), s.Role.String()).Inc()
	o.log.Info().Int64("order_id", id).Msg("order completed")
	return nil
}

func repeatItems(order *domain.Order) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(order.Items))
	for _, it := range order.Items {
		if it.Quantity > 0 {
			items = append(items, domain.LineItem{ServiceID: it.ServiceID, Quantity: it.Quantity})
		}
	}
	return items
}

// PreviewRepeat re-prices a prior order's contents for confirmation.
func (o *OrderService) PreviewRepeat(ctx context.Context, s domain.Session, id int64) (*ports.RepeatPreview, error) {
	if err := requireRole(s, domain.RoleApplicant); err != nil {
		return nil, err
	}
	order, err := o.backend.GetOrder(ctx, s.Token, id)
	if err != nil {
		return nil, err
	}
	items := repeatItems(order)
	_, q, err := o.priced(ctx, s, items)
	if err != nil {
		return nil, err
	}
	return &ports.RepeatPreview{
		Source:    order,
		Items:     items,
		Recipient: order.RecipientID,
		Quote:     q,
	}, nil
}

// Repeat places a new order with the services, quantities and recipient of
// a prior order, through the same validation as Place.
func (o *OrderService) Repeat(ctx context.Context, s domain.Session, id int64, idempotencyKey string) (*ports.PlaceOrderResult, error) {
	if err := requireRole(s, domain.RoleApplicant); err != nil {
		return nil, err
	}
	order, err := o.backend.GetOrder(ctx, s.Token, id)
	if err != nil {
		return nil, err
	}
	res, err := o.Place(ctx, s, ports.PlaceOrderInput{
		Items:          repeatItems(order),
		RecipientID:    order.RecipientID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	o.log.Info().Int64("source_order_id", id).Int64("order_id", res.Order.ID).Msg("order repeated")
	return res, nil
}

// Rate submits a 1..5 rating for a completed order.
func (o *OrderService) Rate(ctx context.Context, s domain.Session, id int64, rating int) error {
	if err := requireRole(s, domain.RoleApplicant); err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		return domain.ErrInvalidRating
	}
	order, err := o.backend.GetOrder(ctx, s.Token, id)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusCompleted {
		return domain.ErrNotRateable
	}
	if err := o.backend.RateOrder(ctx, s.Token, id, rating); err != nil {
		return err
	}
	o.log.Info().Int64("order_id", id).Int("rating", rating).Msg("order rated")
	return nil
}
