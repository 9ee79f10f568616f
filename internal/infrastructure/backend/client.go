// Package backend is the HTTP client for the remote ordering REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/pkg/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 64 << 10
	maxResponseBody = 4 << 20
)

// Config captures the settings for talking to the ordering API.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Breaker opens after FailureThreshold consecutive failures and stays
	// open for OpenTimeout before letting MaxRequests probes through.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Interval         time.Duration
	MaxRequests      uint32
}

// Client implements ports.Backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
	log     zerolog.Logger
}

type response struct {
	status int
	body   []byte
}

var errServerStatus = errors.New("server error status")

var _ ports.Backend = (*Client)(nil)

// New builds a Client. A zero Timeout falls back to defaultTimeout and a
// zero FailureThreshold to five consecutive failures.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "ordering-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.BackendBreakerState.Set(breakerGauge(to))
		},
		// A caller that gave up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*response](settings),
		log:     log,
	}
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// do performs one request and returns the raw response for any status below 500.
func (c *Client) do(ctx context.Context, op, method, path, bearer string, body any) (*response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
		if err != nil {
			return nil, err
		}
		out := &response{status: res.StatusCode, body: data}
		if res.StatusCode >= http.StatusInternalServerError {
			return out, fmt.Errorf("%w %d", errServerStatus, res.StatusCode)
		}
		return out, nil
	})
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "network"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
		}
		metrics.BackendRequestsTotal.WithLabelValues(op, outcome).Inc()
		c.log.Warn().Err(err).Str("operation", op).Msg("ordering API request failed")
		return nil, fmt.Errorf("%s: %w: %v", op, domain.ErrNetworkFailure, err)
	}
	return resp, nil
}

// call performs a request expected to answer 2xx and decodes into out when non-nil.
// notFound is returned for a 404.
func (c *Client) call(ctx context.Context, op, method, path, bearer string, body, out any, notFound error) error {
	if bearer == "" {
		return domain.ErrMissingCredential
	}

	resp, err := c.do(ctx, op, method, path, bearer, body)
	if err != nil {
		return err
	}

	switch {
	case resp.status >= 200 && resp.status < 300:
		metrics.BackendRequestsTotal.WithLabelValues(op, "ok").Inc()
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		metrics.BackendRequestsTotal.WithLabelValues(op, "unauthorized").Inc()
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	case resp.status == http.StatusNotFound && notFound != nil:
		metrics.BackendRequestsTotal.WithLabelValues(op, "not_found").Inc()
		return fmt.Errorf("%s: %w", op, notFound)
	case resp.status == http.StatusBadRequest || resp.status == http.StatusConflict || resp.status == http.StatusUnprocessableEntity:
		metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return fmt.Errorf("%w: %s", domain.ErrValidation, errorMessage(resp.body, "request rejected"))
	default:
		metrics.BackendRequestsTotal.WithLabelValues(op, "network").Inc()
		return fmt.Errorf("%s: %w: unexpected status %d", op, domain.ErrNetworkFailure, resp.status)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %v", op, domain.ErrNetworkFailure, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte, fallback string) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var e struct {
		Detail         string   `json:"detail"`
		Message        string   `json:"message"`
		Error          string   `json:"error"`
		NonFieldErrors []string `json:"non_field_errors"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return fallback
	}
	switch {
	case len(e.NonFieldErrors) > 0 && e.NonFieldErrors[0] != "":
		return e.NonFieldErrors[0]
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return fallback
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`

	// Older deployments answer with these names.
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	UserType string `json:"user_type"`
}

// Login exchanges credentials for tokens. Role is not checked here.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	const op = "login"
	resp, err := c.do(ctx, op, http.MethodPost, "/login", "", loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	if resp.status < 200 || resp.status >= 300 {
		if resp.status >= 400 && resp.status < 500 {
			metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
			return nil, &domain.LoginRejectedError{Message: errorMessage(resp.body, "")}
		}
		metrics.BackendRequestsTotal.WithLabelValues(op, "network").Inc()
		return nil, fmt.Errorf("%s: %w: unexpected status %d", op, domain.ErrNetworkFailure, resp.status)
	}
	metrics.BackendRequestsTotal.WithLabelValues(op, "ok").Inc()

	var lr loginResponse
	if err := json.Unmarshal(resp.body, &lr); err != nil {
		return nil, fmt.Errorf("%s: %w: decode response: %v", op, domain.ErrNetworkFailure, err)
	}
	res := &ports.LoginResult{
		AccessToken:  firstNonEmpty(lr.AccessToken, lr.Access),
		RefreshToken: firstNonEmpty(lr.RefreshToken, lr.Refresh),
		Role:         domain.ParseRole(firstNonEmpty(lr.Role, lr.UserType)),
	}
	return res, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) CurrentOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.call(ctx, "current_orders", http.MethodGet, "/orders/current", token, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OrderHistory(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.call(ctx, "order_history", http.MethodGet, "/orders/history", token, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, id int64) (*domain.Order, error) {
	var out domain.Order
	if err := c.call(ctx, "get_order", http.MethodGet, fmt.Sprintf("/orders/%d", id), token, nil, &out, domain.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

type createOrderRequest struct {
	Items       []domain.LineItem `json:"items"`
	RecipientID int64             `json:"recipient_id"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, in ports.CreateOrderInput) (*domain.Order, error) {
	var out domain.Order
	body := createOrderRequest{Items: in.Items, RecipientID: in.RecipientID}
	if err := c.call(ctx, "create_order", http.MethodPost, "/orders", token, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, token string, id int64) error {
	return c.call(ctx, "cancel_order", http.MethodPut, fmt.Sprintf("/orders/%d/cancel", id), token, nil, nil, domain.ErrOrderNotFound)
}

func (c *Client) CompleteOrder(ctx context.Context, token string, id int64) error {
	return c.call(ctx, "complete_order", http.MethodPut, fmt.Sprintf("/orders/%d/complete", id), token, nil, nil, domain.ErrOrderNotFound)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

func (c *Client) RateOrder(ctx context.Context, token string, id int64, rating int) error {
	return c.call(ctx, "rate_order", http.MethodPost, fmt.Sprintf("/orders/%d/rate", id), token, rateRequest{Rating: rating}, nil, domain.ErrOrderNotFound)
}

func (c *Client) GetUser(ctx context.Context, token string, id int64) (*domain.UserProfile, error) {
	var out domain.UserProfile
	if err := c.call(ctx, "get_user", http.MethodGet, fmt.Sprintf("/users/%d", id), token, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListServices(ctx context.Context, token string) ([]domain.Service, error) {
	var out []domain.Service
	if err := c.call(ctx, "list_services", http.MethodGet, "/services", token, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRecipients(ctx context.Context, token string) ([]domain.Recipient, error) {
	var out []domain.Recipient
	if err := c.call(ctx, "list_recipients", http.MethodGet, "/recipients", token, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping reports the ordering API as unavailable while the breaker is open.
// It never calls the API itself.
func (c *Client) Ping(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit open", domain.ErrNetworkFailure)
	}
	return nil
}
