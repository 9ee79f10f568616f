package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/service-portal/internal/api/handler"
	"github.com/99minutos/service-portal/internal/api/middleware"
	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/core/service"
	"github.com/99minutos/service-portal/internal/infrastructure/db/memory"
)

// stubBackend answers login and the dashboard lists; any other call panics
// through the nil embedded interface.
type stubBackend struct {
	ports.Backend
	role domain.Role
}

func (b *stubBackend) Login(_ context.Context, username, password string) (*ports.LoginResult, error) {
	if password != "pw" {
		return nil, &domain.LoginRejectedError{Message: "No active account found"}
	}
	return &ports.LoginResult{AccessToken: "acc-" + username, Role: b.role}, nil
}

func (b *stubBackend) CurrentOrders(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{{ID: 1, Status: domain.StatusInProgress}}, nil
}

func (b *stubBackend) OrderHistory(context.Context, string) ([]domain.Order, error) {
	return nil, domain.ErrNetworkFailure
}

type portal struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func newPortal(t *testing.T, role domain.Role) *portal {
	t.Helper()
	store := memory.NewSessionStore(0)
	backend := &stubBackend{role: role}
	e := NewRouter(Deps{
		Sessions: service.NewSessionService(backend, store, zerolog.Nop()),
		Orders:   service.NewOrderService(backend, memory.NewSubmitGuard(0), zerolog.Nop()),
		Store:    store,
		Cookie:   middleware.CookieConfig{Name: "portal_session"},
		Ready:    map[string]handler.Pinger{"session_store": store},
		Logger:   zerolog.Nop(),
	})
	return &portal{t: t, e: e}
}

// do sends a request carrying the browser cookie, keeping any cookie issued.
func (p *portal) do(method, target, body string) *httptest.ResponseRecorder {
	p.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if p.cookie != nil {
		req.AddCookie(p.cookie)
	}
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "portal_session" {
			p.cookie = ck
		}
	}
	return rec
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != to {
		t.Fatalf("expected 303 to %s, got %d %q", to, rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRouter_SupplierJourney(t *testing.T) {
	p := newPortal(t, domain.RoleSupplier)

	expectRedirect(t, p.do(http.MethodGet, "/supplier-dashboard", ""), "/login")
	if p.cookie == nil {
		t.Fatalf("expected a session cookie to be issued")
	}

	rec := p.do(http.MethodPost, "/supplier-login", `{"username":"sam","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = p.do(http.MethodGet, "/supplier-dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"complete"`) || !strings.Contains(rec.Body.String(), `"error":"orders could not be loaded"`) {
		t.Fatalf("unexpected dashboard: %s", rec.Body.String())
	}

	expectRedirect(t, p.do(http.MethodGet, "/applicant-dashboard", ""), "/not-found")
	expectRedirect(t, p.do(http.MethodGet, "/new-service", ""), "/not-found")

	expectRedirect(t, p.do(http.MethodPost, "/logout", ""), "/")
	expectRedirect(t, p.do(http.MethodGet, "/supplier-dashboard", ""), "/login")
}

func TestRouter_LoginRotatesSessionCookie(t *testing.T) {
	p := newPortal(t, domain.RoleSupplier)

	expectRedirect(t, p.do(http.MethodGet, "/supplier-dashboard", ""), "/login")
	before := *p.cookie

	if rec := p.do(http.MethodPost, "/supplier-login", `{"username":"sam","password":"pw"}`); rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	if p.cookie.Value == before.Value {
		t.Fatalf("expected a new session id after login")
	}
	if rec := p.do(http.MethodGet, "/supplier-dashboard", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the new cookie, got %d", rec.Code)
	}

	p.cookie = &before
	expectRedirect(t, p.do(http.MethodGet, "/supplier-dashboard", ""), "/login")
}

func TestRouter_LoginOnWrongSurface(t *testing.T) {
	p := newPortal(t, domain.RoleSupplier)

	rec := p.do(http.MethodPost, "/applicant-login", `{"username":"sam","password":"pw"}`)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("expected 401 invalid credentials, got %d %s", rec.Code, rec.Body.String())
	}
	expectRedirect(t, p.do(http.MethodGet, "/supplier-dashboard", ""), "/login")
}

func TestRouter_LoginRejectedShowsBackendMessage(t *testing.T) {
	p := newPortal(t, domain.RoleApplicant)

	rec := p.do(http.MethodPost, "/applicant-login", `{"username":"ana","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "No active account found") {
		t.Fatalf("expected backend message, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UnknownPathIs404(t *testing.T) {
	p := newPortal(t, domain.RoleApplicant)

	rec := p.do(http.MethodGet, "/does-not-exist", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_HealthIsPublic(t *testing.T) {
	p := newPortal(t, domain.RoleApplicant)

	if rec := p.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := p.do(http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
}
