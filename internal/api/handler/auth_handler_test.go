package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/service-portal/internal/core/domain"
)

type stubSessionService struct {
	loginFn   func(ctx context.Context, sid string, surface domain.Role, username, password string) (domain.Session, string, error)
	logoutFn  func(ctx context.Context, sid string) error
	currentFn func(ctx context.Context, sid string) (domain.Session, error)
}

func (s *stubSessionService) Login(ctx context.Context, sid string, surface domain.Role, username, password string) (domain.Session, string, error) {
	return s.loginFn(ctx, sid, surface, username, password)
}

func (s *stubSessionService) Logout(ctx context.Context, sid string) error {
	return s.logoutFn(ctx, sid)
}

func (s *stubSessionService) Current(ctx context.Context, sid string) (domain.Session, error) {
	if s.currentFn == nil {
		return domain.Session{}, nil
	}
	return s.currentFn(ctx, sid)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_ApplicantLogin_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, sid string, surface domain.Role, username, password string) (domain.Session, string, error) {
			if surface != domain.RoleApplicant || username != "ana" || password != "secret" {
				t.Fatalf("unexpected args: %s %s %s", surface, username, password)
			}
			if sid != "anon-1" {
				t.Fatalf("unexpected previous sid %q", sid)
			}
			return domain.Session{Token: "tok", Role: domain.RoleApplicant}, "fresh-1", nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/applicant-login", strings.NewReader(`{"username":"ana","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", "anon-1")

	if err := handler.ApplicantLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != "applicant" || resp.Links.Dashboard != ApplicantDashboardPath {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Fatalf("token must not be exposed: %s", rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "portal_session" || cookies[0].Value != "fresh-1" || !cookies[0].HttpOnly {
		t.Fatalf("expected a rotated session cookie, got %+v", cookies)
	}
}

func TestAuthHandler_SupplierLogin_RoleMismatchLooksLikeBadPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, sid string, surface domain.Role, username, password string) (domain.Session, string, error) {
			return domain.Session{}, "", domain.ErrRoleMismatch
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/supplier-login", strings.NewReader(`{"username":"ana","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.SupplierLogin(c)
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubSessionService{
		loginFn: func(ctx context.Context, sid string, surface domain.Role, username, password string) (domain.Session, string, error) {
			t.Fatalf("service must not be called")
			return domain.Session{}, "", nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/applicant-login", strings.NewReader(`{"username":"ana"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.ApplicantLogin(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if msg, _ := he.Message.(string); msg != "password is required" {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var cleared string
	handler := NewAuthHandler(&stubSessionService{
		logoutFn: func(ctx context.Context, sid string) error {
			cleared = sid
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", "sid-1")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if cleared != "sid-1" {
		t.Fatalf("expected session sid-1 cleared, got %q", cleared)
	}
}

func TestAuthHandler_Home_ShowsCurrentRole(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubSessionService{
		currentFn: func(ctx context.Context, sid string) (domain.Session, error) {
			return domain.Session{Token: "tok", Role: domain.RoleSupplier}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := handler.Home(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp homeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Surfaces) != 2 || resp.Role != "supplier" || resp.Dashboard != SupplierDashboardPath {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/not-found", nil), rec)

	if err := NewAuthHandler(&stubSessionService{}).NotFound(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
