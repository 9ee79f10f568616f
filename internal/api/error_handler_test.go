package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/service-portal/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"validation", fmt.Errorf("place: %w", domain.ErrBudgetExceeded), http.StatusUnprocessableEntity, "place: budget exceeded"},
		{"backend validation", fmt.Errorf("%w: Insufficient budget", domain.ErrValidation), http.StatusUnprocessableEntity, "validation failed: Insufficient budget"},
		{"duplicate", domain.ErrDuplicateSubmission, http.StatusConflict, "order already submitted"},
		{"not found", fmt.Errorf("get_order: %w", domain.ErrOrderNotFound), http.StatusNotFound, "order not found"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"login rejected", &domain.LoginRejectedError{Message: "No active account"}, http.StatusUnauthorized, "No active account"},
		{"backend 401", fmt.Errorf("list_services: %w", domain.ErrUnauthorized), http.StatusUnauthorized, "your session is no longer valid, please log in again"},
		{"undecodable token", domain.ErrDecode, http.StatusUnauthorized, "your session is no longer valid, please log in again"},
		{"role mismatch", domain.ErrRoleMismatch, http.StatusForbidden, "access forbidden"},
		{"network", fmt.Errorf("get_order: %w: dial tcp", domain.ErrNetworkFailure), http.StatusBadGateway, "the ordering service is unavailable, please try again later"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, msg := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Fatalf("got %d %q, want %d %q", code, msg, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)
	if rec.Code != http.StatusAccepted || rec.Body.Len() != 0 {
		t.Fatalf("committed response was rewritten: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHTTPErrorHandler_LogsRequestScope(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/orders/1", nil), rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "rid-42")
	c.Set("session", domain.Session{Token: "t", Role: domain.RoleApplicant})

	NewHTTPErrorHandler(zerolog.New(&buf))(errors.New("boom"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	line := buf.String()
	if !strings.Contains(line, `"request_id":"rid-42"`) || !strings.Contains(line, `"role":"applicant"`) {
		t.Fatalf("log line missing request scope: %s", line)
	}
}
