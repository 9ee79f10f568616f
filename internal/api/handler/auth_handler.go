package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/service-portal/internal/api/middleware"
	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
)

// Dashboard paths per role.
const (
	ApplicantDashboardPath = "/applicant-dashboard"
	SupplierDashboardPath  = "/supplier-dashboard"
)

// DashboardPath returns the landing view for role, or "" when it has none.
func DashboardPath(role domain.Role) string {
	switch role {
	case domain.RoleApplicant:
		return ApplicantDashboardPath
	case domain.RoleSupplier:
		return SupplierDashboardPath
	}
	return ""
}

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Home lists the two login surfaces and, when logged in, the current role.
//
// @Summary      Login chooser
// @Tags         auth
// @Produce      json
// @Success      200  {object}  homeResponse
// @Router       / [get]
// @Router       /login [get]
func (h *AuthHandler) Home(c echo.Context) error {
	resp := homeResponse{Surfaces: []surfaceLink{
		{Role: domain.RoleApplicant.String(), Login: "/applicant-login"},
		{Role: domain.RoleSupplier.String(), Login: "/supplier-login"},
	}}

	sess, err := h.sessions.Current(c.Request().Context(), middleware.SessionID(c))
	if err == nil && sess.Authenticated() {
		resp.Role = sess.Role.String()
		resp.Dashboard = DashboardPath(sess.Role)
	}
	return c.JSON(http.StatusOK, resp)
}

// ApplicantLogin authenticates on the applicant surface.
//
// @Summary      Applicant login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /applicant-login [post]
func (h *AuthHandler) ApplicantLogin(c echo.Context) error {
	return h.login(c, domain.RoleApplicant)
}

// SupplierLogin authenticates on the supplier surface.
//
// @Summary      Supplier login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /supplier-login [post]
func (h *AuthHandler) SupplierLogin(c echo.Context) error {
	return h.login(c, domain.RoleSupplier)
}

func (h *AuthHandler) login(c echo.Context, surface domain.Role) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, sid, err := h.sessions.Login(c.Request().Context(), middleware.SessionID(c), surface, req.Username, req.Password)
	if err != nil {
		// A valid account on the wrong surface reads like a bad password.
		if errors.Is(err, domain.ErrRoleMismatch) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	middleware.RotateSession(c, sid)

	return c.JSON(http.StatusOK, loginResponse{
		Role:  sess.Role.String(),
		Links: loginLinks{Dashboard: DashboardPath(sess.Role)},
	})
}

// Logout clears the browser session and returns to the home view.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// NotFound is where the access gate sends a role that may not see a view.
//
// @Summary      Not found
// @Tags         auth
// @Produce      json
// @Failure      404  {object}  errorResponse
// @Router       /not-found [get]
func (h *AuthHandler) NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "page not found"})
}
