package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/service-portal/internal/api/middleware"
	"github.com/99minutos/service-portal/internal/core/domain"
)

// ctxSession returns the session admitted by the Gate middleware. A guarded
// handler reached without one means the route was registered outside a gated
// group, so it fails closed with 401.
func ctxSession(c echo.Context) (domain.Session, error) {
	sess, ok := middleware.CurrentSession(c)
	if !ok || !sess.Authenticated() {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

// orderID parses the :id path parameter.
func orderID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
