package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/service-portal/internal/core/ports"
)

// DashboardHandler serves both role dashboards. Which role may reach which
// path is decided by the gate the route is registered behind.
type DashboardHandler struct {
	orders ports.OrderService
}

func NewDashboardHandler(orders ports.OrderService) *DashboardHandler {
	return &DashboardHandler{orders: orders}
}

// Applicant handles GET /applicant-dashboard.
//
// @Summary      Applicant dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Success      303
// @Router       /applicant-dashboard [get]
func (h *DashboardHandler) Applicant(c echo.Context) error {
	return h.show(c)
}

// Supplier handles GET /supplier-dashboard.
//
// @Summary      Supplier dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Success      303
// @Router       /supplier-dashboard [get]
func (h *DashboardHandler) Supplier(c echo.Context) error {
	return h.show(c)
}

func (h *DashboardHandler) show(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	d, err := h.orders.Dashboard(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardResponse(d))
}
