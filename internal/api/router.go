package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/service-portal/docs"
	"github.com/99minutos/service-portal/internal/api/handler"
	"github.com/99minutos/service-portal/internal/api/middleware"
	"github.com/99minutos/service-portal/internal/core/access"
	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/pkg/logger"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions ports.SessionService
	Orders   ports.OrderService
	Store    ports.SessionStore
	Cookie   middleware.CookieConfig
	// Ready is checked by the readiness probe, keyed by dependency name.
	Ready  map[string]handler.Pinger
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))

	// --- Policies, fixed at registration ---
	applicantOnly := access.MustPolicy(domain.RoleApplicant)
	supplierOnly := access.MustPolicy(domain.RoleSupplier)
	anyRole := access.MustPolicy(domain.RoleApplicant, domain.RoleSupplier)
	gate := func(p access.Policy) echo.MiddlewareFunc {
		return middleware.Gate(d.Store, p, d.Logger)
	}

	authHandler := handler.NewAuthHandler(d.Sessions)
	dashboardHandler := handler.NewDashboardHandler(d.Orders)
	orderHandler := handler.NewOrderHandler(d.Orders)

	// --- Views: every one carries a browser session cookie ---
	// Middleware is attached per route so unknown paths still 404.
	sess := middleware.Session(d.Cookie)

	e.GET("/", authHandler.Home, sess)
	e.GET(middleware.LoginPath, authHandler.Home, sess)
	e.POST("/applicant-login", authHandler.ApplicantLogin, sess)
	e.POST("/supplier-login", authHandler.SupplierLogin, sess)
	e.POST("/logout", authHandler.Logout, sess)
	e.GET(middleware.NotFoundPath, authHandler.NotFound, sess)

	e.GET(handler.ApplicantDashboardPath, dashboardHandler.Applicant, sess, gate(applicantOnly))
	e.GET(handler.SupplierDashboardPath, dashboardHandler.Supplier, sess, gate(supplierOnly))

	e.GET("/new-service", orderHandler.Form, sess, gate(applicantOnly))
	e.POST("/new-service/quote", orderHandler.Quote, sess, gate(applicantOnly))
	e.POST("/orders", orderHandler.Create, sess, gate(applicantOnly))
	e.GET("/orders/:id", orderHandler.Get, sess, gate(anyRole))
	e.PUT("/orders/:id/cancel", orderHandler.Cancel, sess, gate(anyRole))
	e.PUT("/orders/:id/complete", orderHandler.Complete, sess, gate(supplierOnly))
	e.GET("/orders/:id/repeat", orderHandler.RepeatPreview, sess, gate(applicantOnly))
	e.POST("/orders/:id/repeat", orderHandler.Repeat, sess, gate(applicantOnly))
	e.POST("/orders/:id/rate", orderHandler.Rate, sess, gate(applicantOnly))

	// --- Health probes (no session required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			l := logger.Request(log, v.RequestID, sessionRole(c))
			ev := l.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = l.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// requestLog scopes log to the request being handled by c.
func requestLog(log zerolog.Logger, c echo.Context) zerolog.Logger {
	return logger.Request(log, c.Response().Header().Get(echo.HeaderXRequestID), sessionRole(c))
}

func sessionRole(c echo.Context) string {
	if s, ok := middleware.CurrentSession(c); ok {
		return s.Role.String()
	}
	return ""
}
