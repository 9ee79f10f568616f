package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/service-portal/internal/core/access"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/pkg/metrics"
)

// Redirect targets of the access gate.
const (
	LoginPath    = "/login"
	NotFoundPath = "/not-found"
)

// Gate guards a role-scoped view. The session is re-read from the store and
// the policy re-evaluated on every request.
func Gate(store ports.SessionStore, policy access.Policy, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := store.Get(c.Request().Context(), SessionID(c))
			if err != nil {
				log.Error().Err(err).Str("path", c.Path()).Msg("session store unavailable")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
			}

			decision := access.Decide(sess, policy)
			metrics.GateDecisionsTotal.WithLabelValues(c.Path(), decision.String()).Inc()

			switch decision {
			case access.RedirectLogin:
				return c.Redirect(http.StatusSeeOther, LoginPath)
			case access.RedirectForbidden:
				log.Debug().
					Str("path", c.Path()).
					Str("role", sess.Role.String()).
					Interface("allowed", policy.Roles()).
					Msg("role not allowed")
				return c.Redirect(http.StatusSeeOther, NotFoundPath)
			}

			c.Set(ctxSession, sess)
			return next(c)
		}
	}
}
