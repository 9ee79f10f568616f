package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/service-portal/internal/core/domain"
)

const (
	ctxSessionID = "session_id"
	ctxSession   = "session"
	ctxCookie    = "session_cookie"
)

// DefaultCookieName is used when no CookieConfig is in scope.
const DefaultCookieName = "portal_session"

// CookieConfig controls the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Session makes sure every request carries a browser session id, issuing a
// new one in an HttpOnly cookie when the request has none. The cookie has no
// Max-Age, so it lives as long as the browsing session.
func Session(cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sid string
			if ck, err := c.Cookie(cfg.Name); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}
			c.Set(ctxCookie, cfg)
			if sid == "" {
				issue(c, cfg, uuid.NewString())
			} else {
				c.Set(ctxSessionID, sid)
			}
			return next(c)
		}
	}
}

// RotateSession points the browser at sid, replacing the cookie it came with.
// Login calls it so the pre-login id is dropped.
func RotateSession(c echo.Context, sid string) {
	cfg, ok := c.Get(ctxCookie).(CookieConfig)
	if !ok {
		cfg = CookieConfig{Name: DefaultCookieName}
	}
	issue(c, cfg, sid)
}

func issue(c echo.Context, cfg CookieConfig, sid string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(ctxSessionID, sid)
}

// SessionID returns the browser session id set by Session.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(ctxSessionID).(string)
	return sid
}

// CurrentSession returns the session admitted by Gate.
func CurrentSession(c echo.Context) (domain.Session, bool) {
	s, ok := c.Get(ctxSession).(domain.Session)
	return s, ok
}
