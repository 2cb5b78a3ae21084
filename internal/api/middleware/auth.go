package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/instroom/instroom-web/internal/api/metrics"
	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/service"
)

// DefaultLoginPath is where anonymous callers of guarded routes are sent.
const DefaultLoginPath = "/login"

const userContextKey = "user"

// RequireAuth admits any signed-in caller and stores them in the context.
// Anonymous callers are redirected to loginPath with a next parameter.
func RequireAuth(guard *service.AuthGuard, loginPath string) echo.MiddlewareFunc {
	return require(guard, loginPath, service.Requirement{})
}

func require(guard *service.AuthGuard, loginPath string, req service.Requirement) echo.MiddlewareFunc {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Evaluate(c.Request().Context(), c, req)
			metrics.GuardDecisionsTotal.WithLabelValues(d.State.String()).Inc()

			switch d.State {
			case service.AccessAnonymous:
				return c.Redirect(http.StatusFound, loginRedirect(loginPath, c.Request()))
			case service.AccessDenied:
				return d.Err()
			}

			c.Set(userContextKey, d.User)
			return next(c)
		}
	}
}

// UserFrom returns the caller stored by a guard, or nil on unguarded routes.
func UserFrom(c echo.Context) *domain.AuthenticatedUser {
	u, _ := c.Get(userContextKey).(*domain.AuthenticatedUser)
	return u
}

func loginRedirect(loginPath string, r *http.Request) string {
	q := url.Values{}
	q.Set("next", r.URL.RequestURI())
	return loginPath + "?" + q.Encode()
}
