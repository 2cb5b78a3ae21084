package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/service"
)

// RequirePermission admits callers whose role grants every listed permission.
// A signed-in caller lacking one gets the denial error, rendered as 403 by the
// central error handler.
func RequirePermission(guard *service.AuthGuard, loginPath string, perms ...domain.Permission) echo.MiddlewareFunc {
	return require(guard, loginPath, service.Requirement{Permissions: perms})
}

// RequireRole admits callers holding one of roles.
func RequireRole(guard *service.AuthGuard, loginPath string, roles ...domain.Role) echo.MiddlewareFunc {
	return require(guard, loginPath, service.Requirement{Roles: append([]domain.Role{}, roles...)})
}
