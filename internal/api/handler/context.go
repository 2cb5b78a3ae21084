package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/instroom/instroom-web/internal/api/middleware"
	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/rbac"
)

// viewer is the caller as seen by a page: the user stored by the route guard
// and the permissions their role grants.
type viewer struct {
	User        *domain.AuthenticatedUser `json:"user"`
	Permissions []domain.Permission       `json:"permissions"`
}

// ctxViewer reads the guard-stored user. Handlers behind RequireAuth always get
// a user; the permissions slice is never nil so it renders as [].
func ctxViewer(c echo.Context) viewer {
	return newViewer(middleware.UserFrom(c))
}

func newViewer(user *domain.AuthenticatedUser) viewer {
	if user == nil {
		return viewer{Permissions: []domain.Permission{}}
	}
	return viewer{User: user, Permissions: rbac.RolePermissions(user.Role)}
}

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
