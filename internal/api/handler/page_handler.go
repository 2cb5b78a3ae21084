package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/instroom/instroom-web/internal/core/service"
)

const appName = "Instroom"

// PageHandler serves the JSON page shells the frontend renders from.
type PageHandler struct {
	guard *service.AuthGuard
}

func NewPageHandler(guard *service.AuthGuard) *PageHandler {
	return &PageHandler{guard: guard}
}

type landingResponse struct {
	Name          string `json:"name"`
	Authenticated bool   `json:"authenticated"`
}

type pageResponse struct {
	Page string `json:"page"`
	viewer
}

// Landing is the public marketing page. It never redirects.
//
// @Summary      Landing page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  landingResponse
// @Router       / [get]
func (h *PageHandler) Landing(c echo.Context) error {
	return c.JSON(http.StatusOK, landingResponse{
		Name:          appName,
		Authenticated: h.guard.CheckAuthentication(c.Request().Context(), c),
	})
}

// Shell returns a handler for a guarded page. The route's guard middleware has
// already stored the caller.
//
// @Summary      Guarded page shell
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageResponse
// @Failure      302  "redirect to /login when signed out"
// @Failure      403  {object}  ErrorResponse
// @Router       /dashboard [get]
// @Router       /analytics [get]
// @Router       /team [get]
// @Router       /admin/users [get]
// @Router       /settings [get]
// @Router       /billing [get]
// @Router       /contact-support [get]
func (h *PageHandler) Shell(page string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, pageResponse{Page: page, viewer: ctxViewer(c)})
	}
}

// Public returns a handler for an unguarded page such as login or signup.
// A signed-in caller is reported so the frontend can skip the form.
//
// @Summary      Public page shell
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageResponse
// @Router       /login [get]
// @Router       /signup [get]
func (h *PageHandler) Public(page string) echo.HandlerFunc {
	return func(c echo.Context) error {
		d := h.guard.Evaluate(c.Request().Context(), c, service.Requirement{})
		return c.JSON(http.StatusOK, pageResponse{Page: page, viewer: newViewer(d.User)})
	}
}
