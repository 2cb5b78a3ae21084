package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/instroom/instroom-web/internal/api/metrics"
	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
	"github.com/instroom/instroom-web/internal/core/rbac"
	"github.com/instroom/instroom-web/internal/core/service"
)

type AuthHandler struct {
	accounts ports.AccountService
	sessions ports.SessionCodec
	guard    *service.AuthGuard
	log      zerolog.Logger
}

func NewAuthHandler(accounts ports.AccountService, sessions ports.SessionCodec, guard *service.AuthGuard, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, guard: guard, log: log}
}

// signupRequest accepts both the JSON API names and the legacy HTML form
// names (confirm-password, name).
type signupRequest struct {
	Email              string `json:"email" form:"email" validate:"max=254"`
	Password           string `json:"password" form:"password" validate:"max=72"`
	ConfirmPassword    string `json:"confirmPassword" form:"confirmPassword"`
	ConfirmPasswordAlt string `json:"-" form:"confirm-password"`
	FullName           string `json:"fullName" form:"fullName" validate:"max=200"`
	Name               string `json:"name" form:"name" validate:"max=200"`
	Company            string `json:"company" form:"company" validate:"max=200"`
}

func (r signupRequest) input() ports.RegisterInput {
	in := ports.RegisterInput{
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		FullName:        r.FullName,
		Company:         r.Company,
	}
	if in.ConfirmPassword == "" {
		in.ConfirmPassword = r.ConfirmPasswordAlt
	}
	if in.FullName == "" {
		in.FullName = r.Name
	}
	return in
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

type userResponse struct {
	User *domain.AuthenticatedUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type accessResponse struct {
	Authenticated bool                `json:"authenticated"`
	Role          domain.Role         `json:"role,omitempty"`
	Permissions   []domain.Permission `json:"permissions"`
}

type extendResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signup registers an account and signs the new user in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup form"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return err
	}

	ctx := c.Request().Context()
	user, err := h.accounts.Register(ctx, req.input())
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
		return err
	}

	identity := user.Identity()
	if _, err := h.sessions.Create(ctx, c, identity); err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.SignupsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusCreated, userResponse{User: &identity})
}

// Login checks credentials and issues a session cookie.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		return domain.ErrInvalidCredentials
	}

	ctx := c.Request().Context()
	user, err := h.accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return err
	}

	identity := user.Identity()
	if _, err := h.sessions.Create(ctx, c, identity); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusOK, userResponse{User: &identity})
}

// Logout clears the session. It always succeeds for the client.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c.Request().Context(), c); err != nil {
		metrics.LogoutsTotal.WithLabelValues(metrics.ResultError).Inc()
		h.log.Warn().Err(err).Msg("logout: session revocation failed")
	} else {
		metrics.LogoutsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}

// Me returns the signed-in user, or null.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	d := h.guard.Evaluate(c.Request().Context(), c, service.Requirement{})
	return c.JSON(http.StatusOK, userResponse{User: d.User})
}

// Access reports what the caller may see, for conditional rendering.
//
// @Summary      Caller access summary
// @Tags         auth
// @Produce      json
// @Success      200  {object}  accessResponse
// @Router       /auth/access [get]
func (h *AuthHandler) Access(c echo.Context) error {
	role, ok := h.guard.UserRole(c.Request().Context(), c)
	if !ok {
		return c.JSON(http.StatusOK, accessResponse{Permissions: []domain.Permission{}})
	}
	return c.JSON(http.StatusOK, accessResponse{
		Authenticated: true,
		Role:          role,
		Permissions:   rbac.RolePermissions(role),
	})
}

// Extend renews the current session for another full period.
//
// @Summary      Extend session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  extendResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/session/extend [post]
func (h *AuthHandler) Extend(c echo.Context) error {
	s, err := h.sessions.Extend(c.Request().Context(), c)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			metrics.SessionExtensionsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		} else {
			metrics.SessionExtensionsTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return err
	}

	metrics.SessionExtensionsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusOK, extendResponse{ExpiresAt: s.ExpiresAt})
}

func signupResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return metrics.ResultConflict
	case domain.IsRegistrationError(err):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
