package service

import (
	"context"
	"fmt"

	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
	"github.com/instroom/instroom-web/internal/core/rbac"
)

// AccessState is the terminal state of a guarded operation.
type AccessState int

const (
	AccessAnonymous AccessState = iota
	AccessDenied
	AccessAuthorized
)

func (s AccessState) String() string {
	switch s {
	case AccessAnonymous:
		return "anonymous"
	case AccessDenied:
		return "denied"
	case AccessAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Requirement describes what a caller must satisfy. Every listed permission is
// required; when Roles is non-nil the caller's role must be one of them, so an
// empty non-nil Roles admits nobody. The zero value only requires authentication.
type Requirement struct {
	Permissions []domain.Permission
	Roles       []domain.Role
}

// Decision is the outcome of Evaluate. User is set unless State is AccessAnonymous.
type Decision struct {
	State AccessState
	User  *domain.AuthenticatedUser
	cause error
}

func (d Decision) Allowed() bool {
	return d.State == AccessAuthorized
}

// Err returns nil when authorized, domain.ErrUnauthenticated when anonymous, and
// an error matching both domain.ErrUnauthorized and rbac.ErrAccessDenied when denied.
func (d Decision) Err() error {
	switch d.State {
	case AccessAuthorized:
		return nil
	case AccessAnonymous:
		return domain.ErrUnauthenticated
	default:
		if d.cause == nil {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, d.cause)
	}
}

// AuthGuard composes identity resolution with the RBAC table.
type AuthGuard struct {
	identity *IdentityResolver
}

func NewAuthGuard(identity *IdentityResolver) *AuthGuard {
	return &AuthGuard{identity: identity}
}

// Evaluate resolves the caller and checks req against their role.
func (g *AuthGuard) Evaluate(ctx context.Context, jar ports.CookieJar, req Requirement) Decision {
	user := g.identity.CurrentUser(ctx, jar)
	if user == nil {
		return Decision{State: AccessAnonymous}
	}

	for _, p := range req.Permissions {
		if err := rbac.RequirePermission(user.Role, p); err != nil {
			return Decision{State: AccessDenied, User: user, cause: err}
		}
	}
	if req.Roles != nil {
		if err := rbac.RequireRole(user.Role, req.Roles...); err != nil {
			return Decision{State: AccessDenied, User: user, cause: err}
		}
	}

	return Decision{State: AccessAuthorized, User: user}
}

func (g *AuthGuard) require(ctx context.Context, jar ports.CookieJar, req Requirement) (*domain.AuthenticatedUser, error) {
	d := g.Evaluate(ctx, jar, req)
	if err := d.Err(); err != nil {
		return nil, err
	}
	return d.User, nil
}

// RequireAuthentication returns the caller or domain.ErrUnauthenticated.
func (g *AuthGuard) RequireAuthentication(ctx context.Context, jar ports.CookieJar) (*domain.AuthenticatedUser, error) {
	return g.require(ctx, jar, Requirement{})
}

func (g *AuthGuard) RequireAuthWithPermission(ctx context.Context, jar ports.CookieJar, permission domain.Permission) (*domain.AuthenticatedUser, error) {
	return g.require(ctx, jar, Requirement{Permissions: []domain.Permission{permission}})
}

func (g *AuthGuard) RequireAuthWithRole(ctx context.Context, jar ports.CookieJar, roles ...domain.Role) (*domain.AuthenticatedUser, error) {
	return g.require(ctx, jar, Requirement{Roles: roleSet(roles)})
}

// Lenient variants never fail; they drive conditional rendering.

func (g *AuthGuard) CheckAuthentication(ctx context.Context, jar ports.CookieJar) bool {
	return g.Evaluate(ctx, jar, Requirement{}).Allowed()
}

func (g *AuthGuard) UserRole(ctx context.Context, jar ports.CookieJar) (domain.Role, bool) {
	user := g.identity.CurrentUser(ctx, jar)
	if user == nil {
		return "", false
	}
	return user.Role, true
}

func (g *AuthGuard) CheckPermission(ctx context.Context, jar ports.CookieJar, permission domain.Permission) bool {
	return g.Evaluate(ctx, jar, Requirement{Permissions: []domain.Permission{permission}}).Allowed()
}

func (g *AuthGuard) CheckRole(ctx context.Context, jar ports.CookieJar, roles ...domain.Role) bool {
	return g.Evaluate(ctx, jar, Requirement{Roles: roleSet(roles)}).Allowed()
}

func roleSet(roles []domain.Role) []domain.Role {
	return append([]domain.Role{}, roles...)
}
