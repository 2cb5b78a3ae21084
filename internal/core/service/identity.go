package service

import (
	"context"

	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
)

// IdentityResolver answers "who is making this request" from the session cookie alone.
// Storage is not consulted, so a role change only reaches the user on their next session.
type IdentityResolver struct {
	sessions ports.SessionCodec
}

func NewIdentityResolver(sessions ports.SessionCodec) *IdentityResolver {
	return &IdentityResolver{sessions: sessions}
}

func (r *IdentityResolver) CurrentUser(ctx context.Context, jar ports.CookieJar) *domain.AuthenticatedUser {
	s := r.sessions.Read(ctx, jar)
	if s == nil {
		return nil
	}
	return s.User()
}

func (r *IdentityResolver) IsAuthenticated(ctx context.Context, jar ports.CookieJar) bool {
	return r.CurrentUser(ctx, jar) != nil
}
