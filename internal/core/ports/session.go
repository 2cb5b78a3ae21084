package ports

import (
	"context"
	"net/http"

	"github.com/instroom/instroom-web/internal/core/domain"
)

// CookieJar is the slice of a request/response pair the session layer needs.
// echo.Context satisfies it.
type CookieJar interface {
	Cookie(name string) (*http.Cookie, error)
	SetCookie(cookie *http.Cookie)
}

// SessionCodec creates, validates and destroys the cookie-held session.
type SessionCodec interface {
	Create(ctx context.Context, jar CookieJar, user domain.AuthenticatedUser) (*domain.Session, error)
	// Read returns nil when the cookie is absent, malformed, expired or revoked.
	Read(ctx context.Context, jar CookieJar) *domain.Session
	Extend(ctx context.Context, jar CookieJar) (*domain.Session, error)
	// Destroy always clears the cookie. A non-nil error means only that the
	// server-side revocation could not be recorded.
	Destroy(ctx context.Context, jar CookieJar) error
}
