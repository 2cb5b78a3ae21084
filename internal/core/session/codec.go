// Package session owns the cookie-held session: a signed token carrying the
// user projection and its validity window. The server keeps no copy; expiry is
// enforced lazily when the cookie is read.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
)

const (
	CookieName = "instroom_session"
	Duration   = 24 * time.Hour

	defaultIssuer = "instroom"
)

// Revocations is an optional server-side denylist of destroyed session ids.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Options configures a Codec. Secret is required.
type Options struct {
	Secret string
	Issuer string
	// Secure marks the cookie Secure; enable in production.
	Secure bool
	// Revocations may be nil, in which case sessions are purely client-held.
	Revocations Revocations
	Now         func() time.Time
	NewID       func() string
}

// Codec implements ports.SessionCodec.
type Codec struct {
	secret      []byte
	issuer      string
	secure      bool
	revocations Revocations
	now         func() time.Time
	newID       func() string
	log         zerolog.Logger
}

var _ ports.SessionCodec = (*Codec)(nil)

func NewCodec(opts Options, log zerolog.Logger) *Codec {
	c := &Codec{
		secret:      []byte(opts.Secret),
		issuer:      opts.Issuer,
		secure:      opts.Secure,
		revocations: opts.Revocations,
		now:         opts.Now,
		newID:       opts.NewID,
		log:         log,
	}
	if c.issuer == "" {
		c.issuer = defaultIssuer
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

// sessionClaims is the signed cookie body.
type sessionClaims struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	Expiry    time.Time   `json:"expiresAt"`
	jwt.RegisteredClaims
}

// Create issues a new session for user and writes it to the jar, replacing
// any session cookie already present.
func (c *Codec) Create(ctx context.Context, jar ports.CookieJar, user domain.AuthenticatedUser) (*domain.Session, error) {
	if user.ID == "" {
		return nil, domain.ErrInvalidUserData
	}

	role := user.Role
	if role == "" {
		role = domain.DefaultRole
	}

	now := c.now().UTC()
	s := &domain.Session{
		ID:        c.newID(),
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(Duration),
	}

	if err := c.write(jar, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// Read returns the current session, or nil when there is none usable.
// A malformed, expired or revoked session has its cookie cleared as a side
// effect.
func (c *Codec) Read(ctx context.Context, jar ports.CookieJar) *domain.Session {
	s, err := c.decode(jar)
	if err != nil {
		c.log.Debug().Err(err).Msg("discarding malformed session cookie")
		c.clear(jar)
		return nil
	}
	if s == nil {
		return nil
	}

	if s.Expired(c.now()) {
		c.clear(jar)
		return nil
	}

	if c.revocations != nil && s.ID != "" {
		revoked, err := c.revocations.IsRevoked(ctx, s.ID)
		if err != nil {
			// Fail closed but keep the cookie; the denylist may recover.
			c.log.Warn().Err(err).Str("user_id", s.UserID).Msg("session revocation lookup failed")
			return nil
		}
		if revoked {
			c.clear(jar)
			return nil
		}
	}

	return s
}

// Extend pushes the expiry of the current session to now + Duration.
func (c *Codec) Extend(ctx context.Context, jar ports.CookieJar) (*domain.Session, error) {
	s := c.Read(ctx, jar)
	if s == nil {
		return nil, domain.ErrNoActiveSession
	}

	s.ExpiresAt = c.now().UTC().Add(Duration)
	if err := c.write(jar, s); err != nil {
		return nil, fmt.Errorf("extend session: %w", err)
	}
	return s, nil
}

// Destroy clears the session cookie. It is a no-op when no cookie is present.
func (c *Codec) Destroy(ctx context.Context, jar ports.CookieJar) error {
	s, _ := c.decode(jar)
	c.clear(jar)

	if s == nil || c.revocations == nil || s.ID == "" || s.Expired(c.now()) {
		return nil
	}
	if err := c.revocations.Revoke(ctx, s.ID, s.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// decode returns (nil, nil) when the cookie is absent.
func (c *Codec) decode(jar ports.CookieJar) (*domain.Session, error) {
	cookie, err := jar.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if claims.UserID == "" || claims.Expiry.IsZero() {
		return nil, errors.New("decode session: missing required fields")
	}

	return &domain.Session{
		ID:        claims.ID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		FullName:  claims.FullName,
		Role:      claims.Role,
		CreatedAt: claims.CreatedAt,
		ExpiresAt: claims.Expiry,
	}, nil
}

func (c *Codec) write(jar ports.CookieJar, s *domain.Session) error {
	claims := sessionClaims{
		UserID:    s.UserID,
		Email:     s.Email,
		FullName:  s.FullName,
		Role:      s.Role,
		CreatedAt: s.CreatedAt,
		Expiry:    s.ExpiresAt,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      s.ID,
			Subject: s.UserID,
			Issuer:  c.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return err
	}

	jar.SetCookie(c.cookie(signed, int(Duration/time.Second)))
	return nil
}

func (c *Codec) clear(jar ports.CookieJar) {
	cookie := c.cookie("", -1)
	cookie.Expires = time.Unix(0, 0)
	jar.SetCookie(cookie)
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
