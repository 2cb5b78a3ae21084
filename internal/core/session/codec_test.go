package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/instroom/instroom-web/internal/core/domain"
)

const testSecret = "test-secret-with-enough-entropy"

// browserJar keeps cookies the way a browser would: a Set-Cookie with a
// negative MaxAge deletes the entry.
type browserJar struct {
	cookies map[string]*http.Cookie
	writes  []*http.Cookie
}

func newBrowserJar() *browserJar {
	return &browserJar{cookies: make(map[string]*http.Cookie)}
}

func (j *browserJar) Cookie(name string) (*http.Cookie, error) {
	c, ok := j.cookies[name]
	if !ok {
		return nil, http.ErrNoCookie
	}
	return c, nil
}

func (j *browserJar) SetCookie(c *http.Cookie) {
	j.writes = append(j.writes, c)
	if c.MaxAge < 0 {
		delete(j.cookies, c.Name)
		return
	}
	j.cookies[c.Name] = c
}

func (j *browserJar) last() *http.Cookie {
	if len(j.writes) == 0 {
		return nil
	}
	return j.writes[len(j.writes)-1]
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time           { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *memoryRevocations) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[id] = until
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[id]
	return ok, nil
}

func newTestCodec(clk *clock, rev Revocations) *Codec {
	return NewCodec(Options{
		Secret:      testSecret,
		Issuer:      "instroom-test",
		Revocations: rev,
		Now:         clk.Now,
	}, zerolog.Nop())
}

func alice() domain.AuthenticatedUser {
	return domain.AuthenticatedUser{
		ID:       "u-1",
		Email:    "alice@example.com",
		FullName: "Alice Example",
		Role:     domain.RoleAgencyOwner,
	}
}

func TestCodec_CreateThenRead(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()

	created, err := codec.Create(context.Background(), jar, alice())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created.ExpiresAt.Equal(clk.now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", created.ExpiresAt)
	}

	got := codec.Read(context.Background(), jar)
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.UserID != "u-1" || got.Email != "alice@example.com" || got.FullName != "Alice Example" {
		t.Fatalf("unexpected session payload: %+v", got)
	}
	if got.Role != domain.RoleAgencyOwner {
		t.Fatalf("unexpected role: %s", got.Role)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) || !got.ExpiresAt.Equal(created.ExpiresAt) {
		t.Fatalf("timestamps did not round-trip: %+v vs %+v", got, created)
	}
	if got.ID == "" || got.ID != created.ID {
		t.Fatalf("session id did not round-trip: %q vs %q", got.ID, created.ID)
	}
}

func TestCodec_CookieAttributes(t *testing.T) {
	clk := &clock{now: time.Now()}
	jar := newBrowserJar()
	if _, err := newTestCodec(clk, nil).Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	c := jar.last()
	if c.Name != CookieName {
		t.Fatalf("unexpected cookie name %q", c.Name)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("unexpected cookie flags: %+v", c)
	}
	if c.MaxAge != 86400 {
		t.Fatalf("expected MaxAge 86400, got %d", c.MaxAge)
	}
	if c.Secure {
		t.Fatal("cookie must not be Secure outside production")
	}

	secure := NewCodec(Options{Secret: testSecret, Secure: true}, zerolog.Nop())
	jar = newBrowserJar()
	if _, err := secure.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !jar.last().Secure {
		t.Fatal("cookie must be Secure when configured")
	}
}

func TestCodec_CreateDefaultsRole(t *testing.T) {
	clk := &clock{now: time.Now()}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()

	user := alice()
	user.Role = ""
	if _, err := codec.Create(context.Background(), jar, user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := codec.Read(context.Background(), jar); got == nil || got.Role != domain.RoleSoloUser {
		t.Fatalf("expected SOLO_USER default, got %+v", got)
	}
}

func TestCodec_CreateRequiresUserID(t *testing.T) {
	codec := newTestCodec(&clock{now: time.Now()}, nil)
	jar := newBrowserJar()

	user := alice()
	user.ID = ""
	if _, err := codec.Create(context.Background(), jar, user); !errors.Is(err, domain.ErrInvalidUserData) {
		t.Fatalf("expected ErrInvalidUserData, got %v", err)
	}
	if len(jar.writes) != 0 {
		t.Fatal("no cookie should be written on failure")
	}
}

func TestCodec_CreateReplacesExistingSession(t *testing.T) {
	clk := &clock{now: time.Now()}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()

	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	bob := domain.AuthenticatedUser{ID: "u-2", Email: "bob@example.com", FullName: "Bob", Role: domain.RoleAdmin}
	if _, err := codec.Create(context.Background(), jar, bob); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got := codec.Read(context.Background(), jar)
	if got == nil || got.UserID != "u-2" {
		t.Fatalf("expected second session to win, got %+v", got)
	}
}

func TestCodec_ReadAbsentOrMalformed(t *testing.T) {
	codec := newTestCodec(&clock{now: time.Now()}, nil)

	if got := codec.Read(context.Background(), newBrowserJar()); got != nil {
		t.Fatalf("expected nil for absent cookie, got %+v", got)
	}

	cases := map[string]string{
		"garbage":   "not-a-token",
		"truncated": "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VySWQiOiJ1LTEifQ",
		"empty":     "",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			jar := newBrowserJar()
			jar.cookies[CookieName] = &http.Cookie{Name: CookieName, Value: value}
			if got := codec.Read(context.Background(), jar); got != nil {
				t.Fatalf("expected nil, got %+v", got)
			}
			if value == "" {
				return
			}
			assertCleared(t, jar)
			if got := codec.Read(context.Background(), jar); got != nil {
				t.Fatalf("second read should see no session, got %+v", got)
			}
		})
	}
}

func assertCleared(t *testing.T, jar *browserJar) {
	t.Helper()
	if c := jar.last(); c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("bad session cookie must be cleared, last write %+v", c)
	}
	if _, ok := jar.cookies[CookieName]; ok {
		t.Fatal("bad session cookie still present")
	}
}

func TestCodec_ReadRejectsForeignSignature(t *testing.T) {
	clk := &clock{now: time.Now()}
	other := NewCodec(Options{Secret: "another-secret", Issuer: "instroom-test", Now: clk.Now}, zerolog.Nop())
	jar := newBrowserJar()
	if _, err := other.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if got := newTestCodec(clk, nil).Read(context.Background(), jar); got != nil {
		t.Fatalf("token signed with another secret must be rejected, got %+v", got)
	}
	assertCleared(t, jar)
}

func TestCodec_ReadRejectsTamperedPayload(t *testing.T) {
	clk := &clock{now: time.Now()}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()
	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Re-sign the claims with the alg switched to none.
	claims := jwt.MapClaims{"userId": "u-1", "role": "ADMIN", "iss": "instroom-test", "expiresAt": clk.now.Add(time.Hour)}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	jar.cookies[CookieName] = &http.Cookie{Name: CookieName, Value: unsigned}

	if got := codec.Read(context.Background(), jar); got != nil {
		t.Fatalf("unsigned token must be rejected, got %+v", got)
	}
	assertCleared(t, jar)
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()
	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	clk.Advance(24 * time.Hour)
	if got := codec.Read(context.Background(), jar); got == nil {
		t.Fatal("session must still be valid exactly at expiry")
	}

	clk.Advance(time.Millisecond)
	if got := codec.Read(context.Background(), jar); got != nil {
		t.Fatalf("session must be invalid past expiry, got %+v", got)
	}
	if c := jar.last(); c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("expired session cookie must be cleared, last write %+v", c)
	}
	if _, ok := jar.cookies[CookieName]; ok {
		t.Fatal("expired cookie still present")
	}
}

func TestCodec_Extend(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()
	created, err := codec.Create(context.Background(), jar, alice())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	clk.Advance(20 * time.Hour)
	extended, err := codec.Extend(context.Background(), jar)
	if err != nil {
		t.Fatalf("Extend returned error: %v", err)
	}
	if !extended.ExpiresAt.Equal(clk.now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected extended expiry: %v", extended.ExpiresAt)
	}
	if !extended.CreatedAt.Equal(created.CreatedAt) || extended.ID != created.ID {
		t.Fatal("Extend must keep the session identity and creation time")
	}

	clk.Advance(10 * time.Hour)
	if got := codec.Read(context.Background(), jar); got == nil {
		t.Fatal("extended session should outlive the original expiry")
	}
}

func TestCodec_ExtendWithoutSession(t *testing.T) {
	clk := &clock{now: time.Now()}
	codec := newTestCodec(clk, nil)

	if _, err := codec.Extend(context.Background(), newBrowserJar()); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	jar := newBrowserJar()
	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	clk.Advance(25 * time.Hour)
	if _, err := codec.Extend(context.Background(), jar); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession for expired session, got %v", err)
	}
}

func TestCodec_DestroyIsIdempotent(t *testing.T) {
	clk := &clock{now: time.Now()}
	codec := newTestCodec(clk, nil)
	jar := newBrowserJar()

	if err := codec.Destroy(context.Background(), jar); err != nil {
		t.Fatalf("Destroy without session returned error: %v", err)
	}

	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := codec.Destroy(context.Background(), jar); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if got := codec.Read(context.Background(), jar); got != nil {
		t.Fatalf("expected nil after destroy, got %+v", got)
	}
	if err := codec.Destroy(context.Background(), jar); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}

	c := jar.last()
	if c.Name != CookieName || c.MaxAge >= 0 || !c.Expires.Equal(time.Unix(0, 0)) {
		t.Fatalf("unexpected clearing cookie: %+v", c)
	}
}

func TestCodec_DestroyRevokesReplayedCookie(t *testing.T) {
	clk := &clock{now: time.Now()}
	rev := newMemoryRevocations()
	codec := newTestCodec(clk, rev)
	jar := newBrowserJar()

	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	stolen := *jar.cookies[CookieName]

	if err := codec.Destroy(context.Background(), jar); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}

	replay := newBrowserJar()
	replay.cookies[CookieName] = &stolen
	if got := codec.Read(context.Background(), replay); got != nil {
		t.Fatalf("replayed cookie must be rejected after logout, got %+v", got)
	}
	if _, ok := replay.cookies[CookieName]; ok {
		t.Fatal("revoked cookie should be cleared on read")
	}
}

func TestCodec_RevocationFailures(t *testing.T) {
	clk := &clock{now: time.Now()}
	rev := newMemoryRevocations()
	codec := newTestCodec(clk, rev)
	jar := newBrowserJar()

	if _, err := codec.Create(context.Background(), jar, alice()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	rev.err = errors.New("redis down")
	if got := codec.Read(context.Background(), jar); got != nil {
		t.Fatalf("lookup failure must fail closed, got %+v", got)
	}
	if _, ok := jar.cookies[CookieName]; !ok {
		t.Fatal("lookup failure must not clear the cookie")
	}

	err := codec.Destroy(context.Background(), jar)
	if err == nil || !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("expected revocation error, got %v", err)
	}
	if _, ok := jar.cookies[CookieName]; ok {
		t.Fatal("cookie must be cleared even when revocation fails")
	}
}
