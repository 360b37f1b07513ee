package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin-console-api/internal/models"
)

type memAccounts struct {
	accounts map[string]*models.Account
	err      error
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.accounts[email], nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memRevoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = expiresAt
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type stubProvider struct {
	email string
	err   error
}

func (p stubProvider) Name() string { return models.ProviderGoogle }

func (p stubProvider) Exchange(context.Context, string, string) (string, error) {
	return p.email, p.err
}

func newTestService(t *testing.T, providers ...Provider) (*Service, *memRevoker) {
	t.Helper()
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	accounts := &memAccounts{accounts: map[string]*models.Account{
		"admin@example.com":  {ID: "a1", Email: "admin@example.com", PasswordHash: hash, Provider: models.ProviderPassword},
		"google@example.com": {ID: "a2", Email: "google@example.com", Provider: models.ProviderGoogle},
	}}
	revoker := &memRevoker{revoked: map[string]time.Time{}}

	svc := NewService(Options{
		Accounts:  accounts,
		Tokens:    NewTokenService("test-secret", time.Hour),
		Revoked:   revoker,
		Providers: providers,
	}, zerolog.Nop())
	return svc, revoker
}

func TestTokenService_IssueAndParse(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	session, err := tokens.Issue("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", session.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 2*time.Second)

	claims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_RejectsBadTokens(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	_, err := tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other, err := NewTokenService("other-secret", time.Hour).Issue("admin@example.com")
	require.NoError(t, err)
	_, err = tokens.Parse(other.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	stale := NewTokenService("secret", time.Hour)
	stale.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := stale.Issue("admin@example.com")
	require.NoError(t, err)
	_, err = tokens.Parse(old.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Contains(t, err.Error(), "expired")

	// Tokens signed with another algorithm are refused
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Email: "x@example.com"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(unsigned)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPasswords(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	hash, err := HashPassword("long-enough")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "long-enough"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("", "long-enough"))
}

func TestSignInWithPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignInWithPassword(ctx, "  Admin@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", session.Email)

	_, err = svc.SignInWithPassword(ctx, "admin@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignInWithPassword(ctx, "ghost@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Provider-only accounts cannot use a password
	_, err = svc.SignInWithPassword(ctx, "google@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInWithPassword_StoreError(t *testing.T) {
	svc := NewService(Options{
		Accounts: &memAccounts{err: errors.New("connection refused")},
		Tokens:   NewTokenService("s", time.Hour),
		Revoked:  &memRevoker{revoked: map[string]time.Time{}},
	}, zerolog.Nop())

	_, err := svc.SignInWithPassword(context.Background(), "admin@example.com", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSignInWithProvider(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t, stubProvider{email: "google@example.com"})
	session, err := svc.SignInWithProvider(ctx, "google", "code", "http://localhost/cb")
	require.NoError(t, err)
	assert.Equal(t, "google@example.com", session.Email)

	_, err = svc.SignInWithProvider(ctx, "github", "code", "")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	svc, _ = newTestService(t, stubProvider{email: "stranger@example.com"})
	_, err = svc.SignInWithProvider(ctx, "google", "code", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	svc, _ = newTestService(t, stubProvider{err: errors.New("Google token exchange failed: invalid_grant")})
	_, err = svc.SignInWithProvider(ctx, "google", "code", "")
	assert.EqualError(t, err, "Google token exchange failed: invalid_grant")
}

func TestIdentifyAndSignOut(t *testing.T) {
	svc, revoker := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignInWithPassword(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)

	identity, err := svc.Identify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", identity.Email)

	require.NoError(t, svc.SignOut(ctx, session.Token))
	assert.Len(t, revoker.revoked, 1)

	_, err = svc.Identify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, svc.SignOut(ctx, session.Token), ErrUnauthenticated)

	_, err = svc.Identify(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubscribe_ReceivesSignInAndSignOut(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	events, cancel := svc.Subscribe()
	defer cancel()

	session, err := svc.SignInWithPassword(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, session.Token))

	in := <-events
	assert.True(t, in.SignedIn)
	assert.Equal(t, "admin@example.com", in.Email)

	out := <-events
	assert.False(t, out.SignedIn)

	svc.Close()
	_, ok := <-events
	assert.False(t, ok)
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(2)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))

	base = base.Add(31 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"))

	// Idle visitors are pruned when new keys arrive
	base = base.Add(time.Hour)
	l.Allow("9.9.9.9")
	assert.Len(t, l.visitors, 1)

	unlimited := NewLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow("x"))
	}
}

func TestService_Allow(t *testing.T) {
	svc := NewService(Options{Limiter: NewLimiter(1)}, zerolog.Nop())
	assert.NoError(t, svc.Allow("ip"))
	assert.ErrorIs(t, svc.Allow("ip"), ErrRateLimited)
}

func TestGoogleProvider_Exchange(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{
				"code":         r.PostForm.Get("code"),
				"grant_type":   r.PostForm.Get("grant_type"),
				"redirect_uri": r.PostForm.Get("redirect_uri"),
				"client_id":    r.PostForm.Get("client_id"),
			}
			if r.PostForm.Get("code") == "bad" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-123", "token_type": "Bearer"})
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"email": "Google@Example.com", "verified_email": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewGoogleProvider(GoogleConfig{
		ClientID:    "client",
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
	}, srv.Client())

	email, err := p.Exchange(context.Background(), "good", "http://localhost/cb")
	require.NoError(t, err)
	assert.Equal(t, "google@example.com", email)
	assert.Equal(t, "authorization_code", gotForm["grant_type"])
	assert.Equal(t, "http://localhost/cb", gotForm["redirect_uri"])
	assert.Equal(t, "client", gotForm["client_id"])

	_, err = p.Exchange(context.Background(), "bad", "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid_grant"))

	_, err = p.Exchange(context.Background(), "", "")
	assert.Error(t, err)
}
