// Package auth is the console's authentication gate: credential and Google
// sign-in, session tokens, sign-out and a stream of session changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/events"
	"github.com/admin-console-api/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("no admin account for this email")
	ErrUnknownProvider    = errors.New("unknown sign-in provider")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrRateLimited        = errors.New("too many sign-in attempts, try again later")
)

// Session is what a successful sign-in returns
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity is the signed-in admin behind a token
type Identity struct {
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthEvent is emitted on every sign-in and sign-out
type AuthEvent struct {
	Email    string    `json:"email"`
	SignedIn bool      `json:"signedIn"`
	At       time.Time `json:"at"`
}

// AccountStore looks up admin accounts. A missing account is (nil, nil).
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Revoker remembers signed-out token ids
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service implements the authentication gate
type Service struct {
	accounts  AccountStore
	tokens    *TokenService
	revoked   Revoker
	providers map[string]Provider
	limiter   *Limiter
	hub       *events.Hub[AuthEvent]
	log       zerolog.Logger
	now       func() time.Time
}

// Options wires a Service
type Options struct {
	Accounts  AccountStore
	Tokens    *TokenService
	Revoked   Revoker
	Providers []Provider
	Limiter   *Limiter
}

// NewService creates the auth service
func NewService(opts Options, log zerolog.Logger) *Service {
	providers := make(map[string]Provider, len(opts.Providers))
	for _, p := range opts.Providers {
		providers[p.Name()] = p
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	return &Service{
		accounts:  opts.Accounts,
		tokens:    opts.Tokens,
		revoked:   opts.Revoked,
		providers: providers,
		limiter:   limiter,
		hub:       events.NewHub[AuthEvent](events.DefaultBuffer),
		log:       log.With().Str("service", "auth").Logger(),
		now:       time.Now,
	}
}

// Allow applies the per-client sign-in throttle
func (s *Service) Allow(clientKey string) error {
	if !s.limiter.Allow(clientKey) {
		return ErrRateLimited
	}
	return nil
}

// SignInWithPassword checks email and password against the account store
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || !CheckPassword(account.PasswordHash, password) {
		s.log.Warn().Str("email", email).Msg("Rejected password sign-in")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(account.Email, models.ProviderPassword)
}

// SignInWithProvider completes a federated sign-in. The provider email must
// already belong to an admin account.
func (s *Service) SignInWithProvider(ctx context.Context, provider, code, redirectURI string) (*Session, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	email, err := p.Exchange(ctx, code, redirectURI)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", provider).Msg("Provider exchange failed")
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		s.log.Warn().Str("email", email).Str("provider", provider).Msg("Provider sign-in without admin account")
		return nil, ErrAccountNotFound
	}

	return s.startSession(account.Email, provider)
}

func (s *Service) startSession(email, method string) (*Session, error) {
	session, err := s.tokens.Issue(email)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("email", email).Str("method", method).Msg("Admin signed in")
	s.hub.Publish(AuthEvent{Email: email, SignedIn: true, At: s.now()})
	return session, nil
}

// Identify resolves a bearer token to the signed-in admin
func (s *Service) Identify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: signed out", ErrUnauthenticated)
	}

	return &Identity{
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session behind token
func (s *Service) SignOut(ctx context.Context, token string) error {
	identity, err := s.Identify(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	s.log.Info().Str("email", identity.Email).Msg("Admin signed out")
	s.hub.Publish(AuthEvent{Email: identity.Email, SignedIn: false, At: s.now()})
	return nil
}

// Subscribe streams auth state changes until cancel is called
func (s *Service) Subscribe() (<-chan AuthEvent, func()) {
	return s.hub.Subscribe()
}

// Close ends every subscription
func (s *Service) Close() {
	s.hub.Close()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
