package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/shell"
	"github.com/admin-console-api/internal/stats"
	"github.com/admin-console-api/internal/userview"
	"github.com/admin-console-api/internal/validation"
)

// AuthService defines the authentication gate used by the handlers
type AuthService interface {
	Allow(clientKey string) error
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignInWithProvider(ctx context.Context, provider, code, redirectURI string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
	Identify(ctx context.Context, token string) (*auth.Identity, error)
	Subscribe() (<-chan auth.AuthEvent, func())
}

// UserService defines the users page: the fetcher and the mutation dispatcher
type UserService interface {
	Fetch(ctx context.Context, refresh bool) ([]models.User, error)
	Query(ctx context.Context, q userview.Query, refresh bool) (userview.Result, error)
	SetStatus(ctx context.Context, actor, id, status string) (*MutationResult, error)
	SetRole(ctx context.Context, actor, id, role string) (*MutationResult, error)
	Invite(ctx context.Context, actor, email string) (*MutationResult, error)
}

// PostService defines the content library
type PostService interface {
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
}

// LogService defines the activity log
type LogService interface {
	Latest(ctx context.Context, limit int) ([]*models.LogEntry, error)
}

// DashboardService defines the statistics page
type DashboardService interface {
	Summary(ctx context.Context, refresh bool) (*stats.Summary, error)
}

// PreferenceService defines the persisted view settings
type PreferenceService interface {
	Theme(ctx context.Context, email string) (string, error)
	SetTheme(ctx context.Context, email, theme string) error
	Transition(ctx context.Context, email string, state shell.ViewState, action shell.Action) (shell.ViewState, error)
}

// ExportService defines the export operations
type ExportService interface {
	StreamUsers(ctx context.Context, w http.ResponseWriter, format string, q userview.Query) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// SnapshotCache keeps the last fetched collection between reloads. Delete
// advances the generation; Set only writes while the generation it was given
// is current.
type SnapshotCache interface {
	Get(ctx context.Context, collection string, dst any) (bool, error)
	Generation(ctx context.Context, collection string) (int64, error)
	Set(ctx context.Context, collection string, gen int64, v any) (bool, error)
	Delete(ctx context.Context, collection string) error
}

// PreferenceStore persists per-admin preferences
type PreferenceStore interface {
	GetTheme(ctx context.Context, email string) (string, error)
	SetTheme(ctx context.Context, email, theme string) error
}

// Deps are the collaborators the services are built on
type Deps struct {
	Repos       *repository.Repositories
	Snapshots   SnapshotCache
	Preferences PreferenceStore
	Auth        AuthService
}

// Services holds all service interfaces
type Services struct {
	Auth        AuthService
	Users       UserService
	Posts       PostService
	Logs        LogService
	Dashboard   DashboardService
	Preferences PreferenceService
	Export      ExportService
	Invalidator *Invalidator

	// Health probes the document store; nil reports healthy
	Health func(ctx context.Context) error
}

// NewServices creates all services
func NewServices(deps Deps, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	loc, err := cfg.Stats.Location()
	if err != nil {
		return nil, fmt.Errorf("stats timezone: %w", err)
	}

	invalidator := NewInvalidator(deps.Snapshots, log)
	userSvc := newUserService(deps.Repos, deps.Snapshots, invalidator, validation.NewValidator(), log)

	return &Services{
		Auth:        deps.Auth,
		Users:       userSvc,
		Posts:       newPostService(deps.Repos.Post, log),
		Logs:        newLogService(deps.Repos.Log, log),
		Dashboard:   newDashboardService(userSvc, loc, log),
		Preferences: newPreferenceService(deps.Preferences, log),
		Export:      newExportService(deps.Repos, userSvc, log),
		Invalidator: invalidator,
	}, nil
}
