package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/userview"
	"github.com/admin-console-api/internal/validation"
)

// MutationResult is returned by every successful user write, along with the
// reloaded collection
type MutationResult struct {
	Message string        `json:"message"`
	User    models.User   `json:"user"`
	Users   []models.User `json:"-"`
}

// userService is the concrete implementation of UserService
type userService struct {
	users       repository.UserRepository
	logs        repository.LogRepository
	snapshots   SnapshotCache
	invalidator *Invalidator
	validator   *validation.Validator
	log         zerolog.Logger
	now         func() time.Time
}

// newUserService creates a new UserService
func newUserService(
	repos *repository.Repositories,
	snapshots SnapshotCache,
	invalidator *Invalidator,
	validator *validation.Validator,
	log zerolog.Logger,
) *userService {
	return &userService{
		users:       repos.User,
		logs:        repos.Log,
		snapshots:   snapshots,
		invalidator: invalidator,
		validator:   validator,
		log:         log.With().Str("service", "users").Logger(),
		now:         time.Now,
	}
}

// Fetch returns the normalised collection. The cached snapshot is used unless
// refresh is set or it has been invalidated.
func (s *userService) Fetch(ctx context.Context, refresh bool) ([]models.User, error) {
	if !refresh {
		var cached []models.User
		hit, err := s.snapshots.Get(ctx, CollectionUsers, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("Snapshot read failed, loading from store")
		}
		if hit {
			return cached, nil
		}
	}
	return s.reload(ctx)
}

// reload reads the store and caches the result. The snapshot is skipped when
// an invalidation lands between reading the generation and writing it back.
func (s *userService) reload(ctx context.Context) ([]models.User, error) {
	gen, genErr := s.snapshots.Generation(ctx, CollectionUsers)
	if genErr != nil {
		s.log.Warn().Err(genErr).Msg("Snapshot generation unavailable, not caching")
	}

	docs, err := s.users.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch users")
		return nil, &LoadError{Collection: CollectionUsers, Err: err}
	}

	users := userview.Normalize(docs, s.now())
	if genErr == nil {
		stored, err := s.snapshots.Set(ctx, CollectionUsers, gen, users)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("Failed to store users snapshot")
		case !stored:
			s.log.Debug().Int64("generation", gen).Msg("Users changed during reload, snapshot skipped")
		}
	}

	s.log.Debug().Int("count", len(users)).Msg("Users loaded")
	return users, nil
}

// Query runs filter, sort and pagination over the fetched collection
func (s *userService) Query(ctx context.Context, q userview.Query, refresh bool) (userview.Result, error) {
	users, err := s.Fetch(ctx, refresh)
	if err != nil {
		return userview.Result{}, err
	}
	return q.Run(users)
}

// SetStatus changes one user's status
func (s *userService) SetStatus(ctx context.Context, actor, id, status string) (*MutationResult, error) {
	if verr := s.validator.ValidateStatus(status); verr != nil {
		return nil, inputError(ErrInvalidStatus, verr)
	}
	return s.updateField(ctx, actor, id, "status", status, s.users.UpdateStatus)
}

// SetRole changes one user's role
func (s *userService) SetRole(ctx context.Context, actor, id, role string) (*MutationResult, error) {
	if verr := s.validator.ValidateRole(role); verr != nil {
		return nil, inputError(ErrInvalidRole, verr)
	}
	return s.updateField(ctx, actor, id, "role", role, s.users.UpdateRole)
}

func (s *userService) updateField(
	ctx context.Context,
	actor, id, field, value string,
	update func(ctx context.Context, id, value string) error,
) (*MutationResult, error) {
	log := s.log.With().Str("actor", actor).Str("user_id", id).Str(field, value).Logger()

	doc, err := s.users.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to update user %s", field)
		return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}

	if err := update(ctx, id, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		log.Error().Err(err).Msgf("Failed to update user %s", field)
		return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	log.Info().Msgf("User %s updated", field)

	s.appendLog(ctx, doc.Email, field+":"+value)

	users, err := s.invalidateAndReload(ctx, field)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{
		Message: fmt.Sprintf("Updated %s of %s to %s.", field, doc.Email, value),
		Users:   users,
	}
	result.User = findUser(users, id, func() models.User {
		u := userview.Normalize([]models.UserDocument{*doc}, s.now())[0]
		if field == "status" {
			u.Status = value
		} else {
			u.Role = value
		}
		return u
	})
	return result, nil
}

// Invite creates a pending viewer for email
func (s *userService) Invite(ctx context.Context, actor, email string) (*MutationResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, inputError(ErrEmptyEmail, &validation.ValidationError{Field: "email", Message: "email is required"})
	}
	if verr := s.validator.ValidateInvite(email); verr != nil {
		return nil, inputError(ErrInvalidEmail, verr)
	}

	invitedAt := s.now()
	doc := &models.UserDocument{
		ID:        uuid.NewString(),
		Email:     email,
		Status:    models.StatusPending,
		Role:      models.RoleViewer,
		InvitedAt: &invitedAt,
	}

	if err := s.users.Create(ctx, doc); err != nil {
		s.log.Error().Err(err).Str("actor", actor).Str("email", email).Msg("Failed to invite user")
		return nil, &InviteError{Err: err}
	}
	s.log.Info().Str("actor", actor).Str("email", email).Str("user_id", doc.ID).Msg("User invited")

	s.appendLog(ctx, email, models.ActionInvite)

	users, err := s.invalidateAndReload(ctx, models.ActionInvite)
	if err != nil {
		return nil, err
	}

	invited := models.User{ID: doc.ID, Email: email, Status: doc.Status, Role: doc.Role, InvitedAt: invitedAt}
	return &MutationResult{
		Message: fmt.Sprintf("Invited %s successfully.", email),
		User:    findUser(users, doc.ID, func() models.User { return invited }),
		Users:   users,
	}, nil
}

func (s *userService) invalidateAndReload(ctx context.Context, reason string) ([]models.User, error) {
	s.invalidator.Invalidate(ctx, CollectionUsers, reason)
	return s.reload(ctx)
}

// appendLog records the action; failures never fail the mutation
func (s *userService) appendLog(ctx context.Context, email, action string) {
	entry := &models.LogEntry{
		ID:        uuid.NewString(),
		Email:     email,
		Action:    action,
		Timestamp: s.now(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("Failed to append activity log")
	}
}

func findUser(users []models.User, id string, fallback func() models.User) models.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return fallback()
}
