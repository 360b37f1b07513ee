package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/shell"
)

// preferenceService is the concrete implementation of PreferenceService
type preferenceService struct {
	store PreferenceStore
	log   zerolog.Logger
}

func newPreferenceService(store PreferenceStore, log zerolog.Logger) *preferenceService {
	return &preferenceService{
		store: store,
		log:   log.With().Str("service", "preferences").Logger(),
	}
}

// Theme returns the saved theme, light when nothing valid is stored
func (s *preferenceService) Theme(ctx context.Context, email string) (string, error) {
	theme, err := s.store.GetTheme(ctx, email)
	if err != nil {
		return shell.ThemeLight, fmt.Errorf("read theme: %w", err)
	}
	if !shell.ValidThemes[theme] {
		return shell.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme persists theme for email
func (s *preferenceService) SetTheme(ctx context.Context, email, theme string) error {
	if !shell.ValidThemes[theme] {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	if err := s.store.SetTheme(ctx, email, theme); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Transition applies action to state and saves the theme when it changed
func (s *preferenceService) Transition(ctx context.Context, email string, state shell.ViewState, action shell.Action) (shell.ViewState, error) {
	next, err := shell.Apply(state, action)
	if err != nil {
		return state, err
	}
	if shell.ThemeChanged(state, next) {
		if err := s.store.SetTheme(ctx, email, next.Theme); err != nil {
			s.log.Warn().Err(err).Str("email", email).Str("theme", next.Theme).Msg("Failed to persist theme")
		}
	}
	return next, nil
}
