package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/userview"
)

// Export formats
const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	users UserService
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, users UserService, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		users: users,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// exportRow is one exported user with the viewer default applied
type exportRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	InvitedAt time.Time `json:"invitedAt"`
}

func toExportRow(u models.User) exportRow {
	return exportRow{ID: u.ID, Email: u.Email, Status: u.Status, Role: u.EffectiveRole(), InvitedAt: u.InvitedAt}
}

// StreamUsers writes the filtered and sorted users in format. Nothing is
// written when the format is unknown or the collection fails to load.
func (s *exportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format string, q userview.Query) error {
	switch format {
	case FormatCSV, FormatNDJSON, FormatJSON:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	all, err := s.users.Fetch(ctx, false)
	if err != nil {
		return err
	}
	users, err := q.Select(all)
	if err != nil {
		return err
	}

	s.log.Info().Str("format", format).Int("count", len(users)).Msg("Starting users export")

	switch format {
	case FormatNDJSON:
		err = s.streamUsersNDJSON(w, users)
	case FormatJSON:
		err = s.streamUsersJSON(w, users)
	default:
		err = s.streamUsersCSV(w, users)
	}
	if err != nil {
		s.log.Error().Err(err).Str("format", format).Msg("Users export aborted")
		return err
	}

	s.log.Info().Int("count", len(users)).Msg("Users export completed")
	return nil
}

func (s *exportService) streamUsersNDJSON(w http.ResponseWriter, users []models.User) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=users.ndjson")

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for i, u := range users {
		if err := enc.Encode(toExportRow(u)); err != nil {
			return err
		}
		// Flush every 100 records for streaming
		if (i+1)%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}

func (s *exportService) streamUsersJSON(w http.ResponseWriter, users []models.User) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=users.json")

	if _, err := w.Write([]byte("[")); err != nil {
		return err
	}
	for i, u := range users {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		data, err := json.Marshal(toExportRow(u))
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("]"))
	return err
}

func (s *exportService) streamUsersCSV(w http.ResponseWriter, users []models.User) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=users.csv")

	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"id", "email", "status", "role", "invited_at"}); err != nil {
		return err
	}
	for i, u := range users {
		row := toExportRow(u)
		if err := writer.Write([]string{
			row.ID,
			row.Email,
			row.Status,
			row.Role,
			row.InvitedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
		if (i+1)%flushEvery == 0 {
			writer.Flush()
		}
	}
	writer.Flush()
	return writer.Error()
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "posts":
		return s.repos.Post.Count(ctx)
	case "logs":
		return s.repos.Log.Count(ctx)
	case "accounts":
		return s.repos.Account.Count(ctx)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}
