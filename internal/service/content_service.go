package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/stats"
)

// Collection names used in load errors
const (
	collectionPosts = "posts"
	collectionLogs  = "logs"
)

// postService is the concrete implementation of PostService
type postService struct {
	repo repository.PostRepository
	log  zerolog.Logger
}

func newPostService(repo repository.PostRepository, log zerolog.Logger) *postService {
	return &postService{
		repo: repo,
		log:  log.With().Str("service", "posts").Logger(),
	}
}

// List returns the content library, newest first, narrowed by filter
func (s *postService) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	posts, err := s.repo.ListByCreatedDesc(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch posts")
		return nil, &LoadError{Collection: collectionPosts, Err: err}
	}

	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// logService is the concrete implementation of LogService
type logService struct {
	repo repository.LogRepository
	log  zerolog.Logger
}

func newLogService(repo repository.LogRepository, log zerolog.Logger) *logService {
	return &logService{
		repo: repo,
		log:  log.With().Str("service", "logs").Logger(),
	}
}

// Latest returns the newest entries. The limit is capped at MaxLogEntries.
func (s *logService) Latest(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	if limit <= 0 || limit > models.MaxLogEntries {
		limit = models.MaxLogEntries
	}
	entries, err := s.repo.Latest(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch logs")
		return nil, &LoadError{Collection: collectionLogs, Err: err}
	}
	return entries, nil
}

// dashboardService is the concrete implementation of DashboardService
type dashboardService struct {
	users UserService
	loc   *time.Location
	log   zerolog.Logger
}

func newDashboardService(users UserService, loc *time.Location, log zerolog.Logger) *dashboardService {
	return &dashboardService{
		users: users,
		loc:   loc,
		log:   log.With().Str("service", "dashboard").Logger(),
	}
}

// Summary aggregates the current user collection
func (s *dashboardService) Summary(ctx context.Context, refresh bool) (*stats.Summary, error) {
	users, err := s.users.Fetch(ctx, refresh)
	if err != nil {
		return nil, err
	}
	summary := stats.Summarize(users, s.loc)
	return &summary, nil
}
