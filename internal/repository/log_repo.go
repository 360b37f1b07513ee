package repository

import (
	"context"

	"github.com/admin-console-api/internal/database"
	"github.com/admin-console-api/internal/models"
)

// logRepo is the concrete implementation of LogRepository
type logRepo struct {
	db *database.DB
}

// NewLogRepo creates a new activity log repository
func NewLogRepo(db *database.DB) LogRepository {
	return &logRepo{db: db}
}

// Latest returns up to limit entries, newest first
func (r *logRepo) Latest(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	query := `SELECT id, email, action, timestamp FROM logs ORDER BY timestamp DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.Email, &e.Action, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Append writes one entry
func (r *logRepo) Append(ctx context.Context, e *models.LogEntry) error {
	query := `INSERT INTO logs (id, email, action, timestamp) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Email, e.Action, e.Timestamp)
	return err
}

// Count returns the total number of log entries
func (r *logRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM logs").Scan(&count)
	return count, err
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > models.MaxLogEntries {
		return models.MaxLogEntries
	}
	return limit
}
