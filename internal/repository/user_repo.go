package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/admin-console-api/internal/database"
	"github.com/admin-console-api/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, status, role, invited_at`

// ListAll reads the whole collection in fetch order
func (r *userRepo) ListAll(ctx context.Context) ([]models.UserDocument, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY invited_at ASC NULLS LAST, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserDocument{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.UserDocument, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.UserDocument) error {
	query := `
		INSERT INTO users (id, email, status, role, invited_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Status, nullString(user.Role), user.InvitedAt,
	)
	return err
}

// UpdateStatus sets the status field of one user
func (r *userRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateField(ctx, `UPDATE users SET status = $1 WHERE id = $2`, status, id)
}

// UpdateRole sets the role field of one user
func (r *userRepo) UpdateRole(ctx context.Context, id, role string) error {
	return r.updateField(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

func (r *userRepo) updateField(ctx context.Context, query, value, id string) error {
	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.UserDocument, error) {
	var user models.UserDocument
	var role sql.NullString
	var invitedAt sql.NullTime

	if err := row.Scan(&user.ID, &user.Email, &user.Status, &role, &invitedAt); err != nil {
		return nil, err
	}
	user.Role = role.String
	if invitedAt.Valid {
		user.InvitedAt = &invitedAt.Time
	}
	return &user, nil
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
