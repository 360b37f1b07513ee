package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/admin-console-api/internal/database"
	"github.com/admin-console-api/internal/models"
)

// accountRepo is the concrete implementation of AccountRepository
type accountRepo struct {
	db *database.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *database.DB) AccountRepository {
	return &accountRepo{db: db}
}

// GetByEmail retrieves an account by its lowercased email
func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, email, password_hash, provider, created_at FROM accounts WHERE email = $1`

	var a models.Account
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Provider, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an account. An existing email keeps its id and gets the new
// password hash and provider.
func (r *accountRepo) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, provider, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			provider = EXCLUDED.provider
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, strings.ToLower(a.Email), a.PasswordHash, a.Provider, a.CreatedAt,
	)
	return err
}

// Count returns the total number of accounts
func (r *accountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}
