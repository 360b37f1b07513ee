package repository

import (
	"context"
	"errors"

	"github.com/admin-console-api/internal/database"
	"github.com/admin-console-api/internal/models"
)

// ErrNotFound is returned by single-record writes that matched nothing
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	ListAll(ctx context.Context) ([]models.UserDocument, error)
	GetByID(ctx context.Context, id string) (*models.UserDocument, error)
	Create(ctx context.Context, user *models.UserDocument) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateRole(ctx context.Context, id, role string) error
	Count(ctx context.Context) (int, error)
}

// PostRepository defines the interface for generated content
type PostRepository interface {
	ListByCreatedDesc(ctx context.Context) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Count(ctx context.Context) (int, error)
}

// LogRepository defines the interface for the activity log
type LogRepository interface {
	Latest(ctx context.Context, limit int) ([]*models.LogEntry, error)
	Append(ctx context.Context, entry *models.LogEntry) error
	Count(ctx context.Context) (int, error)
}

// AccountRepository defines the interface for admin accounts
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Post    PostRepository
	Log     LogRepository
	Account AccountRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Post:    NewPostRepo(db),
		Log:     NewLogRepo(db),
		Account: NewAccountRepo(db),
	}
}

// NewLocal creates all repositories on the local SQLite store
func NewLocal(db *database.LocalDB) *Repositories {
	return &Repositories{
		User:    NewGormUserRepo(db.DB),
		Post:    NewGormPostRepo(db.DB),
		Log:     NewGormLogRepo(db.DB),
		Account: NewGormAccountRepo(db.DB),
	}
}
