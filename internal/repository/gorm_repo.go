package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/admin-console-api/internal/models"
)

// gormUserRepo implements UserRepository on gorm
type gormUserRepo struct {
	db *gorm.DB
}

// NewGormUserRepo creates a gorm-backed user repository
func NewGormUserRepo(db *gorm.DB) UserRepository {
	return &gormUserRepo{db: db}
}

func (r *gormUserRepo) ListAll(ctx context.Context) ([]models.UserDocument, error) {
	users := []models.UserDocument{}
	err := r.db.WithContext(ctx).
		Order("invited_at IS NULL, invited_at, id").
		Find(&users).Error
	return users, err
}

func (r *gormUserRepo) GetByID(ctx context.Context, id string) (*models.UserDocument, error) {
	var user models.UserDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepo) Create(ctx context.Context, user *models.UserDocument) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, id, "status", status)
}

func (r *gormUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	return r.update(ctx, id, "role", role)
}

func (r *gormUserRepo) update(ctx context.Context, id, column, value string) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserDocument{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUserRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, &models.UserDocument{})
}

// gormPostRepo implements PostRepository on gorm
type gormPostRepo struct {
	db *gorm.DB
}

// NewGormPostRepo creates a gorm-backed post repository
func NewGormPostRepo(db *gorm.DB) PostRepository {
	return &gormPostRepo{db: db}
}

func (r *gormPostRepo) ListByCreatedDesc(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (r *gormPostRepo) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *gormPostRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, &models.Post{})
}

// gormLogRepo implements LogRepository on gorm
type gormLogRepo struct {
	db *gorm.DB
}

// NewGormLogRepo creates a gorm-backed activity log repository
func NewGormLogRepo(db *gorm.DB) LogRepository {
	return &gormLogRepo{db: db}
}

func (r *gormLogRepo) Latest(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	entries := []*models.LogEntry{}
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(clampLimit(limit)).
		Find(&entries).Error
	return entries, err
}

func (r *gormLogRepo) Append(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormLogRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, &models.LogEntry{})
}

// gormAccountRepo implements AccountRepository on gorm
type gormAccountRepo struct {
	db *gorm.DB
}

// NewGormAccountRepo creates a gorm-backed account repository
func NewGormAccountRepo(db *gorm.DB) AccountRepository {
	return &gormAccountRepo{db: db}
}

func (r *gormAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepo) Create(ctx context.Context, account *models.Account) error {
	account.Email = strings.ToLower(account.Email)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "provider"}),
		}).
		Create(account).Error
}

func (r *gormAccountRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, &models.Account{})
}

func count(ctx context.Context, db *gorm.DB, model any) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Count(&n).Error
	return int(n), err
}
