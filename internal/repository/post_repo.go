package repository

import (
	"context"

	"github.com/admin-console-api/internal/database"
	"github.com/admin-console-api/internal/models"
)

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// ListByCreatedDesc reads all generated content, newest first
func (r *postRepo) ListByCreatedDesc(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT id, author_name, author_email, platform, linkedin_post, twitter_post,
			newsletter, blog_post, transcript, status, created_at
		FROM posts ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		var p models.Post
		err := rows.Scan(
			&p.ID, &p.AuthorName, &p.AuthorEmail, &p.Platform, &p.LinkedInPost, &p.TwitterPost,
			&p.Newsletter, &p.BlogPost, &p.Transcript, &p.Status, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

// Create inserts a post
func (r *postRepo) Create(ctx context.Context, p *models.Post) error {
	query := `
		INSERT INTO posts (id, author_name, author_email, platform, linkedin_post, twitter_post,
			newsletter, blog_post, transcript, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.AuthorName, p.AuthorEmail, p.Platform, p.LinkedInPost, p.TwitterPost,
		p.Newsletter, p.BlogPost, p.Transcript, p.Status, p.CreatedAt,
	)
	return err
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}
