package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const postColumns = `id, dog_name, grooming_service, notes, tags, before_image_url, after_image_url, caption,
	user_id, created_at, status, instagram_post_id, instagram_permalink`

type postRepository struct {
	db DBTX
}

// NewPostRepository returns a PostRepository backed by the groom_posts table.
func NewPostRepository(db DBTX) ports.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) List(ctx context.Context) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM groom_posts ORDER BY created_at ASC, id ASC`
	return r.query(ctx, query)
}

func (r *postRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM groom_posts WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	return r.query(ctx, query, userID)
}

func (r *postRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM groom_posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// Create relies on column defaults for created_at and status.
func (r *postRepository) Create(ctx context.Context, userID *int64, f domain.PostFields) (*domain.Post, error) {
	query := `
		INSERT INTO groom_posts (dog_name, grooming_service, notes, tags, before_image_url, after_image_url, caption, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query,
		value(f.DogName),
		value(f.GroomingService),
		f.Notes,
		f.Tags,
		value(f.BeforeImageURL),
		value(f.AfterImageURL),
		value(f.Caption),
		userID,
	))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// Update leaves NULL arguments untouched. user_id, status and the Instagram
// columns are not in the statement.
func (r *postRepository) Update(ctx context.Context, id int64, f domain.PostFields) (*domain.Post, error) {
	query := `
		UPDATE groom_posts SET
			dog_name         = COALESCE($2, dog_name),
			grooming_service = COALESCE($3, grooming_service),
			notes            = COALESCE($4, notes),
			tags             = COALESCE($5, tags),
			before_image_url = COALESCE($6, before_image_url),
			after_image_url  = COALESCE($7, after_image_url),
			caption          = COALESCE($8, caption)
		WHERE id = $1
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query,
		id,
		f.DogName,
		f.GroomingService,
		f.Notes,
		f.Tags,
		f.BeforeImageURL,
		f.AfterImageURL,
		f.Caption,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groom_posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

// MarkPublished is a conditional update on status = 'draft', so two racing
// publishes cannot both record an id.
func (r *postRepository) MarkPublished(ctx context.Context, id int64, instagramPostID, permalink string) (*domain.Post, error) {
	query := `
		UPDATE groom_posts SET
			status              = 'published',
			instagram_post_id   = $2,
			instagram_permalink = $3
		WHERE id = $1 AND status = 'draft'
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id, instagramPostID, permalink))
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark published: %w", err)
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrAlreadyPosted
}

func (r *postRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func scanPost(row interface{ Scan(...any) error }) (*domain.Post, error) {
	var (
		p      domain.Post
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.DogName,
		&p.GroomingService,
		&p.Notes,
		&p.Tags,
		&p.BeforeImageURL,
		&p.AfterImageURL,
		&p.Caption,
		&p.UserID,
		&p.CreatedAt,
		&status,
		&p.InstagramPostID,
		&p.InstagramPermalink,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PostStatus(status)
	return &p, nil
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
