package ports

import (
	"context"

	"github.com/groompost/groompost-api/internal/core/domain"
)

// PostRepository defines persistence operations for grooming posts.
// Listings are ordered by created_at ascending.
type PostRepository interface {
	List(ctx context.Context) ([]*domain.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Post, error)
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	// Create stamps id, created_at and the draft status.
	Create(ctx context.Context, userID *int64, fields domain.PostFields) (*domain.Post, error)
	// Update merges fields into the row. Ownership and publish metadata are
	// not part of domain.PostFields and therefore never change here.
	Update(ctx context.Context, id int64, fields domain.PostFields) (*domain.Post, error)
	// Delete reports whether a row was removed by this call.
	Delete(ctx context.Context, id int64) (bool, error)
	// MarkPublished records the Instagram id and permalink and moves the post
	// to published. It only succeeds for posts still in draft.
	MarkPublished(ctx context.Context, id int64, instagramPostID, permalink string) (*domain.Post, error)
}
