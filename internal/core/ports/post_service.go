package ports

import (
	"context"

	"github.com/groompost/groompost-api/internal/core/domain"
)

// PublishOutcome is returned to the HTTP layer after a successful publish.
type PublishOutcome struct {
	Post               *domain.Post
	InstagramPostID    string
	InstagramPermalink string
	AlreadyPublished   bool
}

// PostService exposes post use cases. callerID is the authenticated user.
type PostService interface {
	List(ctx context.Context) ([]*domain.Post, error)
	ListForUser(ctx context.Context, callerID int64) ([]*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Create(ctx context.Context, callerID int64, fields domain.PostFields) (*domain.Post, error)
	Update(ctx context.Context, callerID, id int64, fields domain.PostFields) (*domain.Post, error)
	Delete(ctx context.Context, callerID, id int64) error
	Publish(ctx context.Context, callerID, id int64) (*PublishOutcome, error)
}
