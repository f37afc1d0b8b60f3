package ports

import (
	"context"

	"github.com/groompost/groompost-api/internal/core/domain"
)

// GraphAPI is the subset of the Facebook Graph API used to publish an
// Instagram carousel. Every method is one upstream call.
type GraphAPI interface {
	// FirstPageID returns the id of the first page the token can manage.
	FirstPageID(ctx context.Context) (string, error)
	// InstagramAccountID returns the business account connected to pageID.
	InstagramAccountID(ctx context.Context, pageID string) (string, error)
	CreateCarouselContainer(ctx context.Context, accountID, caption string) (string, error)
	CreateCarouselItem(ctx context.Context, accountID, imageURL string) (string, error)
	AttachChildren(ctx context.Context, containerID string, childIDs []string) error
	PublishContainer(ctx context.Context, accountID, containerID string) (string, error)
	Permalink(ctx context.Context, mediaID string) (string, error)
}

// Publisher turns a persisted post into a live Instagram carousel.
type Publisher interface {
	// Configured reports whether API credentials are present.
	Configured() bool
	// Ready reports Configured and a previously successful account discovery.
	Ready() bool
	Publish(ctx context.Context, post *domain.Post) domain.PublishResult
}

// PublishAuditRepository stores publish attempts for later inspection.
type PublishAuditRepository interface {
	Insert(ctx context.Context, attempt *domain.PublishAttempt) error
}

// PublishRecorder accepts audit records without blocking the caller.
type PublishRecorder interface {
	Record(attempt domain.PublishAttempt)
}
