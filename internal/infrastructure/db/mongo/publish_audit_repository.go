package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const publishAttemptsCollection = "publish_attempts"

// PublishAuditRepository implements ports.PublishAuditRepository using MongoDB.
type PublishAuditRepository struct {
	col *mongo.Collection
}

// NewPublishAuditRepository creates a repository over the publish_attempts
// collection.
func NewPublishAuditRepository(db *mongo.Database) *PublishAuditRepository {
	return &PublishAuditRepository{col: db.Collection(publishAttemptsCollection)}
}

var _ ports.PublishAuditRepository = (*PublishAuditRepository)(nil)

type publishAttemptDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	PostID          int64              `bson:"post_id"`
	UserID          int64              `bson:"user_id"`
	Success         bool               `bson:"success"`
	InstagramPostID string             `bson:"instagram_post_id,omitempty"`
	Permalink       string             `bson:"permalink,omitempty"`
	FailedStep      string             `bson:"failed_step,omitempty"`
	Error           string             `bson:"error,omitempty"`
	AttemptedAt     time.Time          `bson:"attempted_at"`
	DurationMillis  int64              `bson:"duration_ms"`
	RecordedAt      time.Time          `bson:"recorded_at"`
}

// Insert appends one attempt to the audit trail.
func (r *PublishAuditRepository) Insert(ctx context.Context, a *domain.PublishAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := publishAttemptDoc{
		PostID:          a.PostID,
		UserID:          a.UserID,
		Success:         a.Success,
		InstagramPostID: a.InstagramPostID,
		Permalink:       a.Permalink,
		FailedStep:      string(a.FailedStep),
		Error:           a.Error,
		AttemptedAt:     a.AttemptedAt.UTC(),
		DurationMillis:  a.DurationMillis,
		RecordedAt:      time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert publish attempt: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes on publish_attempts.
func (r *PublishAuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "attempted_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "success", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
