package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/groompost/groompost-api/internal/core/domain"
)

func TestPublishAuditRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert success", func(mt *mtest.T) {
		repo := NewPublishAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Insert(context.Background(), &domain.PublishAttempt{
			PostID:          3,
			UserID:          1,
			Success:         true,
			InstagramPostID: "ig-1",
			AttemptedAt:     time.Now(),
		})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)

		assert.Equal(mt, publishAttemptsCollection, started.Command.Lookup("insert").StringValue())
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		repo := NewPublishAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Insert(context.Background(), &domain.PublishAttempt{PostID: 3, FailedStep: domain.StepAttachChildren})
		assert.ErrorContains(mt, err, "insert publish attempt")
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewPublishAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(context.Background()))
		assert.Equal(mt, "createIndexes", mt.GetStartedEvent().CommandName)
	})
}
