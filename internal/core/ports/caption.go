package ports

import (
	"context"

	"github.com/groompost/groompost-api/internal/core/domain"
)

// CompletionRequest is a single chat-completion call.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// TextCompleter is the external text-generation endpoint.
type TextCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CaptionService interface {
	Generate(ctx context.Context, req domain.CaptionRequest) (string, error)
}
