package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const captionSystemPrompt = "You are a professional social media marketer specializing in content for pet grooming salons. " +
	"Your captions are engaging, positive, and highlight the amazing transformations that proper grooming can provide."

// DefaultCaptionMaxTokens caps the completion length.
const DefaultCaptionMaxTokens = 300

type captionService struct {
	completer ports.TextCompleter
	maxTokens int
	log       zerolog.Logger
}

// NewCaptionService returns a CaptionService backed by completer. A
// non-positive maxTokens falls back to DefaultCaptionMaxTokens.
func NewCaptionService(completer ports.TextCompleter, maxTokens int, log zerolog.Logger) ports.CaptionService {
	if maxTokens <= 0 {
		maxTokens = DefaultCaptionMaxTokens
	}
	return &captionService{
		completer: completer,
		maxTokens: maxTokens,
		log:       log.With().Str("component", "caption").Logger(),
	}
}

// Generate makes exactly one completion call.
func (s *captionService) Generate(ctx context.Context, req domain.CaptionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	text, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:    captionSystemPrompt,
		Prompt:    BuildCaptionPrompt(req),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		s.log.Error().Err(err).Str("dog", req.DogName).Msg("caption generation failed")
		return "", fmt.Errorf("%w: %s", domain.ErrGenerationFailed, err.Error())
	}

	caption := strings.TrimSpace(text)
	if caption == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}
	return caption, nil
}

// BuildCaptionPrompt renders the user prompt for a caption request. Notes and
// tags lines are only present when supplied.
func BuildCaptionPrompt(req domain.CaptionRequest) string {
	notes := strings.TrimSpace(req.Notes)
	tags := strings.TrimSpace(req.Tags)

	var b strings.Builder
	b.WriteString("Create an engaging, professional Instagram caption for a dog grooming salon's post.\n\n")
	b.WriteString("Information about the dog:\n")
	fmt.Fprintf(&b, "- Name: %s\n", strings.TrimSpace(req.DogName))
	fmt.Fprintf(&b, "- Grooming service: %s\n", strings.TrimSpace(req.GroomingService))
	if notes != "" {
		fmt.Fprintf(&b, "- Additional notes: %s\n", notes)
	}
	if tags != "" {
		fmt.Fprintf(&b, "- Hashtags to include: %s\n", tags)
	}

	b.WriteString("\nThe caption should:\n")
	b.WriteString("1. Sound friendly and positive\n")
	b.WriteString("2. Highlight the transformation\n")
	b.WriteString("3. Mention the dog by name\n")
	b.WriteString("4. Describe the grooming service in an appealing way\n")
	b.WriteString("5. End with a call to action like booking an appointment\n")
	if tags != "" {
		b.WriteString("6. Include the provided hashtags at the end\n")
	}

	b.WriteString("\nFormat the caption appropriately for Instagram with emojis and line breaks. ")
	b.WriteString(`Do not include "Caption:" or any other prefix in your response.`)
	return b.String()
}
