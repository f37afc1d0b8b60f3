package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

type postService struct {
	repo      ports.PostRepository
	publisher ports.Publisher
	recorder  ports.PublishRecorder
	baseURL   *url.URL
	now       func() time.Time
	log       zerolog.Logger
}

// NewPostService returns a PostService implementation. publicBaseURL is used to
// turn relative image paths into absolute URLs the Graph API can fetch; it may
// be empty when images are already stored with absolute URLs. recorder may be
// nil.
func NewPostService(
	repo ports.PostRepository,
	publisher ports.Publisher,
	recorder ports.PublishRecorder,
	publicBaseURL string,
	log zerolog.Logger,
) (ports.PostService, error) {
	var base *url.URL
	if publicBaseURL != "" {
		u, err := url.Parse(publicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse public base url: %w", err)
		}
		base = u
	}
	return &postService{
		repo:      repo,
		publisher: publisher,
		recorder:  recorder,
		baseURL:   base,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("component", "posts").Logger(),
	}, nil
}

func (s *postService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.List(ctx)
}

func (s *postService) ListForUser(ctx context.Context, callerID int64) ([]*domain.Post, error) {
	return s.repo.ListByUser(ctx, callerID)
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *postService) Create(ctx context.Context, callerID int64, fields domain.PostFields) (*domain.Post, error) {
	if err := validateNewPost(fields); err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, &callerID, fields)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", callerID).Msg("failed to create post")
		return nil, err
	}

	s.log.Info().Int64("post_id", post.ID).Int64("user_id", callerID).Str("dog", post.DogName).Msg("post created")
	return post, nil
}

func (s *postService) Update(ctx context.Context, callerID, id int64, fields domain.PostFields) (*domain.Post, error) {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return nil, err
	}
	if err := validatePostPatch(fields); err != nil {
		return nil, err
	}
	if fields.Empty() {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.Update(ctx, id, fields)
}

func (s *postService) Delete(ctx context.Context, callerID, id int64) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrPostNotFound
	}

	s.log.Info().Int64("post_id", id).Int64("user_id", callerID).Msg("post deleted")
	return nil
}

// Publish sends an owned draft to Instagram and records the result on the
// post. A failed attempt leaves the post in draft so it can be retried.
func (s *postService) Publish(ctx context.Context, callerID, id int64) (*ports.PublishOutcome, error) {
	// 1. Ownership.
	post, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	// 2. Already published posts return their existing permalink.
	if post.Published() {
		return &ports.PublishOutcome{
			Post:               post,
			InstagramPostID:    deref(post.InstagramPostID),
			InstagramPermalink: deref(post.InstagramPermalink),
			AlreadyPublished:   true,
		}, nil
	}
	if !post.Status.CanTransitionTo(domain.StatusPublished) {
		return nil, fmt.Errorf("publish post %d: %w", id, domain.ErrAlreadyPosted)
	}

	// 3. No credentials, no upstream calls.
	if !s.publisher.Configured() {
		return nil, domain.ErrNotConfigured
	}

	// 4. Run the carousel sequence against absolute image URLs.
	outbound := *post
	outbound.BeforeImageURL = s.absolute(post.BeforeImageURL)
	outbound.AfterImageURL = s.absolute(post.AfterImageURL)

	started := s.now()
	result := s.publisher.Publish(ctx, &outbound)
	s.record(post, callerID, result, started)

	if !result.Success {
		s.log.Warn().
			Int64("post_id", id).
			Str("step", string(result.FailedStep)).
			Str("error", result.Error).
			Msg("instagram publish failed")
		if result.FailedStep == domain.StepDiscover {
			return nil, domain.ErrNotConfigured
		}
		return nil, &domain.PublishError{Step: result.FailedStep, Message: result.Error}
	}

	// 5. Write the external identifiers back and move to published.
	updated, err := s.repo.MarkPublished(ctx, id, result.ID, result.Permalink)
	if err != nil {
		s.log.Error().Err(err).Int64("post_id", id).Str("instagram_id", result.ID).Msg("published but failed to record result")
		return nil, fmt.Errorf("record publish result: %w", err)
	}

	s.log.Info().Int64("post_id", id).Str("instagram_id", result.ID).Msg("post published to instagram")
	return &ports.PublishOutcome{
		Post:               updated,
		InstagramPostID:    result.ID,
		InstagramPermalink: result.Permalink,
	}, nil
}

// owned loads the post and checks the caller owns it.
func (s *postService) owned(ctx context.Context, callerID, id int64) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(callerID) {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *postService) record(post *domain.Post, callerID int64, result domain.PublishResult, started time.Time) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(domain.PublishAttempt{
		PostID:          post.ID,
		UserID:          callerID,
		Success:         result.Success,
		InstagramPostID: result.ID,
		Permalink:       result.Permalink,
		FailedStep:      result.FailedStep,
		Error:           result.Error,
		AttemptedAt:     started,
		DurationMillis:  s.now().Sub(started).Milliseconds(),
	})
}

func (s *postService) absolute(raw string) string {
	if s.baseURL == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	return s.baseURL.ResolveReference(ref).String()
}

type namedField struct {
	name  string
	value *string
}

func requiredFields(f domain.PostFields) []namedField {
	return []namedField{
		{"dogName", f.DogName},
		{"groomingService", f.GroomingService},
		{"beforeImageUrl", f.BeforeImageURL},
		{"afterImageUrl", f.AfterImageURL},
		{"caption", f.Caption},
	}
}

func validateNewPost(f domain.PostFields) error {
	var errs []error
	for _, field := range requiredFields(f) {
		if field.value == nil || strings.TrimSpace(*field.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.name))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrValidation}, errs...)...)
	}
	return nil
}

// validatePostPatch rejects patches that would blank a required field.
func validatePostPatch(f domain.PostFields) error {
	for _, field := range requiredFields(f) {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", domain.ErrValidation, field.name)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
