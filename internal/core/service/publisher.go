package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

// InstagramPublisher publishes a post's before/after pair as a two-slide
// carousel. The business account id is discovered lazily and cached for the
// process lifetime; a failed discovery is retried on the next publish.
type InstagramPublisher struct {
	api        ports.GraphAPI
	configured bool
	log        zerolog.Logger

	mu        sync.RWMutex
	accountID string
}

// NewInstagramPublisher returns a publisher. configured must be false when no
// access token is available; Publish then fails without calling api.
func NewInstagramPublisher(api ports.GraphAPI, configured bool, log zerolog.Logger) *InstagramPublisher {
	return &InstagramPublisher{
		api:        api,
		configured: configured,
		log:        log.With().Str("component", "instagram").Logger(),
	}
}

func (p *InstagramPublisher) Configured() bool { return p.configured }

func (p *InstagramPublisher) Ready() bool {
	if !p.configured {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accountID != ""
}

// Discover resolves and caches the business account id. Concurrent first
// calls may both hit the API; the results are identical.
func (p *InstagramPublisher) Discover(ctx context.Context) (string, error) {
	if !p.configured {
		return "", domain.ErrNotConfigured
	}
	p.mu.RLock()
	cached := p.accountID
	p.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	pageID, err := p.api.FirstPageID(ctx)
	if err != nil {
		return "", fmt.Errorf("list pages: %w", err)
	}
	accountID, err := p.api.InstagramAccountID(ctx, pageID)
	if err != nil {
		return "", fmt.Errorf("read instagram account of page %s: %w", pageID, err)
	}

	p.mu.Lock()
	p.accountID = accountID
	p.mu.Unlock()

	p.log.Info().Str("page_id", pageID).Str("account_id", accountID).Msg("instagram business account discovered")
	return accountID, nil
}

// Publish runs discover -> container -> children -> attach -> publish ->
// permalink. The first failing step aborts the rest; created containers are
// left for the platform to expire.
func (p *InstagramPublisher) Publish(ctx context.Context, post *domain.Post) domain.PublishResult {
	run := publishRun{p: p, post: post}
	for _, step := range []struct {
		name domain.PublishStep
		fn   func(context.Context) error
	}{
		{domain.StepDiscover, run.discover},
		{domain.StepCreateContainer, run.createContainer},
		{domain.StepCreateChildren, run.createChildren},
		{domain.StepAttachChildren, run.attachChildren},
		{domain.StepPublish, run.publish},
		{domain.StepPermalink, run.permalink},
	} {
		if err := step.fn(ctx); err != nil {
			p.log.Warn().Err(err).Int64("post_id", post.ID).Str("step", string(step.name)).Msg("carousel publish aborted")
			return domain.PublishResult{Success: false, Error: err.Error(), FailedStep: step.name}
		}
	}

	return domain.PublishResult{ID: run.mediaID, Permalink: run.link, Success: true}
}

// publishRun carries the outputs of each step into the next.
type publishRun struct {
	p    *InstagramPublisher
	post *domain.Post

	accountID   string
	containerID string
	childIDs    []string
	mediaID     string
	link        string
}

func (r *publishRun) discover(ctx context.Context) error {
	id, err := r.p.Discover(ctx)
	if err != nil {
		return err
	}
	r.accountID = id
	return nil
}

func (r *publishRun) createContainer(ctx context.Context) error {
	id, err := r.p.api.CreateCarouselContainer(ctx, r.accountID, r.post.PublishText())
	if err != nil {
		return fmt.Errorf("create carousel container: %w", err)
	}
	r.containerID = id
	return nil
}

// createChildren creates the slides in before, after order.
func (r *publishRun) createChildren(ctx context.Context) error {
	for _, imageURL := range []string{r.post.BeforeImageURL, r.post.AfterImageURL} {
		id, err := r.p.api.CreateCarouselItem(ctx, r.accountID, imageURL)
		if err != nil {
			return fmt.Errorf("create carousel item: %w", err)
		}
		r.childIDs = append(r.childIDs, id)
	}
	return nil
}

func (r *publishRun) attachChildren(ctx context.Context) error {
	if err := r.p.api.AttachChildren(ctx, r.containerID, r.childIDs); err != nil {
		return fmt.Errorf("attach carousel items: %w", err)
	}
	return nil
}

func (r *publishRun) publish(ctx context.Context) error {
	id, err := r.p.api.PublishContainer(ctx, r.accountID, r.containerID)
	if err != nil {
		return fmt.Errorf("publish container: %w", err)
	}
	r.mediaID = id
	return nil
}

func (r *publishRun) permalink(ctx context.Context) error {
	link, err := r.p.api.Permalink(ctx, r.mediaID)
	if err != nil {
		return fmt.Errorf("fetch permalink: %w", err)
	}
	r.link = link
	return nil
}
