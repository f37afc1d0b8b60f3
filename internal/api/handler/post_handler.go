package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/groompost/groompost-api/internal/api/metrics"
	"github.com/groompost/groompost-api/internal/api/middleware"
	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

// PostHandler handles HTTP requests for grooming posts.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// List returns every post, oldest first. The listing is a public gallery and
// is not paginated.
//
// @Summary      List all posts
// @Tags         posts
// @Produce      json
// @Success      200  {array}   domain.Post
// @Failure      500  {object}  ErrorResponse
// @Router       /api/posts [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(posts))
}

// ListMine returns the caller's posts, oldest first.
//
// @Summary      List the caller's posts
// @Tags         posts
// @Produce      json
// @Success      200  {array}   domain.Post
// @Failure      401  {object}  ErrorResponse
// @Router       /api/user/posts [get]
func (h *PostHandler) ListMine(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	posts, err := h.service.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(posts))
}

// Get handles GET /api/posts/:id.
//
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post id"
// @Success      200  {object}  domain.Post
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.service.Get(c.Request().Context(), middleware.PostIDFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Create stores a new draft owned by the caller.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body      postRequest  true  "Post fields"
// @Success      201   {object}  domain.Post
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req postRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.service.Create(c.Request().Context(), userID, req.toFields())
	if err != nil {
		return err
	}

	metrics.PostsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, post)
}

// Update applies a partial update to a post the caller owns.
//
// @Summary      Update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Post id"
// @Param        body  body      postRequest  true  "Post fields"
// @Success      200   {object}  domain.Post
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/posts/{id} [patch]
func (h *PostHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req postRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.service.Update(c.Request().Context(), userID, middleware.PostIDFrom(c), req.toFields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Delete removes a post the caller owns.
//
// @Summary      Delete a post
// @Tags         posts
// @Param        id   path      int  true  "Post id"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, middleware.PostIDFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Publish sends a post the caller owns to Instagram as a before/after
// carousel.
//
// @Summary      Publish a post to Instagram
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post id"
// @Success      200  {object}  publishResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/posts/{id}/instagram [post]
func (h *PostHandler) Publish(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	start := time.Now()
	outcome, err := h.service.Publish(c.Request().Context(), userID, middleware.PostIDFrom(c))
	observePublish(outcome, err, time.Since(start))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, publishResponse{
		Success:            true,
		Post:               outcome.Post,
		InstagramPostID:    outcome.InstagramPostID,
		InstagramPermalink: outcome.InstagramPermalink,
		AlreadyPublished:   outcome.AlreadyPublished,
	})
}

func observePublish(outcome *ports.PublishOutcome, err error, elapsed time.Duration) {
	var pe *domain.PublishError
	switch {
	case err == nil && outcome.AlreadyPublished:
		metrics.PublishTotal.WithLabelValues("already_published", "").Inc()
		return
	case err == nil:
		metrics.PublishTotal.WithLabelValues("success", "").Inc()
		metrics.PublishDuration.WithLabelValues("success").Observe(elapsed.Seconds())
	case errors.Is(err, domain.ErrNotConfigured):
		metrics.PublishTotal.WithLabelValues("not_configured", "").Inc()
	case errors.As(err, &pe):
		metrics.PublishTotal.WithLabelValues("failed", string(pe.Step)).Inc()
		metrics.PublishDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
	}
}

func nonNil(posts []*domain.Post) []*domain.Post {
	if posts == nil {
		return []*domain.Post{}
	}
	return posts
}
