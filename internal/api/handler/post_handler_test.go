package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/groompost/groompost-api/internal/api/middleware"
	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

type stubPostService struct {
	listFn    func(ctx context.Context) ([]*domain.Post, error)
	createFn  func(ctx context.Context, callerID int64, fields domain.PostFields) (*domain.Post, error)
	updateFn  func(ctx context.Context, callerID, id int64, fields domain.PostFields) (*domain.Post, error)
	deleteFn  func(ctx context.Context, callerID, id int64) error
	publishFn func(ctx context.Context, callerID, id int64) (*ports.PublishOutcome, error)
}

func (s *stubPostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.listFn(ctx)
}

func (s *stubPostService) ListForUser(ctx context.Context, callerID int64) ([]*domain.Post, error) {
	return nil, nil
}

func (s *stubPostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return nil, domain.ErrPostNotFound
}

func (s *stubPostService) Create(ctx context.Context, callerID int64, fields domain.PostFields) (*domain.Post, error) {
	return s.createFn(ctx, callerID, fields)
}

func (s *stubPostService) Update(ctx context.Context, callerID, id int64, fields domain.PostFields) (*domain.Post, error) {
	return s.updateFn(ctx, callerID, id, fields)
}

func (s *stubPostService) Delete(ctx context.Context, callerID, id int64) error {
	return s.deleteFn(ctx, callerID, id)
}

func (s *stubPostService) Publish(ctx context.Context, callerID, id int64) (*ports.PublishOutcome, error) {
	return s.publishFn(ctx, callerID, id)
}

func authed(c echo.Context, userID, postID int64) echo.Context {
	c.Set(middleware.ContextKeyUserID, userID)
	if postID != 0 {
		c.Set(middleware.ContextKeyPostID, postID)
	}
	return c
}

func TestPostHandler_List_EmptyIsArray(t *testing.T) {
	h := NewPostHandler(&stubPostService{
		listFn: func(context.Context) ([]*domain.Post, error) { return nil, nil },
	})

	c, rec := newJSONContext(http.MethodGet, "/api/posts", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty array, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestPostHandler_Create_DropsServerOwnedFields(t *testing.T) {
	h := NewPostHandler(&stubPostService{
		createFn: func(ctx context.Context, callerID int64, fields domain.PostFields) (*domain.Post, error) {
			if callerID != 4 {
				t.Fatalf("expected caller 4, got %d", callerID)
			}
			if fields.DogName == nil || *fields.DogName != "Rex" {
				t.Fatalf("unexpected fields: %+v", fields)
			}
			uid := callerID
			return &domain.Post{ID: 1, DogName: *fields.DogName, UserID: &uid, Status: domain.StatusDraft}, nil
		},
	})

	body := `{"dogName":"Rex","groomingService":"full-groom","beforeImageUrl":"/u/1.jpg","afterImageUrl":"/u/2.jpg",` +
		`"caption":"Rex looks great!","userId":99,"status":"published","beforeImage":"data:image/png;base64,AAAA"}`
	c, rec := newJSONContext(http.MethodPost, "/api/posts", body)
	if err := h.Create(authed(c, 4, 0)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var post domain.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if post.UserID == nil || *post.UserID != 4 || post.Status != domain.StatusDraft {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestPostHandler_Update_Forbidden(t *testing.T) {
	h := NewPostHandler(&stubPostService{
		updateFn: func(ctx context.Context, callerID, id int64, fields domain.PostFields) (*domain.Post, error) {
			if id != 8 {
				t.Fatalf("expected post 8, got %d", id)
			}
			return nil, domain.ErrForbidden
		},
	})

	c, _ := newJSONContext(http.MethodPatch, "/api/posts/8", `{"caption":"mine now"}`)
	if err := h.Update(authed(c, 2, 8)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPostHandler_Delete(t *testing.T) {
	deleted := map[int64]bool{}
	h := NewPostHandler(&stubPostService{
		deleteFn: func(ctx context.Context, callerID, id int64) error {
			if deleted[id] {
				return domain.ErrPostNotFound
			}
			deleted[id] = true
			return nil
		},
	})

	c, rec := newJSONContext(http.MethodDelete, "/api/posts/3", "")
	if err := h.Delete(authed(c, 1, 3)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodDelete, "/api/posts/3", "")
	if err := h.Delete(authed(c, 1, 3)); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound on second delete, got %v", err)
	}
}

func TestPostHandler_Publish_Success(t *testing.T) {
	igID, link := "1789", "https://instagram.com/p/abc"
	h := NewPostHandler(&stubPostService{
		publishFn: func(ctx context.Context, callerID, id int64) (*ports.PublishOutcome, error) {
			return &ports.PublishOutcome{
				Post:               &domain.Post{ID: id, Status: domain.StatusPublished, InstagramPostID: &igID, InstagramPermalink: &link},
				InstagramPostID:    igID,
				InstagramPermalink: link,
			}, nil
		},
	})

	c, rec := newJSONContext(http.MethodPost, "/api/posts/5/instagram", "")
	if err := h.Publish(authed(c, 1, 5)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Success            bool        `json:"success"`
		Post               domain.Post `json:"post"`
		InstagramPostID    string      `json:"instagramPostId"`
		InstagramPermalink string      `json:"instagramPermalink"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.InstagramPostID != igID || resp.InstagramPermalink != link || resp.Post.ID != 5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPostHandler_Publish_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not configured", domain.ErrNotConfigured},
		{"upstream failure", &domain.PublishError{Step: domain.StepAttachChildren, Message: "boom"}},
		{"not owner", domain.ErrForbidden},
	}
	for _, tc := range cases {
		h := NewPostHandler(&stubPostService{
			publishFn: func(context.Context, int64, int64) (*ports.PublishOutcome, error) {
				return nil, tc.err
			},
		})

		c, rec := newJSONContext(http.MethodPost, "/api/posts/5/instagram", "")
		if err := h.Publish(authed(c, 1, 5)); !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("%s: handler must leave the body to the error handler", tc.name)
		}
	}
}
