package domain

import (
	"errors"
	"time"
)

// PostStatus represents the publish lifecycle of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrForbidden     = errors.New("access forbidden")
	ErrValidation    = errors.New("validation failed")
	ErrAlreadyPosted = errors.New("post already published")
)

// CanTransitionTo reports whether a post may move from s to next.
// The only transition is draft -> published; published is terminal.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	return s == StatusDraft && next == StatusPublished
}

// Post is a single before/after grooming record.
type Post struct {
	ID                 int64      `json:"id"`
	DogName            string     `json:"dogName"`
	GroomingService    string     `json:"groomingService"`
	Notes              *string    `json:"notes"`
	Tags               *string    `json:"tags"`
	BeforeImageURL     string     `json:"beforeImageUrl"`
	AfterImageURL      string     `json:"afterImageUrl"`
	Caption            string     `json:"caption"`
	UserID             *int64     `json:"userId"`
	CreatedAt          time.Time  `json:"createdAt"`
	Status             PostStatus `json:"status"`
	InstagramPostID    *string    `json:"instagramPostId"`
	InstagramPermalink *string    `json:"instagramPermalink"`
}

// OwnedBy reports whether userID owns the post. Legacy rows without an owner
// belong to nobody.
func (p *Post) OwnedBy(userID int64) bool {
	return p.UserID != nil && *p.UserID == userID
}

// Published reports whether the post already has an Instagram id recorded.
func (p *Post) Published() bool {
	return p.InstagramPostID != nil && *p.InstagramPostID != ""
}

// PublishText joins the caption and the tags into the text sent to Instagram.
// Tags already present at the end of the caption are not repeated.
func (p *Post) PublishText() string {
	if p.Tags == nil || *p.Tags == "" {
		return p.Caption
	}
	tags := *p.Tags
	if len(p.Caption) >= len(tags) && p.Caption[len(p.Caption)-len(tags):] == tags {
		return p.Caption
	}
	return p.Caption + "\n\n" + tags
}

// PostFields is the persisted projection of a post write. Image payloads are
// never part of it; images travel by URL only.
type PostFields struct {
	DogName         *string
	GroomingService *string
	Notes           *string
	Tags            *string
	BeforeImageURL  *string
	AfterImageURL   *string
	Caption         *string
}

// Empty reports whether no field is set.
func (f PostFields) Empty() bool {
	return f.DogName == nil && f.GroomingService == nil && f.Notes == nil && f.Tags == nil &&
		f.BeforeImageURL == nil && f.AfterImageURL == nil && f.Caption == nil
}

// ApplyTo merges the set fields into p.
func (f PostFields) ApplyTo(p *Post) {
	if f.DogName != nil {
		p.DogName = *f.DogName
	}
	if f.GroomingService != nil {
		p.GroomingService = *f.GroomingService
	}
	if f.Notes != nil {
		p.Notes = f.Notes
	}
	if f.Tags != nil {
		p.Tags = f.Tags
	}
	if f.BeforeImageURL != nil {
		p.BeforeImageURL = *f.BeforeImageURL
	}
	if f.AfterImageURL != nil {
		p.AfterImageURL = *f.AfterImageURL
	}
	if f.Caption != nil {
		p.Caption = *f.Caption
	}
}
