package handler

import "github.com/groompost/groompost-api/internal/core/domain"

// ErrorResponse is the error envelope returned on all 4xx/5xx responses.
// NeedsSetup tells the client to prompt for Instagram credentials; Success is
// set to false on publish failures.
type ErrorResponse struct {
	Error      string `json:"error"`
	NeedsSetup bool   `json:"needsSetup,omitempty"`
	Success    *bool  `json:"success,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Username  string `json:"username"  validate:"required,max=64"`
	Password  string `json:"password"  validate:"required,min=6"`
	Email     string `json:"email"     validate:"required,email"`
	FullName  string `json:"fullName"`
	SalonName string `json:"salonName"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest accepts partial profile fields. Password is decoded
// only so that an attempt to change it can be rejected.
type updateProfileRequest struct {
	Email           *string `json:"email"           validate:"omitempty,email"`
	FullName        *string `json:"fullName"`
	SalonName       *string `json:"salonName"`
	Bio             *string `json:"bio"`
	ProfileImageURL *string `json:"profileImageUrl"`
	Password        *string `json:"password"`
}

func (r updateProfileRequest) toPatch() domain.ProfilePatch {
	return domain.ProfilePatch{
		Email:           r.Email,
		FullName:        r.FullName,
		SalonName:       r.SalonName,
		Bio:             r.Bio,
		ProfileImageURL: r.ProfileImageURL,
	}
}

// --- Posts ---

// postRequest is shared by create and update. Fields the server owns
// (id, userId, status, instagram metadata) and inline image payloads are not
// part of it and are dropped during decoding.
type postRequest struct {
	DogName         *string `json:"dogName"`
	GroomingService *string `json:"groomingService"`
	Notes           *string `json:"notes"`
	Tags            *string `json:"tags"`
	BeforeImageURL  *string `json:"beforeImageUrl"`
	AfterImageURL   *string `json:"afterImageUrl"`
	Caption         *string `json:"caption"`
}

func (r postRequest) toFields() domain.PostFields {
	return domain.PostFields{
		DogName:         r.DogName,
		GroomingService: r.GroomingService,
		Notes:           r.Notes,
		Tags:            r.Tags,
		BeforeImageURL:  r.BeforeImageURL,
		AfterImageURL:   r.AfterImageURL,
		Caption:         r.Caption,
	}
}

type publishResponse struct {
	Success            bool         `json:"success"`
	Post               *domain.Post `json:"post"`
	InstagramPostID    string       `json:"instagramPostId"`
	InstagramPermalink string       `json:"instagramPermalink"`
	AlreadyPublished   bool         `json:"alreadyPublished,omitempty"`
}

// --- Media & captions ---

type uploadResponse struct {
	BeforeImageURL string `json:"beforeImageUrl"`
	AfterImageURL  string `json:"afterImageUrl"`
}

type captionRequest struct {
	DogName         string `json:"dogName"         validate:"required"`
	GroomingService string `json:"groomingService" validate:"required"`
	Notes           string `json:"notes"`
	Tags            string `json:"tags"`
}

type captionResponse struct {
	Caption string `json:"caption"`
}

type instagramStatusResponse struct {
	Configured bool `json:"configured"`
	Ready      bool `json:"ready"`
}
