package ports

import (
	"context"
	"io"
)

// UploadFile is one image received from a multipart form.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult holds the public URLs of a stored before/after pair.
type UploadResult struct {
	BeforeImageURL string `json:"beforeImageUrl"`
	AfterImageURL  string `json:"afterImageUrl"`
}

// MediaStore writes an object and returns the URL it is served at.
type MediaStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	// Delete removes an object written by Save. A missing object is not an error.
	Delete(ctx context.Context, name string) error
}

type MediaService interface {
	Upload(ctx context.Context, before, after *UploadFile) (*UploadResult, error)
}
