// Package storage provides the media stores uploaded images are written to.
package storage

import (
	"context"
	"fmt"

	"github.com/groompost/groompost-api/internal/core/ports"
)

const (
	BackendLocal      = "local"
	BackendCloudinary = "cloudinary"
	BackendS3         = "s3"
)

// Config selects and configures a media backend.
type Config struct {
	Backend    string
	Local      LocalConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
}

// New returns the MediaStore for cfg.Backend.
func New(ctx context.Context, cfg Config) (ports.MediaStore, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalStore(cfg.Local)
	case BackendCloudinary:
		return NewCloudinaryStore(cfg.Cloudinary)
	case BackendS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}
