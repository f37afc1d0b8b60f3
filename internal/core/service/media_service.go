package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

// DefaultUploadMaxBytes is the per-file upload limit (5 MiB).
const DefaultUploadMaxBytes int64 = 5 << 20

type mediaService struct {
	store    ports.MediaStore
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

// NewMediaService returns a MediaService writing to store. A non-positive
// maxBytes falls back to DefaultUploadMaxBytes.
func NewMediaService(store ports.MediaStore, maxBytes int64, log zerolog.Logger) ports.MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &mediaService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log.With().Str("component", "media").Logger(),
	}
}

// Upload validates both files before storing either, then stores them
// concurrently. The service keeps no state between calls.
func (s *mediaService) Upload(ctx context.Context, before, after *ports.UploadFile) (*ports.UploadResult, error) {
	if before == nil || after == nil {
		return nil, domain.ErrMissingImages
	}
	for _, f := range []*ports.UploadFile{before, after} {
		if err := s.check(f); err != nil {
			return nil, err
		}
	}

	files := [2]*ports.UploadFile{before, after}
	var names, urls [2]string
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		names[i] = s.objectName(f)
		g.Go(func() (err error) {
			urls[i], err = s.save(gctx, names[i], f)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(context.WithoutCancel(ctx), names, urls)
		return nil, err
	}

	result := ports.UploadResult{BeforeImageURL: urls[0], AfterImageURL: urls[1]}

	s.log.Info().Str("before", result.BeforeImageURL).Str("after", result.AfterImageURL).Msg("images uploaded")
	return &result, nil
}

func (s *mediaService) check(f *ports.UploadFile) error {
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedMediaType, f.Filename)
	}
	if f.Size > s.maxBytes {
		return fmt.Errorf("%w: %s", domain.ErrFileTooLarge, f.Filename)
	}
	return nil
}

func (s *mediaService) save(ctx context.Context, name string, f *ports.UploadFile) (string, error) {
	body := &limitedReader{r: f.Body, remaining: s.maxBytes}
	url, err := s.store.Save(ctx, name, f.ContentType, body)
	if err != nil {
		s.log.Error().Err(err).Str("object", name).Msg("failed to store image")
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	return url, nil
}

// discard removes the images that were stored when their pair failed, so a
// rejected upload leaves nothing behind.
func (s *mediaService) discard(ctx context.Context, names, urls [2]string) {
	for i, url := range urls {
		if url == "" {
			continue
		}
		if err := s.store.Delete(ctx, names[i]); err != nil {
			s.log.Warn().Err(err).Str("object", names[i]).Msg("failed to remove orphaned image")
		}
	}
}

// objectName builds <unix-millis>-<uuid><ext>, keeping the original extension.
func (s *mediaService) objectName(f *ports.UploadFile) string {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(f.ContentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
}

// limitedReader fails with ErrFileTooLarge once more than remaining bytes
// have been read, covering bodies whose declared size was wrong.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, domain.ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, domain.ErrFileTooLarge
	}
	return n, err
}
