package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

type stubMediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

func newStubMediaStore() *stubMediaStore {
	return &stubMediaStore{objects: make(map[string][]byte)}
}

func (s *stubMediaStore) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[name] = data
	s.mu.Unlock()
	return "/uploads/" + name, nil
}

func (s *stubMediaStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	s.deleted = append(s.deleted, name)
	return nil
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func imageFile(name string, data string) *ports.UploadFile {
	return &ports.UploadFile{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Body:        strings.NewReader(data),
	}
}

var uploadNamePattern = regexp.MustCompile(`^/uploads/\d+-[0-9a-f-]{36}\.jpg$`)

func TestMediaService_Upload(t *testing.T) {
	store := newStubMediaStore()
	svc := NewMediaService(store, 0, zerolog.Nop())

	res, err := svc.Upload(context.Background(), imageFile("before.JPG", "aaa"), imageFile("after.jpg", "bbbb"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if !uploadNamePattern.MatchString(res.BeforeImageURL) || !uploadNamePattern.MatchString(res.AfterImageURL) {
		t.Fatalf("unexpected urls: %+v", res)
	}
	if res.BeforeImageURL == res.AfterImageURL {
		t.Fatalf("expected distinct object names")
	}
	if len(store.objects) != 2 {
		t.Fatalf("expected 2 stored objects, got %d", len(store.objects))
	}
}

func TestMediaService_RejectsNonImage(t *testing.T) {
	store := newStubMediaStore()
	svc := NewMediaService(store, 0, zerolog.Nop())

	doc := &ports.UploadFile{Filename: "notes.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")}
	if _, err := svc.Upload(context.Background(), imageFile("a.jpg", "a"), doc); !errors.Is(err, domain.ErrUnsupportedMediaType) {
		t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected nothing stored when validation fails")
	}
}

func TestMediaService_SizeLimit(t *testing.T) {
	svc := NewMediaService(newStubMediaStore(), 4, zerolog.Nop())

	if _, err := svc.Upload(context.Background(), imageFile("a.jpg", "12345"), imageFile("b.jpg", "1")); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge from declared size, got %v", err)
	}

	lying := &ports.UploadFile{Filename: "c.jpg", ContentType: "image/jpeg", Size: 1, Body: bytes.NewReader([]byte("123456789"))}
	if _, err := svc.Upload(context.Background(), imageFile("a.jpg", "1"), lying); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge from body length, got %v", err)
	}
}

func TestMediaService_FailedPairRemovesStoredImage(t *testing.T) {
	store := newStubMediaStore()
	svc := NewMediaService(store, 0, zerolog.Nop())

	broken := &ports.UploadFile{Filename: "after.jpg", ContentType: "image/jpeg", Size: 3, Body: brokenBody{}}
	if _, err := svc.Upload(context.Background(), imageFile("before.jpg", "aaa"), broken); err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected read error, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected the stored half to be removed, %d objects left", len(store.objects))
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected one delete, got %v", store.deleted)
	}
}

func TestMediaService_MissingImage(t *testing.T) {
	svc := NewMediaService(newStubMediaStore(), 0, zerolog.Nop())
	if _, err := svc.Upload(context.Background(), imageFile("a.jpg", "1"), nil); !errors.Is(err, domain.ErrMissingImages) {
		t.Fatalf("expected ErrMissingImages, got %v", err)
	}
}

func TestMediaService_StoreFailure(t *testing.T) {
	store := newStubMediaStore()
	store.err = errors.New("disk full")
	svc := NewMediaService(store, 0, zerolog.Nop())

	if _, err := svc.Upload(context.Background(), imageFile("a.jpg", "1"), imageFile("b.jpg", "2")); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store error, got %v", err)
	}
}
