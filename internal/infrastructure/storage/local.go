package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultURLPrefix is where the router serves the upload directory.
const DefaultURLPrefix = "/uploads/"

// LocalConfig configures disk storage.
type LocalConfig struct {
	Dir       string
	URLPrefix string
}

// LocalStore writes images into a directory served statically by the API.
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(cfg LocalConfig) (*LocalStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("local storage: upload dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create %s: %w", cfg.Dir, err)
	}
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &LocalStore{dir: cfg.Dir, prefix: prefix}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Save streams body into a temp file and renames it into place, so readers
// never observe a partial image.
func (s *LocalStore) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	name = path.Base(filepath.ToSlash(name))
	if name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("local storage: invalid object name")
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("local storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("local storage: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("local storage: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("local storage: rename %s: %w", name, err)
	}
	return s.prefix + name, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	name = path.Base(filepath.ToSlash(name))
	if name == "." || name == "/" || name == ".." {
		return fmt.Errorf("local storage: invalid object name")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local storage: remove %s: %w", name, err)
	}
	return nil
}
