package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"stockcount-api/internal/outcome"
)

// LocalScheme prefixes URLs of photos kept on local disk.
const LocalScheme = "local://"

// LocalStore writes photos under a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a local fallback store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		dir = "uploads"
	}
	return &LocalStore{dir: dir}
}

// Name implements Store.
func (s *LocalStore) Name() string { return "local" }

// Store implements Store. The folder hint is not used on disk.
func (s *LocalStore) Store(ctx context.Context, photo *Photo, filename, folder string) outcome.Result {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return outcome.Failure(fmt.Errorf("create upload dir: %w", err))
	}

	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.WriteFile(path, photo.Data, 0o644); err != nil {
		return outcome.Failure(fmt.Errorf("write %s: %w", path, err))
	}

	return outcome.Success(LocalScheme + filepath.ToSlash(path))
}

var _ Store = (*LocalStore)(nil)
