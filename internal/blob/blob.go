// Package blob is a content-addressable store for raw file bytes on an afero filesystem.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/legacylens/internal/contract"
	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store keeps each blob at its key. Keys are slash separated relative paths.
type Store struct {
	fs afero.Fs
}

var _ contract.ContentStore = &Store{} // Compile-time check

// New wraps fs.
func New(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewOsStore roots a store at dir on the local disk.
func NewOsStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create content dir %s: %w", dir, err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// NewMemStore keeps blobs in memory.
func NewMemStore() *Store {
	return New(afero.NewMemMapFs())
}

// FromConfig picks the store described by cfg.
func FromConfig(cfg *contract.Config) (*Store, error) {
	if cfg.ContentInMem {
		return NewMemStore(), nil
	}
	return NewOsStore(cfg.ContentDir)
}

// Put writes data under key. Writes go to a temporary file first so readers
// never see a partial blob. Existing content is left alone since keys are
// derived from the content.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := cleanKey(key)
	if err != nil {
		return err
	}
	if ok, _ := afero.Exists(s.fs, p); ok {
		return nil
	}
	if err := s.fs.MkdirAll(path.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp := p + ".tmp-" + uuid.NewString()
	if err := afero.WriteFile(s.fs, tmp, data, filePerm); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to commit blob %s: %w", key, err)
	}
	return nil
}

// Get reads the blob at key. A missing blob wraps ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("blob %s: %w", key, contract.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the blob at key. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("blob key cannot be empty")
	}
	p := path.Clean("/" + key)
	if p == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return p, nil
}
