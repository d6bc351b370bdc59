// Package filestore reads and writes the cache file through an afero
// filesystem, so the same code runs against the OS or memory.
package filestore

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store implements domain.FileStore on an afero.Fs.
type Store struct {
	fs afero.Fs
}

// New wraps fs.
func New(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewOS returns a store on the real filesystem.
func NewOS() *Store {
	return New(afero.NewOsFs())
}

// NewMemory returns a store backed by an in-memory filesystem.
func NewMemory() *Store {
	return New(afero.NewMemMapFs())
}

// Fs exposes the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

func (s *Store) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

func (s *Store) ReadAll(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// WriteAll replaces the file at path in one step: data goes to a temp file
// first, then the temp file is renamed over path.
func (s *Store) WriteAll(path string, data []byte) error {
	tempPath := path + ".tmp"

	if err := afero.WriteFile(s.fs, tempPath, data, 0o600); err != nil {
		return err
	}

	if err := s.fs.Rename(tempPath, path); err != nil {
		s.fs.Remove(tempPath)
		return err
	}
	return nil
}

func (s *Store) EnsureDirectory(path string) error {
	return s.fs.MkdirAll(path, 0o755)
}

// Delete removes path. A missing file is not an error.
func (s *Store) Delete(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DefaultPath returns the cache file location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tiercache", "cache.json"), nil
}
