// Package filestore reads files to send and writes files received, on top of afero.
package filestore

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrBadName = errors.New("bad file name")

type Store struct {
	fs  afero.Fs
	dir string
}

// New stores received files under dir. A relative dir is resolved against
// the working directory so receipts show absolute paths.
func New(fs afero.Fs, dir string) *Store {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Store{fs: fs, dir: dir}
}

// NewOS is a Store on the real filesystem.
func NewOS(dir string) *Store { return New(afero.NewOsFs(), dir) }

func (s *Store) Dir() string { return s.dir }

// Read returns the basename of path and its content.
func (s *Store) Read(path string) (string, []byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	return filepath.Base(path), data, nil
}

// Write saves data under the store directory using only the basename of name.
// An existing file is overwritten.
func (s *Store) Write(name string, data []byte) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, base)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
