package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrIO wraps any failure to read or write a saved game.
	ErrIO = errors.New("saved game i/o")

	// ErrNotExist is returned by Read when there is no saved game yet.
	// It also matches ErrIO.
	ErrNotExist = fmt.Errorf("%w: no saved game", ErrIO)
)

// FileStore keeps a single saved game on disk.
type FileStore struct {
	Path string
}

// NewFileStore returns a store for path. The parent directory is created on
// the first Write.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Read returns the saved bytes.
func (s *FileStore) Read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, s.Path, err)
	}
	return data, nil
}

// Write replaces the saved game with data. The bytes go to a temporary file in
// the same directory which is synced and then renamed over the target, so a
// reader sees either the old file or the new one.
func (s *FileStore) Write(data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create save dir: %v", ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write: %v", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: sync: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: commit: %v", ErrIO, err)
	}
	return nil
}

// Remove deletes the saved game. A missing file is not an error.
func (s *FileStore) Remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove: %v", ErrIO, err)
	}
	return nil
}

// Load reads and decodes the saved game.
func (s *FileStore) Load() (Snapshot, error) {
	data, err := s.Read()
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(data)
}
