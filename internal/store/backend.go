package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Backend loads and saves the serialized snapshot of the whole task map.
type Backend interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileBackend persists the snapshot as a single JSON file on local disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates a FileBackend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the snapshot file location.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	return data, nil
}

// Save writes the snapshot atomically: temp file in the same directory,
// then rename.
func (b *FileBackend) Save(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &UnavailableError{Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return &UnavailableError{Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &UnavailableError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &UnavailableError{Err: err}
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return &UnavailableError{Err: err}
	}
	return nil
}
