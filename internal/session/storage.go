package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage persists the single serialized session record.
type Storage interface {
	// Load returns the stored record, or an error matching fs.ErrNotExist
	// if nothing is stored.
	Load() ([]byte, error)

	// Save replaces the stored record.
	Save(data []byte) error

	// Remove deletes the stored record. Removing nothing is not an error.
	Remove() error
}

// FileStorage keeps the session in a file readable only by the owner.
type FileStorage struct {
	path string
}

// NewFileStorage stores the session at path. The parent directory is
// created with mode 0700 on first save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the session file path.
func (f *FileStorage) Path() string { return f.path }

// Load implements Storage.
func (f *FileStorage) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Save implements Storage. The file is written next to its final location
// and renamed into place.
func (f *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Remove implements Storage.
func (f *FileStorage) Remove() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
