package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Store persists the bearer token across process restarts, the durable
// local-storage analogue. A single key is stored: the token.
type Store interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

// FileStore keeps the token in a user-scoped file with owner-only
// permissions.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0600)
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
