package graph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileTokenStore persists the token pair to a JSON file. The interactive
// login flow writes the same file, which is how an externally acquired
// token reaches the session.
type FileTokenStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileTokenStore creates a token store that persists to the given path.
// The directory is created automatically on first write.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the stored token from disk.
// Returns ErrNoToken if the file is missing or corrupt.
func (s *FileTokenStore) Load(_ context.Context) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, err
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, ErrNoToken // corrupt file, treat as absent
	}
	return &token, nil
}

// Save writes the token to disk with 0600 permissions.
func (s *FileTokenStore) Save(_ context.Context, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
