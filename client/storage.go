package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Fixed keys under which the token pair is persisted
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// TokenStorage persists the access/refresh token pair between runs
type TokenStorage interface {
	Load() (access, refresh string, err error)
	Save(access, refresh string) error
	Clear() error
}

// FileTokenStorage stores the token pair as a JSON file on disk
type FileTokenStorage struct {
	path string
}

// NewFileTokenStorage creates a file-backed token storage at path
func NewFileTokenStorage(path string) *FileTokenStorage {
	return &FileTokenStorage{path: path}
}

// Load reads the persisted token pair. A missing file is not an error; it
// simply yields an empty pair.
func (f *FileTokenStorage) Load() (string, string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("failed to read token file: %w", err)
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", "", fmt.Errorf("failed to parse token file: %w", err)
	}
	return stored[accessTokenKey], stored[refreshTokenKey], nil
}

// Save writes the token pair, creating parent directories as needed
func (f *FileTokenStorage) Save(access, refresh string) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.Marshal(map[string]string{
		accessTokenKey:  access,
		refreshTokenKey: refresh,
	})
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the persisted token pair
func (f *FileTokenStorage) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStorage keeps the token pair in memory. Used in tests and for
// sessions that should not survive the process.
type MemoryTokenStorage struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryTokenStorage creates an empty in-memory token storage
func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{}
}

// Load returns the stored token pair
func (m *MemoryTokenStorage) Load() (string, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, m.refresh, nil
}

// Save replaces the stored token pair
func (m *MemoryTokenStorage) Save(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	return nil
}

// Clear empties the stored token pair
func (m *MemoryTokenStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	return nil
}
