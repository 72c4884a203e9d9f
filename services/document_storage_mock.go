package services

import (
	"fmt"
	"sync"
)

// MockDocumentStorage is an in-memory DocumentStorage for development and tests
type MockDocumentStorage struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

// NewMockDocumentStorage creates an empty in-memory document storage
func NewMockDocumentStorage() *MockDocumentStorage {
	return &MockDocumentStorage{
		documents: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage instance for testing
func (m *MockDocumentStorage) SetAsMockForTesting() {
	SetDocumentStorage(m)
}

// Upload stores the document content in memory
func (m *MockDocumentStorage) Upload(key string, content []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(content))
	copy(stored, content)
	m.documents[key] = stored
	return nil
}

// GetPresignedURL returns a fake URL for a stored document
func (m *MockDocumentStorage) GetPresignedURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, exists := m.documents[key]; !exists {
		return "", fmt.Errorf("document not found: %s", key)
	}
	return fmt.Sprintf("https://mock-storage.local/%s", key), nil
}

// Delete removes a stored document
func (m *MockDocumentStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, key)
	return nil
}

// Document returns the stored content for assertions in tests
func (m *MockDocumentStorage) Document(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, exists := m.documents[key]
	return content, exists
}
