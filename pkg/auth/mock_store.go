package auth

import (
	"fmt"
	"sync"
)

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	keys map[string]*Key
	mu   sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		keys: make(map[string]*Key),
	}
}

// Store saves a key to the mock store
func (m *MockStore) Store(key *Key) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if key == nil || key.Profile == "" {
		return ErrInvalidKey
	}

	// Create a copy to avoid external modifications
	keyCopy := *key
	m.keys[key.Profile] = &keyCopy

	return nil
}

// Retrieve gets a key from the mock store
func (m *MockStore) Retrieve(profile string) (*Key, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if profile == "" {
		return nil, ErrInvalidKey
	}

	key, exists := m.keys[profile]
	if !exists {
		return nil, ErrKeyNotFound
	}

	keyCopy := *key
	return &keyCopy, nil
}

// List returns all stored keys from the mock store
func (m *MockStore) List() ([]*Key, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []*Key
	for _, key := range m.keys {
		keyCopy := *key
		keys = append(keys, &keyCopy)
	}

	return keys, nil
}

// Delete removes a key from the mock store
func (m *MockStore) Delete(profile string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if profile == "" {
		return ErrInvalidKey
	}

	if _, exists := m.keys[profile]; !exists {
		return ErrKeyNotFound
	}

	delete(m.keys, profile)
	return nil
}

// Exists checks if a key exists in the mock store
func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.keys[profile]
	return exists
}

// Clear removes all keys from the mock store (useful for test cleanup)
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = make(map[string]*Key)
}

// Count returns the number of keys in the mock store (useful for testing)
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.keys)
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	manager := &Manager{
		stores: []CredentialStore{mockStore},
	}
	return manager, mockStore
}

// NewMockManagerWithStores creates a Manager with multiple stores for testing
func NewMockManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{
		stores: stores,
	}
}

// GetKey returns a copy of the key for inspection (useful for testing)
func (m *MockStore) GetKey(profile string) (*Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, exists := m.keys[profile]
	if !exists {
		return nil, fmt.Errorf("key not found: %s", profile)
	}

	keyCopy := *key
	return &keyCopy, nil
}
