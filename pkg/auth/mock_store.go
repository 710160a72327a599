package auth

import (
	"sync"
)

// MockStore implements SecretStore for testing purposes
type MockStore struct {
	secrets map[string]*Secret
	mu      sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	DeleteError   error
}

// NewMockStore creates a new mock secret store
func NewMockStore() *MockStore {
	return &MockStore{
		secrets: make(map[string]*Secret),
	}
}

// Store saves a secret to the mock store
func (m *MockStore) Store(secret *Secret) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if secret == nil || secret.Name == "" {
		return ErrInvalidSecret
	}

	// Copy to avoid external modifications
	secretCopy := *secret
	m.secrets[secret.Name] = &secretCopy

	return nil
}

// Retrieve gets a secret from the mock store
func (m *MockStore) Retrieve(name string) (*Secret, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		return nil, ErrInvalidSecret
	}

	secret, exists := m.secrets[name]
	if !exists {
		return nil, ErrSecretNotFound
	}

	secretCopy := *secret
	return &secretCopy, nil
}

// Delete removes a secret from the mock store
func (m *MockStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return ErrInvalidSecret
	}

	if _, exists := m.secrets[name]; !exists {
		return ErrSecretNotFound
	}

	delete(m.secrets, name)
	return nil
}

// Exists checks if a secret exists in the mock store
func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.secrets[name]
	return exists
}

// Clear removes all secrets from the mock store (useful for test cleanup)
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.secrets = make(map[string]*Secret)
}

// Count returns the number of secrets in the mock store (useful for testing)
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.secrets)
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	manager := &Manager{
		stores: []SecretStore{mockStore},
	}
	return manager, mockStore
}

// NewMockManagerWithStores creates a Manager with multiple stores for testing
func NewMockManagerWithStores(stores ...SecretStore) *Manager {
	return &Manager{
		stores: stores,
	}
}
