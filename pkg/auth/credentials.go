// Package auth stores the secrets the tracker needs at runtime, the Apify
// API token and the FTP password, preferring the system keychain and
// falling back to environment variables.
package auth

import (
	"errors"
	"fmt"
	"time"
)

// Well-known secret names
const (
	SecretApifyToken  = "apify_token"
	SecretFTPPassword = "ftp_password"
)

// Secret is a named credential value
type Secret struct {
	Name         string    `json:"name"`
	Value        string    `json:"value"`
	LastModified time.Time `json:"last_modified"`
}

// SecretStore is the interface for storing and retrieving secrets
type SecretStore interface {
	// Store saves a secret
	Store(secret *Secret) error

	// Retrieve gets a secret by name
	Retrieve(name string) (*Secret, error)

	// Delete removes a secret by name
	Delete(name string) error

	// Exists checks if a secret is present
	Exists(name string) bool
}

// Manager tries each backend in order: keychain first, then environment
type Manager struct {
	stores []SecretStore
}

// NewManager creates a manager with the storage backends available on this
// system. The environment store is always present as a last resort.
func NewManager() *Manager {
	var stores []SecretStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}
}

// Store saves the secret in the first backend that accepts it
func (m *Manager) Store(secret *Secret) error {
	if secret == nil || secret.Name == "" {
		return ErrInvalidSecret
	}
	if secret.Value == "" {
		return errors.New("secret value is required")
	}

	secret.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(secret); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store secret: %w", lastErr)
	}
	return errors.New("no available secret stores")
}

// Retrieve gets the secret from the first backend that has it
func (m *Manager) Retrieve(name string) (*Secret, error) {
	for _, store := range m.stores {
		if secret, err := store.Retrieve(name); err == nil && secret != nil {
			return secret, nil
		}
	}
	return nil, fmt.Errorf("secret not found: %s", name)
}

// Delete removes the secret from every backend that has it
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete secret: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("secret not found: %s", name)
	}

	return nil
}

// Exists reports whether any backend holds the secret
func (m *Manager) Exists(name string) bool {
	for _, store := range m.stores {
		if store.Exists(name) {
			return true
		}
	}
	return false
}

// MaskValue masks all but the first 4 and last 4 characters of a value
func MaskValue(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrSecretNotFound   = errors.New("secret not found")
	ErrInvalidSecret    = errors.New("invalid secret")
	ErrStoreUnavailable = errors.New("secret store unavailable")
)
