package auth

import (
	"os"
	"time"
)

// Environment variables consulted per secret name
var envVarNames = map[string]string{
	SecretApifyToken:  "IGTRACKER_APIFY_TOKEN",
	SecretFTPPassword: "IGTRACKER_FTP_PASSWORD",
}

// EnvironmentStore implements SecretStore using environment variables.
// It is read-only and exists so deployments without a keychain, cron jobs
// and containers, keep working.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based secret store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(secret *Secret) error {
	return ErrStoreUnavailable
}

// Retrieve gets a secret from its environment variable
func (e *EnvironmentStore) Retrieve(name string) (*Secret, error) {
	envVar, ok := envVarNames[name]
	if !ok {
		return nil, ErrSecretNotFound
	}

	value := os.Getenv(envVar)
	if value == "" {
		return nil, ErrSecretNotFound
	}

	return &Secret{
		Name:         name,
		Value:        value,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if the secret's environment variable is set
func (e *EnvironmentStore) Exists(name string) bool {
	envVar, ok := envVarNames[name]
	return ok && os.Getenv(envVar) != ""
}
