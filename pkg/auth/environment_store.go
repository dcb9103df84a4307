package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment
// variables, so scripts and CI can run without any stored profile.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(key *Key) error {
	return ErrStoreUnavailable
}

// Retrieve gets the key from environment variables. RIOTSTATS_API_KEY
// wins over RIOT_API_KEY when both are set.
func (e *EnvironmentStore) Retrieve(profile string) (*Key, error) {
	apiKey := os.Getenv("RIOTSTATS_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("RIOT_API_KEY")
	}
	if apiKey == "" || apiKey == PlaceholderKey {
		return nil, ErrKeyNotFound
	}

	region := os.Getenv("RIOTSTATS_REGION")
	if region == "" {
		region = os.Getenv("RIOT_REGION")
	}

	// Environment variables don't carry a profile name
	if profile == "" {
		profile = DefaultProfile
	}

	return &Key{
		Profile:      profile,
		APIKey:       apiKey,
		Region:       region,
		LastModified: time.Now(),
	}, nil
}

// List returns a single key if environment variables are set
func (e *EnvironmentStore) List() ([]*Key, error) {
	key, err := e.Retrieve("")
	if err != nil {
		return []*Key{}, nil
	}
	return []*Key{key}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(profile string) bool {
	_, err := e.Retrieve(profile)
	return err == nil
}
