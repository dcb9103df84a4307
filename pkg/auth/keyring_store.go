package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "riotstats"
	keyringPrefix  = "riot_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a key to the system keychain
func (k *KeyringStore) Store(key *Key) error {
	if key == nil || key.Profile == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	entry := keyringPrefix + key.Profile
	if err := keyring.Set(keyringService, entry, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets a key from the system keychain
func (k *KeyringStore) Retrieve(profile string) (*Key, error) {
	if profile == "" {
		return nil, ErrInvalidKey
	}

	entry := keyringPrefix + profile
	data, err := keyring.Get(keyringService, entry)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var key Key
	if err := json.Unmarshal([]byte(data), &key); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key: %w", err)
	}

	return &key, nil
}

// List returns all stored keys from the keychain.
// go-keyring cannot enumerate entries, so only the default profile is
// probed.
func (k *KeyringStore) List() ([]*Key, error) {
	if key, err := k.Retrieve(DefaultProfile); err == nil {
		return []*Key{key}, nil
	}
	return []*Key{}, nil
}

// Delete removes a key from the system keychain
func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidKey
	}

	entry := keyringPrefix + profile
	err := keyring.Delete(keyringService, entry)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if a key exists in the keychain
func (k *KeyringStore) Exists(profile string) bool {
	if profile == "" {
		return false
	}

	entry := keyringPrefix + profile
	_, err := keyring.Get(keyringService, entry)
	return err == nil
}
