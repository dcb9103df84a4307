package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Key represents a stored Riot API key under a named profile
type Key struct {
	Profile      string    `json:"profile"`
	APIKey       string    `json:"api_key"`
	Region       string    `json:"region,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving API keys
type CredentialStore interface {
	// Store saves a key under its profile name
	Store(key *Key) error

	// Retrieve gets the key for a specific profile
	Retrieve(profile string) (*Key, error)

	// List returns all stored keys
	List() ([]*Key, error)

	// Delete removes the key for a specific profile
	Delete(profile string) error

	// Exists checks if a key exists for a profile
	Exists(profile string) bool
}

// Manager handles key storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves a key using the first available store
func (m *Manager) Store(key *Key) error {
	if key.Profile == "" {
		return errors.New("profile name is required")
	}
	if key.APIKey == "" {
		return errors.New("API key is required")
	}
	if key.APIKey == PlaceholderKey {
		return ErrPlaceholderKey
	}

	key.LastModified = time.Now()

	// Try each store in order
	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(key); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store key: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets the key from the first store that has it
func (m *Manager) Retrieve(profile string) (*Key, error) {
	for _, store := range m.stores {
		if key, err := store.Retrieve(profile); err == nil && key != nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("no API key found for profile: %s", profile)
}

// RetrieveDefault gets the key for the default profile or the first available
func (m *Manager) RetrieveDefault() (*Key, error) {
	// First try the environment, so CI and scripts win without setup
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if key, err := envStore.Retrieve(""); err == nil && key != nil {
			return key, nil
		}
	}

	if key, err := m.Retrieve(DefaultProfile); err == nil {
		return key, nil
	}

	keys, err := m.List()
	if err == nil && len(keys) > 0 {
		return keys[0], nil
	}

	return nil, errors.New("no API key found; run 'riotstats auth set' or set RIOT_API_KEY")
}

// List returns all stored keys from all stores
func (m *Manager) List() ([]*Key, error) {
	keyMap := make(map[string]*Key)

	for _, store := range m.stores {
		keys, err := store.List()
		if err != nil {
			continue
		}
		for _, key := range keys {
			// Use the most recently modified version
			if existing, ok := keyMap[key.Profile]; !ok || key.LastModified.After(existing.LastModified) {
				keyMap[key.Profile] = key
			}
		}
	}

	var result []*Key
	for _, key := range keyMap {
		result = append(result, key)
	}

	return result, nil
}

// Delete removes the key from all stores
func (m *Manager) Delete(profile string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete key: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("no API key found for profile: %s", profile)
	}

	return nil
}

// DeleteAll removes all stored keys
func (m *Manager) DeleteAll() error {
	keys, err := m.List()
	if err != nil {
		return err
	}

	for _, key := range keys {
		_ = m.Delete(key.Profile) // Ignore individual errors
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "riotstats")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "riotstats")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "riotstats")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "riotstats")
		}
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Sanitize creates a copy of the key with the credential masked
func Sanitize(key *Key) *Key {
	if key == nil {
		return nil
	}

	return &Key{
		Profile:      key.Profile,
		APIKey:       MaskKey(key.APIKey),
		Region:       key.Region,
		LastModified: key.LastModified,
	}
}

// MaskKey truncates an API key to a bounded-length prefix so that logs
// and display output never leak the full credential.
func MaskKey(key string) string {
	if len(key) <= 10 {
		return strings.Repeat("*", 10)
	}
	return key[:10] + "..."
}

const (
	// DefaultProfile is the profile used when none is named
	DefaultProfile = "default"

	// PlaceholderKey is the unconfigured value shipped in config templates
	PlaceholderKey = "your_riot_api_key_here"
)

// Errors
var (
	ErrKeyNotFound      = errors.New("API key not found")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrPlaceholderKey   = errors.New("API key is still the placeholder value, get a key from https://developer.riotgames.com")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
