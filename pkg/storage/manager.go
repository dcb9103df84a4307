package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Manager handles match persistence and duplicate detection. Raw match
// JSON lands under raw/, derived datasets under processed/ and models/.
type Manager struct {
	baseDir      string
	savedMatches map[string]bool
	mu           sync.RWMutex
}

// NewManager creates a new storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	for _, sub := range []string{"raw", "processed", "models"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	manager := &Manager{
		baseDir:      baseDir,
		savedMatches: make(map[string]bool),
	}

	// Scan existing files for duplicate detection
	if err := manager.scanExistingMatches(); err != nil {
		return nil, fmt.Errorf("failed to scan existing matches: %w", err)
	}

	return manager, nil
}

// scanExistingMatches scans raw/ for already saved matches
func (m *Manager) scanExistingMatches() error {
	entries, err := os.ReadDir(m.RawDir())
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			matchID := strings.TrimSuffix(entry.Name(), ".json")
			m.savedMatches[matchID] = true
		}
	}

	return nil
}

// HasMatch checks if a match has already been saved
func (m *Manager) HasMatch(matchID string) bool {
	m.mu.RLock()
	if m.savedMatches[matchID] {
		m.mu.RUnlock()
		return true
	}
	m.mu.RUnlock()

	// Double-check file existence in case another process wrote it
	if _, err := os.Stat(m.matchPath(matchID)); err == nil {
		m.mu.Lock()
		m.savedMatches[matchID] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// SaveMatch persists raw match JSON atomically. Saving a match that
// already exists overwrites it.
func (m *Manager) SaveMatch(matchID string, data json.RawMessage) error {
	if matchID == "" {
		return fmt.Errorf("match ID is required")
	}
	if !json.Valid(data) {
		return fmt.Errorf("match %s: refusing to save invalid JSON", matchID)
	}

	target := m.matchPath(matchID)

	// Write to a temp file then rename, so readers never see partial data
	tempFile := target + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write match file: %w", err)
	}
	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to finalize match file: %w", err)
	}

	m.mu.Lock()
	m.savedMatches[matchID] = true
	m.mu.Unlock()

	return nil
}

// LoadMatch reads a saved match's raw JSON
func (m *Manager) LoadMatch(matchID string) (json.RawMessage, error) {
	data, err := os.ReadFile(m.matchPath(matchID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("match %s not found", matchID)
		}
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}
	return data, nil
}

// MatchCount returns the number of saved matches
func (m *Manager) MatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.savedMatches)
}

// MatchIDs returns the IDs of all saved matches
func (m *Manager) MatchIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.savedMatches))
	for id := range m.savedMatches {
		ids = append(ids, id)
	}
	return ids
}

// RawDir returns the directory holding raw match JSON
func (m *Manager) RawDir() string {
	return filepath.Join(m.baseDir, "raw")
}

// ProcessedDir returns the directory for derived datasets
func (m *Manager) ProcessedDir() string {
	return filepath.Join(m.baseDir, "processed")
}

// ModelsDir returns the directory for trained model artifacts
func (m *Manager) ModelsDir() string {
	return filepath.Join(m.baseDir, "models")
}

func (m *Manager) matchPath(matchID string) string {
	return filepath.Join(m.RawDir(), matchID+".json")
}
