package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesLayout(t *testing.T) {
	base := t.TempDir()

	m, err := NewManager(base)
	require.NoError(t, err)

	for _, dir := range []string{m.RawDir(), m.ProcessedDir(), m.ModelsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, 0, m.MatchCount())
}

func TestSaveAndLoadMatch(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	data := json.RawMessage(`{"metadata":{"matchId":"NA1_1"},"info":{}}`)
	require.NoError(t, m.SaveMatch("NA1_1", data))

	assert.True(t, m.HasMatch("NA1_1"))
	assert.Equal(t, 1, m.MatchCount())

	loaded, err := m.LoadMatch("NA1_1")
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(loaded))

	// no leftover temp files
	entries, err := os.ReadDir(m.RawDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "NA1_1.json", entries[0].Name())
}

func TestSaveMatchRejectsInvalidInput(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, m.SaveMatch("", json.RawMessage(`{}`)))
	assert.Error(t, m.SaveMatch("NA1_1", json.RawMessage(`not json`)))
	assert.False(t, m.HasMatch("NA1_1"))
}

func TestScanExistingMatches(t *testing.T) {
	base := t.TempDir()

	first, err := NewManager(base)
	require.NoError(t, err)
	require.NoError(t, first.SaveMatch("NA1_1", json.RawMessage(`{}`)))
	require.NoError(t, first.SaveMatch("NA1_2", json.RawMessage(`{}`)))

	// a stray non-JSON file must not be indexed
	require.NoError(t, os.WriteFile(filepath.Join(base, "raw", "notes.txt"), []byte("x"), 0644))

	second, err := NewManager(base)
	require.NoError(t, err)

	assert.Equal(t, 2, second.MatchCount())
	assert.True(t, second.HasMatch("NA1_1"))
	assert.True(t, second.HasMatch("NA1_2"))
	assert.ElementsMatch(t, []string{"NA1_1", "NA1_2"}, second.MatchIDs())
}

func TestHasMatchPicksUpExternalWrites(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.HasMatch("NA1_9"))

	// simulate another process dropping a file in raw/
	require.NoError(t, os.WriteFile(filepath.Join(m.RawDir(), "NA1_9.json"), []byte(`{}`), 0644))
	assert.True(t, m.HasMatch("NA1_9"))
}

func TestLoadMissingMatch(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = m.LoadMatch("NA1_404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NA1_404")
}
