package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riotstats/pkg/logger"
)

// fakeSource serves canned match bodies and records which IDs were fetched
type fakeSource struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]bool
}

func (f *fakeSource) MatchRaw(ctx context.Context, matchID string) (json.RawMessage, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, matchID)
	f.mu.Unlock()

	if f.fail[matchID] {
		return nil, fmt.Errorf("server error 503")
	}
	return json.RawMessage(`{"metadata":{"matchId":"` + matchID + `"}}`), nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

// fakeStore keeps matches in memory
type fakeStore struct {
	mu      sync.Mutex
	matches map[string]json.RawMessage
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{matches: make(map[string]json.RawMessage)}
}

func (f *fakeStore) HasMatch(matchID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.matches[matchID]
	return ok
}

func (f *fakeStore) SaveMatch(matchID string, data json.RawMessage) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[matchID] = data
	return nil
}

func TestCollectFetchesAndPersists(t *testing.T) {
	source := &fakeSource{}
	store := newFakeStore()

	ids := []string{"NA1_1", "NA1_2", "NA1_3"}
	summary, err := Collect(context.Background(), ids, 2, source, store, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, Summary{Fetched: 3}, summary)
	assert.Equal(t, 3, summary.Total())
	for _, id := range ids {
		assert.True(t, store.HasMatch(id))
	}
}

func TestCollectSkipsSavedMatches(t *testing.T) {
	source := &fakeSource{}
	store := newFakeStore()
	require.NoError(t, store.SaveMatch("NA1_1", json.RawMessage(`{}`)))

	summary, err := Collect(context.Background(), []string{"NA1_1", "NA1_2"}, 1, source, store, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, Summary{Fetched: 1, Skipped: 1}, summary)
	// the saved match must not cost an API call
	assert.Equal(t, 1, source.fetchCount())
}

func TestCollectCountsFailures(t *testing.T) {
	source := &fakeSource{fail: map[string]bool{"NA1_2": true}}
	store := newFakeStore()

	summary, err := Collect(context.Background(), []string{"NA1_1", "NA1_2", "NA1_3"}, 2, source, store, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, Summary{Fetched: 2, Failed: 1}, summary)
	assert.False(t, store.HasMatch("NA1_2"))
}

func TestCollectCountsSaveFailures(t *testing.T) {
	source := &fakeSource{}
	store := newFakeStore()
	store.saveErr = fmt.Errorf("disk full")

	summary, err := Collect(context.Background(), []string{"NA1_1"}, 1, source, store, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, Summary{Failed: 1}, summary)
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(1, &fakeSource{}, newFakeStore(), logger.NewTestLogger())
	pool.Start()
	pool.Stop()

	err := pool.Submit(Job{MatchID: "NA1_1"})
	require.Error(t, err)
}

func TestPoolProcessesManyJobs(t *testing.T) {
	source := &fakeSource{}
	store := newFakeStore()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("NA1_%d", i)
	}

	summary, err := Collect(context.Background(), ids, 4, source, store, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, 50, summary.Fetched)
	assert.Equal(t, 50, source.fetchCount())
}
