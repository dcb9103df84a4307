package collector

import (
	"context"

	"riotstats/pkg/logger"
)

// Summary aggregates the outcome of a collection run
type Summary struct {
	Fetched int
	Skipped int
	Failed  int
}

// Total returns the number of jobs processed
func (s Summary) Total() int {
	return s.Fetched + s.Skipped + s.Failed
}

// Collect fetches and persists the given matches using a worker pool,
// blocking until every job has been processed or ctx is cancelled.
// Matches already in the store are skipped without an API call.
func Collect(ctx context.Context, matchIDs []string, workers int, source MatchSource, store MatchStore, log logger.Logger) (Summary, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	pool := NewPool(workers, source, store, log)
	pool.Start()

	go func() {
		defer pool.Stop()
		for _, id := range matchIDs {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := pool.Submit(Job{MatchID: id}); err != nil {
				return
			}
		}
	}()

	var summary Summary
	for result := range pool.Results() {
		switch {
		case result.Skipped:
			summary.Skipped++
		case result.Success:
			summary.Fetched++
		default:
			summary.Failed++
		}
	}

	log.InfoWithFields("collection run finished", map[string]interface{}{
		"fetched": summary.Fetched,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	})

	return summary, ctx.Err()
}
