package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"riotstats/pkg/logger"
)

// Job represents a single match to fetch and persist
type Job struct {
	MatchID string
}

// Result represents the outcome of a collection job
type Result struct {
	Job      Job
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// MatchSource fetches raw match JSON. The Riot client's rate limiter
// governs how fast workers actually hit the API, so the pool itself
// does no throttling.
type MatchSource interface {
	MatchRaw(ctx context.Context, matchID string) (json.RawMessage, error)
}

// MatchStore persists match JSON and answers duplicate checks
type MatchStore interface {
	HasMatch(matchID string) bool
	SaveMatch(matchID string, data json.RawMessage) error
}

// Pool manages concurrent collection workers
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	source      MatchSource
	store       MatchStore
	logger      logger.Logger
}

// NewPool creates a new collection worker pool
func NewPool(numWorkers int, source MatchSource, store MatchStore, log logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	if numWorkers <= 0 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		source:      source,
		store:       store,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (p *Pool) Start() {
	p.logger.InfoWithFields("starting collector pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully shuts down the pool. Queued jobs are drained before
// workers exit.
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()

	p.logger.Info("collector pool stopped")
}

// Submit adds a new job to the queue. Submitting after Stop has
// returned fails with an error. Submit must not be called concurrently
// with Stop: the producer that submits jobs is the one that stops the
// pool once it has submitted the last of them.
func (p *Pool) Submit(job Job) error {
	// checked first so a stopped pool never sends on the closed queue
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("collector pool is shutting down")
	default:
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("collector pool is shutting down")
	}
}

// Results returns the channel collection results arrive on
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// QueueSize returns the current number of queued jobs
func (p *Pool) QueueSize() int {
	return len(p.jobQueue)
}

// worker is the main worker routine
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.processJob(job, id)

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

// processJob fetches one match and persists it
func (p *Pool) processJob(job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}

	if p.store.HasMatch(job.MatchID) {
		p.logger.DebugWithFields("match already saved", map[string]interface{}{
			"worker_id": workerID,
			"match_id":  job.MatchID,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	data, err := p.source.MatchRaw(p.ctx, job.MatchID)
	if err != nil {
		result.Error = fmt.Errorf("fetch failed: %w", err)
		result.Duration = time.Since(start)

		p.logger.ErrorWithFields("worker failed to fetch match", map[string]interface{}{
			"worker_id": workerID,
			"match_id":  job.MatchID,
			"error":     err.Error(),
		})
		return result
	}
	result.Size = len(data)

	if err := p.store.SaveMatch(job.MatchID, data); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		p.logger.ErrorWithFields("worker failed to save match", map[string]interface{}{
			"worker_id": workerID,
			"match_id":  job.MatchID,
			"error":     err.Error(),
		})
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)

	p.logger.DebugWithFields("worker saved match", map[string]interface{}{
		"worker_id": workerID,
		"match_id":  job.MatchID,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}
