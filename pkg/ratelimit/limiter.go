package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Acquire blocks until the next request fits under the limits, then
	// records it. It cannot fail, only delay.
	Acquire()
	// Reset resets the rate limiter state
	Reset()
}

// window tracks request timestamps within a trailing duration.
type window struct {
	span    time.Duration
	limit   int
	entries []time.Time
}

// prune removes entries older than now minus the window span
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.span)

	i := 0
	for i < len(w.entries) && !w.entries[i].After(cutoff) {
		i++
	}

	if i > 0 {
		copy(w.entries, w.entries[i:])
		w.entries = w.entries[:len(w.entries)-i]
	}
}

// waitFor returns how long the caller must sleep before the window has
// room, or zero if it already does.
func (w *window) waitFor(now time.Time) time.Duration {
	if len(w.entries) < w.limit {
		return 0
	}
	return w.span - now.Sub(w.entries[0])
}

func (w *window) record(t time.Time) {
	w.entries = append(w.entries, t)
}

// DualWindow enforces the two published API quotas: a per-second cap and
// a per-interval cap (e.g. 20/s and 100 per 120s). Both are trailing
// windows recomputed on every acquire rather than fixed buckets, so a
// burst straddling a bucket boundary cannot exceed either cap.
type DualWindow struct {
	mu    sync.Mutex
	short window
	long  window

	// overridable for deterministic tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewDualWindow creates a limiter allowing perSecond requests in any
// trailing second and perInterval requests in any trailing interval.
func NewDualWindow(perSecond, perInterval int, interval time.Duration) *DualWindow {
	return &DualWindow{
		short: window{span: time.Second, limit: perSecond, entries: make([]time.Time, 0, perSecond)},
		long:  window{span: interval, limit: perInterval, entries: make([]time.Time, 0, perInterval)},
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Acquire blocks until both windows have room, then records the request.
// The lock is held across any sleep so concurrent callers are admitted in
// the order they arrive.
func (d *DualWindow) Acquire() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.long.prune(now)
	d.short.prune(now)

	if wait := d.short.waitFor(now); wait > 0 {
		d.sleep(wait)
		// re-read the clock after sleeping so the long-window wait is
		// computed against current time, not the pre-sleep instant
		now = d.now()
		d.long.prune(now)
	}

	if wait := d.long.waitFor(now); wait > 0 {
		d.sleep(wait)
	}

	now = d.now()
	d.short.record(now)
	d.long.record(now)
}

// Reset clears all recorded requests
func (d *DualWindow) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.short.entries = d.short.entries[:0]
	d.long.entries = d.long.entries[:0]
}
