// Package ratelimit provides client-side rate limiting for the Riot API.
//
// The Riot developer quotas are published as two caps that apply at the
// same time: 20 requests per second and 100 requests per 2 minutes. The
// DualWindow limiter tracks request timestamps over both trailing windows
// and blocks the caller just long enough to stay under each cap. Both
// checks are sliding windows, so bursts at bucket boundaries cannot
// exceed either quota.
//
// Usage:
//
//	limiter := ratelimit.NewDualWindow(20, 100, 2*time.Minute)
//
//	// Blocks for zero or more seconds, then records the request.
//	limiter.Acquire()
//	// Proceed with the request.
//
// A single limiter instance is safe for concurrent use; calls are
// admitted in the order Acquire is invoked.
package ratelimit
