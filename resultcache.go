package main

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ResultCache maps a Fingerprint to the prior predicate verdict, with
// an at-most-once guarantee: concurrent submitters of the same
// fingerprint share a single predicate evaluation. The single-flight
// behaviour is golang.org/x/sync/singleflight's Group, which already
// gives the Pending(waiters)|Ready(verdict) shape needed here — no
// bespoke waiter bookkeeping required.
type ResultCache struct {
	flight  singleflight.Group
	mu      sync.RWMutex
	verdict map[Fingerprint]Verdict
	enabled bool
}

// NewResultCache creates a cache. When enabled is false (--no-cache),
// verdicts are never stored, but single-flight de-duplication of
// concurrent identical submissions still applies, since that is purely
// an optimization and must not influence the result.
func NewResultCache(enabled bool) *ResultCache {
	return &ResultCache{
		verdict: make(map[Fingerprint]Verdict),
		enabled: enabled,
	}
}

// Evaluate returns the cached verdict for fp if known, otherwise runs
// run() exactly once even under concurrent calls for the same fp, and
// caches the result (unless the cache is disabled).
func (c *ResultCache) Evaluate(ctx context.Context, fp Fingerprint, run func(ctx context.Context) (Verdict, error)) (Verdict, error) {
	if c.enabled {
		c.mu.RLock()
		v, ok := c.verdict[fp]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
	}

	result, err, _ := c.flight.Do(string(fp), func() (any, error) {
		v, err := run(ctx)
		if err != nil {
			return nil, err
		}

		if c.enabled {
			c.mu.Lock()
			c.verdict[fp] = v
			c.mu.Unlock()
		}

		return v, nil
	})
	if err != nil {
		return NotInteresting, err
	}

	return result.(Verdict), nil
}

// Len reports the number of distinct fingerprints currently cached.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.verdict)
}
