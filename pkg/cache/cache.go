// Package cache provides fitness memoization backends for search runs.
//
// A fitness oracle backed by an external reconciliation process is orders of
// magnitude more expensive than the search bookkeeping around it, and tabu
// search revisits states: a previously tabu move becomes admissible again, a
// restart walks back into an explored region. Stores in this package hold
// fitness values keyed by canonical state signature so no state is ever
// scored twice.
package cache

import (
	"sync/atomic"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// Store is the backend behind fitness memoization.
type Store interface {
	// Get returns the cached fitness for a key and whether it was present.
	Get(key string) (float64, bool, error)
	// Put records the fitness for a key, replacing any previous value.
	Put(key string, fitness float64) error
	// Stats returns a snapshot of hit/miss counters.
	Stats() Stats
	// Close releases backend resources.
	Close() error
}

// Stats carries cache effectiveness counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int64
}

// HitRate returns the fraction of lookups answered from the cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) hit()  { c.hits.Add(1) }
func (c *counters) miss() { c.misses.Add(1) }

func validateKey(key string) error {
	if key == "" {
		return errors.New(errors.InvalidInput, "empty cache key")
	}
	return nil
}
