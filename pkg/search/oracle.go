package search

import (
	"context"
	"sync/atomic"

	"github.com/phylogeno/subgenome/pkg/cache"
	"github.com/phylogeno/subgenome/pkg/errors"
)

// Oracle scores candidate states. Lower fitness is better. Implementations
// must be referentially transparent for a fixed input set: the same state
// yields the same score for the lifetime of one run.
type Oracle[S any] interface {
	Evaluate(ctx context.Context, state S) (float64, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc[S any] func(ctx context.Context, state S) (float64, error)

func (f OracleFunc[S]) Evaluate(ctx context.Context, state S) (float64, error) {
	return f(ctx, state)
}

// StubOracle is a deterministic scorer for tests. FailFn, when set, injects
// per-candidate evaluation failures.
type StubOracle[S any] struct {
	ScoreFn func(state S) float64
	FailFn  func(state S) bool

	calls atomic.Int64
}

func (o *StubOracle[S]) Evaluate(_ context.Context, state S) (float64, error) {
	o.calls.Add(1)
	if o.FailFn != nil && o.FailFn(state) {
		return 0, errors.New(errors.OracleFailed, "stub oracle failure")
	}
	return o.ScoreFn(state), nil
}

// Calls reports how many evaluations reached the stub.
func (o *StubOracle[S]) Calls() int64 {
	return o.calls.Load()
}

// CachingOracle memoizes an expensive oracle per canonical state signature.
// Failed evaluations are not cached: an external process failure may be
// transient, and scoring the state again is exactly what we want then.
type CachingOracle[S any] struct {
	inner  Oracle[S]
	sign   func(state S) string
	store  cache.Store
	prefix string
}

// NewCachingOracle wraps an oracle with signature-keyed memoization.
func NewCachingOracle[S any](inner Oracle[S], sign func(S) string, store cache.Store) *CachingOracle[S] {
	return &CachingOracle[S]{
		inner:  inner,
		sign:   sign,
		store:  store,
		prefix: "fit_",
	}
}

func (c *CachingOracle[S]) Evaluate(ctx context.Context, state S) (float64, error) {
	key := cache.Key(c.prefix, c.sign(state))

	if fitness, ok, err := c.store.Get(key); err == nil && ok {
		return fitness, nil
	}

	fitness, err := c.inner.Evaluate(ctx, state)
	if err != nil {
		return 0, err
	}

	// A write failure only costs a future re-evaluation.
	_ = c.store.Put(key, fitness)
	return fitness, nil
}

// Stats exposes the backing store counters.
func (c *CachingOracle[S]) Stats() cache.Stats {
	return c.store.Stats()
}
