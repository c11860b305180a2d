package search

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/phylogeno/subgenome/pkg/cache"
	"github.com/phylogeno/subgenome/pkg/errors"
	"github.com/phylogeno/subgenome/pkg/logging"
)

// Engine is a generic tabu-search / hillclimbing driver. Tabu search and
// random-restart hillclimbing are one code path parameterized by
// (Tenure, RestartWhenStuck); with Tenure == 0 and restarts enabled the
// engine only accepts strictly improving moves and reinitializes at local
// optima, which is exactly random-restart hillclimbing.
type Engine[S any] struct {
	gen     Generator[S]
	oracle  Oracle[S]
	caching *CachingOracle[S]
	cfg     Config
	rng     *rand.Rand
	tabu    *TabuList
	logger  *logging.Logger
	metrics *Metrics

	initial    *S
	cacheStore cache.Store
}

// Option configures an Engine.
type Option[S any] func(*Engine[S])

// WithLogger overrides the global logger.
func WithLogger[S any](l *logging.Logger) Option[S] {
	return func(e *Engine[S]) {
		e.logger = l
	}
}

// WithMetrics attaches Prometheus counters to the run.
func WithMetrics[S any](m *Metrics) Option[S] {
	return func(e *Engine[S]) {
		e.metrics = m
	}
}

// WithInitialState supplies a starting point instead of a seeded random
// initialization.
func WithInitialState[S any](state S) Option[S] {
	return func(e *Engine[S]) {
		e.initial = &state
	}
}

// WithCacheStore replaces the default in-memory fitness store, e.g. with a
// SQLite-backed one shared across replicate analyses.
func WithCacheStore[S any](store cache.Store) Option[S] {
	return func(e *Engine[S]) {
		e.cacheStore = store
	}
}

// New creates an engine for a problem and an oracle. Configuration errors
// are fatal and reported before any oracle budget is consumed.
func New[S any](gen Generator[S], oracle Oracle[S], cfg Config, opts ...Option[S]) (*Engine[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine[S]{
		gen:    gen,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		tabu:   NewTabuList(),
		logger: logging.GetLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cacheStore == nil {
		e.cacheStore = cache.NewMemoryStore(0)
	}
	e.caching = NewCachingOracle(oracle, gen.Signature, e.cacheStore)
	e.oracle = e.caching

	return e, nil
}

// candidate is one evaluated neighbor of the current state.
type candidate[S any] struct {
	key     string
	state   S
	fitness float64
	failed  bool
}

// Run drives the search to completion and returns the best-ever solution
// together with the full trace. Cancellation is honored at iteration
// boundaries only; the best-so-far solution is always returned.
func (e *Engine[S]) Run(ctx context.Context) (*Result[S], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithRunID(ctx)

	current, err := e.startState()
	if err != nil {
		return nil, err
	}
	currentFitness := math.Inf(1)

	res := &Result[S]{
		Best: Candidate[S]{State: current, Fitness: math.Inf(1)},
	}

	if e.cfg.EvaluateInitial {
		fitness, err := e.oracle.Evaluate(ctx, current)
		res.Evaluations++
		if err != nil {
			res.OracleFailures++
			e.logger.Warn(ctx, "initial state evaluation failed: %v", err)
		} else {
			currentFitness = fitness
			res.Best = Candidate[S]{State: current, Fitness: fitness}
			res.Trace = append(res.Trace, TraceRecord{Iteration: 0, Fitness: fitness, NewBest: true})
			e.logger.Info(ctx, "initial fitness: %g", fitness)
		}
	}

	hillclimb := e.cfg.Tenure == 0 && e.cfg.RestartWhenStuck

	for iter := 1; iter <= e.cfg.MaxIterations; iter++ {
		if err := errors.CheckContext(ctx, "search run"); err != nil {
			e.logger.Warn(ctx, "run canceled at iteration %d, returning best-so-far", iter)
			res.Canceled = true
			break
		}
		ictx := logging.WithIteration(ctx, iter)

		moves := e.gen.Neighbors(current)
		var cands []candidate[S]
		failed := 0
		if len(moves) > 0 {
			cands = e.evaluateNeighbors(ictx, e.sampleMoves(moves), current, res)
			for _, c := range cands {
				if c.failed {
					failed++
				}
			}
		}

		if len(cands) > 0 && failed == len(cands) {
			// Every candidate failed to score. Skip the iteration rather
			// than aborting the run.
			e.logger.Warn(ictx, "all %d candidate evaluations failed, no move committed", failed)
			continue
		}

		chosen := e.selectCandidate(cands, iter, currentFitness, res.Best.Fitness, hillclimb)
		if chosen == nil {
			if hillclimb {
				current, err = e.gen.Initial(e.rng)
				if err != nil {
					return nil, err
				}
				currentFitness = math.Inf(1)
				e.tabu.Reset()
				res.Restarts++
				if e.metrics != nil {
					e.metrics.Restarts.Inc()
				}
				e.logger.Info(ictx, "stuck at local optimum, reinitializing (restart %d)", res.Restarts)
				continue
			}
			e.logger.Warn(ictx, "no admissible move left, terminating early with best-so-far")
			res.Exhausted = true
			break
		}

		current = chosen.state
		currentFitness = chosen.fitness
		e.tabu.Add(chosen.key, iter+e.cfg.Tenure)
		e.tabu.Expire(iter)

		newBest := chosen.fitness < res.Best.Fitness
		if newBest {
			res.Best = Candidate[S]{State: chosen.state, Fitness: chosen.fitness, Iteration: iter}
			if e.metrics != nil {
				e.metrics.NewBest.Inc()
			}
			e.logger.Info(ictx, "new best fitness: %g (move %s)", chosen.fitness, chosen.key)
		} else {
			e.logger.Debug(ictx, "committed move %s, fitness %g (best %g)", chosen.key, chosen.fitness, res.Best.Fitness)
		}
		if e.metrics != nil {
			e.metrics.CommittedMoves.Inc()
		}

		res.Trace = append(res.Trace, TraceRecord{
			Iteration: iter,
			MoveKey:   chosen.key,
			Fitness:   chosen.fitness,
			NewBest:   newBest,
		})
	}

	res.CacheStats = e.caching.Stats()
	e.logger.Info(ctx, "run finished: best fitness %g (iteration %d), %d evaluations, %d restarts",
		res.Best.Fitness, res.Best.Iteration, res.Evaluations, res.Restarts)
	return res, nil
}

func (e *Engine[S]) startState() (S, error) {
	if e.initial != nil {
		return *e.initial, nil
	}
	return e.gen.Initial(e.rng)
}

// sampleMoves draws the configured number of neighbors without replacement
// from the seeded stream. The full neighborhood passes through untouched,
// consuming no randomness.
func (e *Engine[S]) sampleMoves(moves []Move[S]) []Move[S] {
	if e.cfg.SampleSize == Unbounded || e.cfg.SampleSize >= len(moves) {
		return moves
	}

	perm := e.rng.Perm(len(moves))
	sampled := make([]Move[S], e.cfg.SampleSize)
	for i := 0; i < e.cfg.SampleSize; i++ {
		sampled[i] = moves[perm[i]]
	}
	return sampled
}

// evaluateNeighbors scores the sampled moves, optionally in parallel, and
// returns candidates sorted by canonical move key. The sort re-establishes
// a deterministic order before selection, so neither sampling order nor
// parallel completion order can influence which move is chosen.
func (e *Engine[S]) evaluateNeighbors(ctx context.Context, moves []Move[S], current S, res *Result[S]) []candidate[S] {
	cands := make([]candidate[S], len(moves))
	for i, m := range moves {
		cands[i] = candidate[S]{key: m.Key(), state: m.Apply(current)}
	}

	score := func(i int) {
		fitness, err := e.oracle.Evaluate(ctx, cands[i].state)
		if err != nil {
			cands[i].fitness = math.Inf(1)
			cands[i].failed = true
			e.logger.Debug(ctx, "candidate %s failed to evaluate: %v", cands[i].key, err)
			return
		}
		cands[i].fitness = fitness
	}

	if e.cfg.MaxGoroutines > 1 {
		p := pool.New().WithMaxGoroutines(e.cfg.MaxGoroutines)
		for i := range cands {
			i := i // per-iteration copy; required while go.mod targets go < 1.22
			p.Go(func() { score(i) })
		}
		p.Wait()
	} else {
		for i := range cands {
			score(i)
		}
	}

	res.Evaluations += len(cands)
	if e.metrics != nil {
		e.metrics.Evaluations.Add(float64(len(cands)))
	}
	for _, c := range cands {
		if c.failed {
			res.OracleFailures++
			if e.metrics != nil {
				e.metrics.OracleFailures.Inc()
			}
		}
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].key < cands[j].key })
	return cands
}

// selectCandidate picks the admissible candidate with the lowest fitness.
// Exact ties break on the lexicographically smallest canonical move key,
// which the pre-sorted candidate order provides. A tabu move is admitted
// when it would yield a new global best (aspiration criterion). In
// hillclimb mode only strictly improving moves are admissible.
func (e *Engine[S]) selectCandidate(cands []candidate[S], iter int, currentFitness, bestFitness float64, hillclimb bool) *candidate[S] {
	var chosen *candidate[S]
	for i := range cands {
		c := &cands[i]
		if c.failed {
			continue
		}
		if hillclimb && c.fitness >= currentFitness {
			continue
		}
		if e.tabu.Forbidden(c.key, iter) && !(c.fitness < bestFitness) {
			continue
		}
		if chosen == nil || c.fitness < chosen.fitness {
			chosen = c
		}
	}
	return chosen
}
