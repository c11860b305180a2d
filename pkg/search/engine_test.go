package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// stepMove shifts an int state by a fixed delta.
type stepMove struct {
	key   string
	delta int
}

func (m stepMove) Key() string     { return m.key }
func (m stepMove) Apply(x int) int { return x + m.delta }

// lineGen explores the integer interval [min, max] with fixed step deltas.
type lineGen struct {
	min, max int
	deltas   []int
	start    int
	random   bool
}

func (g lineGen) Initial(rng *rand.Rand) (int, error) {
	if g.random {
		return g.min + rng.Intn(g.max-g.min+1), nil
	}
	return g.start, nil
}

func (g lineGen) Neighbors(x int) []Move[int] {
	var moves []Move[int]
	for _, d := range g.deltas {
		if x+d >= g.min && x+d <= g.max {
			moves = append(moves, stepMove{key: fmt.Sprintf("d%+d", d), delta: d})
		}
	}
	return moves
}

func (g lineGen) Signature(x int) string { return strconv.Itoa(x) }

// toggleGen has exactly two states and one move between them.
type toggleGen struct{}

type flipMove struct{}

func (flipMove) Key() string     { return "flip" }
func (flipMove) Apply(x int) int { return 1 - x }

func (toggleGen) Initial(*rand.Rand) (int, error) { return 0, nil }
func (toggleGen) Neighbors(int) []Move[int]       { return []Move[int]{flipMove{}} }
func (toggleGen) Signature(x int) string          { return strconv.Itoa(x) }

// ladderGen only ever moves up, under a single recurring move key.
type ladderGen struct{ max int }

func (g ladderGen) Initial(*rand.Rand) (int, error) { return 0, nil }
func (g ladderGen) Neighbors(x int) []Move[int] {
	if x >= g.max {
		return nil
	}
	return []Move[int]{stepMove{key: "inc", delta: 1}}
}
func (g ladderGen) Signature(x int) string { return strconv.Itoa(x) }

func distanceTo(target int) func(int) float64 {
	return func(x int) float64 { return math.Abs(float64(x - target)) }
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	_, err := New[int](toggleGen{}, &StubOracle[int]{ScoreFn: distanceTo(0)}, cfg)
	assert.Equal(t, errors.InvalidConfig, errors.CodeOf(err))
}

func TestRunIsSeedDeterministic(t *testing.T) {
	gen := lineGen{min: 0, max: 100, deltas: []int{-3, -2, -1, 1, 2, 3}, random: true}
	score := func(x int) float64 { return float64((x * 37) % 101) }

	cfg := DefaultConfig()
	cfg.Tenure = 2
	cfg.SampleSize = 3
	cfg.MaxIterations = 30
	cfg.Seed = 99

	run := func() *Result[int] {
		e, err := New[int](gen, &StubOracle[int]{ScoreFn: score}, cfg)
		require.NoError(t, err)
		res, err := e.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	r1, r2 := run(), run()
	assert.Equal(t, r1.Best, r2.Best)
	assert.Equal(t, r1.Trace, r2.Trace)

	j1, err := json.Marshal(r1.Trace)
	require.NoError(t, err)
	j2, err := json.Marshal(r2.Trace)
	require.NoError(t, err)
	assert.Equal(t, j1, j2)
}

func TestParallelEvaluationMatchesSerial(t *testing.T) {
	gen := lineGen{min: 0, max: 100, deltas: []int{-3, -2, -1, 1, 2, 3}, random: true}
	score := func(x int) float64 { return float64((x * 37) % 101) }

	cfg := DefaultConfig()
	cfg.Tenure = 2
	cfg.SampleSize = 4
	cfg.MaxIterations = 25
	cfg.Seed = 7

	run := func(goroutines int) *Result[int] {
		c := cfg
		c.MaxGoroutines = goroutines
		e, err := New[int](gen, &StubOracle[int]{ScoreFn: score}, c)
		require.NoError(t, err)
		res, err := e.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	serial, parallel := run(1), run(4)
	assert.Equal(t, serial.Best, parallel.Best)
	assert.Equal(t, serial.Trace, parallel.Trace)
}

func TestHillclimbRestartsAtLocalOptima(t *testing.T) {
	gen := lineGen{min: 0, max: 6, deltas: []int{-1, 1}, random: true}

	cfg := DefaultConfig()
	cfg.Tenure = 0
	cfg.RestartWhenStuck = true
	cfg.MaxIterations = 30
	cfg.Seed = 5

	e, err := New[int](gen, &StubOracle[int]{ScoreFn: distanceTo(3)}, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Best.State)
	assert.Zero(t, res.Best.Fitness)
	assert.GreaterOrEqual(t, res.Restarts, 2)
	assert.False(t, res.Exhausted)
}

func TestAspirationAdmitsTabuImprovements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tenure = 5
	cfg.MaxIterations = 50

	e, err := New[int](ladderGen{max: 15}, &StubOracle[int]{ScoreFn: distanceTo(10)}, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	// The single move key is continuously tabu after the first commit, so
	// reaching the optimum requires the aspiration criterion every step.
	assert.Equal(t, 10, res.Best.State)
	assert.Zero(t, res.Best.Fitness)
	assert.Len(t, res.Trace, 10)
	assert.True(t, res.Exhausted)
}

func TestExhaustionWithoutRestarts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tenure = 3
	cfg.MaxIterations = 20

	e, err := New[int](toggleGen{}, &StubOracle[int]{ScoreFn: distanceTo(1)}, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Exhausted)
	assert.Len(t, res.Trace, 1)
	assert.Equal(t, 1, res.Best.State)
	assert.Zero(t, res.Best.Fitness)
}

func TestFailedCandidatesAreSkipped(t *testing.T) {
	gen := lineGen{min: 0, max: 20, deltas: []int{-1, 1}, start: 15}
	oracle := &StubOracle[int]{
		ScoreFn: distanceTo(10),
		FailFn:  func(x int) bool { return x == 9 },
	}

	cfg := DefaultConfig()
	cfg.MaxIterations = 20

	e, err := New[int](gen, oracle, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, res.Best.State)
	assert.Greater(t, res.OracleFailures, 0)
	for _, rec := range res.Trace {
		assert.False(t, math.IsInf(rec.Fitness, 1), "failed candidate committed at iteration %d", rec.Iteration)
	}
}

func TestAllFailedIterationsContinue(t *testing.T) {
	oracle := &StubOracle[int]{
		ScoreFn: distanceTo(0),
		FailFn:  func(int) bool { return true },
	}

	cfg := DefaultConfig()
	cfg.MaxIterations = 5

	e, err := New[int](toggleGen{}, oracle, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Trace)
	assert.True(t, math.IsInf(res.Best.Fitness, 1))
	assert.Equal(t, res.Evaluations, res.OracleFailures)
	assert.Equal(t, 5, res.Evaluations)
	assert.False(t, res.Exhausted)
}

func TestSampleSizeCapsEvaluations(t *testing.T) {
	gen := lineGen{min: 0, max: 1000, deltas: []int{-3, -2, -1, 1, 2, 3}, start: 500}

	cfg := DefaultConfig()
	cfg.Tenure = 0
	cfg.SampleSize = 2
	cfg.MaxIterations = 10

	e, err := New[int](gen, &StubOracle[int]{ScoreFn: distanceTo(0)}, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, res.Evaluations)
}

func TestFitnessMemoization(t *testing.T) {
	oracle := &StubOracle[int]{ScoreFn: distanceTo(1)}

	cfg := DefaultConfig()
	cfg.Tenure = 0
	cfg.MaxIterations = 20

	e, err := New[int](toggleGen{}, oracle, cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	// The run oscillates between the two states; only the first visit of
	// each reaches the inner oracle.
	assert.Equal(t, int64(2), oracle.Calls())
	assert.Equal(t, 20, res.Evaluations)
	assert.Equal(t, int64(18), res.CacheStats.Hits)
	assert.Equal(t, int64(2), res.CacheStats.Misses)
}

func TestCancellationReturnsBestSoFar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := New[int](toggleGen{}, &StubOracle[int]{ScoreFn: distanceTo(1)}, DefaultConfig())
	require.NoError(t, err)
	res, err := e.Run(ctx)
	require.NoError(t, err)

	assert.True(t, res.Canceled)
	assert.Empty(t, res.Trace)
}

func TestInitialStateEvaluation(t *testing.T) {
	gen := lineGen{min: 0, max: 100, deltas: []int{-1, 1}}

	cfg := DefaultConfig()
	cfg.MaxIterations = 5
	cfg.EvaluateInitial = true

	e, err := New[int](gen, &StubOracle[int]{ScoreFn: distanceTo(40)}, cfg, WithInitialState[int](42))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, res.Trace)
	first := res.Trace[0]
	assert.Equal(t, 0, first.Iteration)
	assert.Empty(t, first.MoveKey)
	assert.Equal(t, 2.0, first.Fitness)
	assert.True(t, first.NewBest)
	assert.Equal(t, 40, res.Best.State)
}

func TestMetricsCounters(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	gen := lineGen{min: 0, max: 20, deltas: []int{-1, 1}, start: 15}

	cfg := DefaultConfig()
	cfg.MaxIterations = 10

	e, err := New[int](gen, &StubOracle[int]{ScoreFn: distanceTo(10)}, cfg, WithMetrics[int](metrics))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(res.Evaluations), testutil.ToFloat64(metrics.Evaluations))
	assert.Equal(t, float64(len(res.Trace)), testutil.ToFloat64(metrics.CommittedMoves))
	assert.Greater(t, testutil.ToFloat64(metrics.NewBest), 0.0)
}
