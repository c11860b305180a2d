package alignment

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phylogeno/subgenome/pkg/errors"
	"github.com/phylogeno/subgenome/pkg/search"
)

// mirroredRuns is four replicate runs of the same two-individual, two-label
// clustering where the first two runs use swapped labels.
func mirroredRuns(t *testing.T) *Matrix {
	t.Helper()
	m, err := NewMatrix([][][]float64{
		{{0, 1}, {1, 0}},
		{{0, 1}, {1, 0}},
		{{1, 0}, {0, 1}},
		{{1, 0}, {0, 1}},
	})
	require.NoError(t, err)
	return m
}

func TestNewMatrixValidation(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		_, err := NewMatrix(nil)
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
	})

	t.Run("rejects ragged runs", func(t *testing.T) {
		_, err := NewMatrix([][][]float64{
			{{1, 0}, {0, 1}},
			{{1, 0}},
		})
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := NewMatrix([][][]float64{
			{{1, 0}, {0, 1, 0}},
		})
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
	})
}

func TestParseIndfile(t *testing.T) {
	input := strings.Join([]string{
		"1 1 (x) 1 : 0 1",
		"2 2 (x) 1 : 1 0",
		"",
		"1 1 (x) 1 : 1 0",
		"2 2 (x) 1 : 0 1",
		"",
	}, "\n")

	m, err := ParseIndfile(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Runs())
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 2, m.Clusters())
	assert.Equal(t, 1.0, m.At(0, 0, 1))
	assert.Equal(t, 1.0, m.At(1, 0, 0))

	t.Run("rows without prefix parse too", func(t *testing.T) {
		m, err := ParseIndfile(strings.NewReader("0.25 0.75\n0.5 0.5\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, m.Runs())
		assert.Equal(t, 0.75, m.At(0, 0, 1))
	})

	t.Run("malformed value", func(t *testing.T) {
		_, err := ParseIndfile(strings.NewReader("1 1 (x) 1 : zero one\n"))
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseIndfile(strings.NewReader("\n\n"))
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
	})
}

func TestEntropyOracle(t *testing.T) {
	m := mirroredRuns(t)
	oracle := NewEntropyOracle(m, Natural)

	t.Run("aligned runs score zero", func(t *testing.T) {
		aligned := NewState([][]int{{1, 0}, {1, 0}, {0, 1}, {0, 1}})
		fitness, err := oracle.Evaluate(context.Background(), aligned)
		require.NoError(t, err)
		assert.Zero(t, fitness)
	})

	t.Run("misaligned runs score positive", func(t *testing.T) {
		fitness, err := oracle.Evaluate(context.Background(), IdentityState(4, 2))
		require.NoError(t, err)
		assert.InDelta(t, 2*math.Ln2, fitness, 1e-12)
	})

	t.Run("binary base rescales", func(t *testing.T) {
		bits := NewEntropyOracle(m, Binary)
		fitness, err := bits.Evaluate(context.Background(), IdentityState(4, 2))
		require.NoError(t, err)
		assert.InDelta(t, 2.0, fitness, 1e-12)
	})

	t.Run("coefficient is the row mean", func(t *testing.T) {
		coeff, err := oracle.Coefficient(IdentityState(4, 2))
		require.NoError(t, err)
		assert.InDelta(t, math.Ln2, coeff, 1e-12)
	})

	t.Run("run count mismatch", func(t *testing.T) {
		_, err := oracle.Evaluate(context.Background(), IdentityState(2, 2))
		assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
	})
}

func TestNormalize(t *testing.T) {
	m := mirroredRuns(t)
	oracle := NewEntropyOracle(m, Natural)

	// Both zero-entropy optima differ by a uniform relabeling.
	optimumA := NewState([][]int{{1, 0}, {1, 0}, {0, 1}, {0, 1}})
	optimumB := NewState([][]int{{0, 1}, {0, 1}, {1, 0}, {1, 0}})

	t.Run("anchors the last run to identity", func(t *testing.T) {
		want := [][]int{{1, 0}, {1, 0}, {0, 1}, {0, 1}}
		assert.Equal(t, want, optimumA.Normalize().Perms())
		assert.Equal(t, want, optimumB.Normalize().Perms())
	})

	t.Run("preserves the objective", func(t *testing.T) {
		for _, s := range []*State{optimumA, optimumB, IdentityState(4, 2)} {
			before, err := oracle.Evaluate(context.Background(), s)
			require.NoError(t, err)
			after, err := oracle.Evaluate(context.Background(), s.Normalize())
			require.NoError(t, err)
			assert.Equal(t, before, after)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		once := optimumB.Normalize()
		assert.Equal(t, once.Perms(), once.Normalize().Perms())
	})
}

func TestGeneratorMoves(t *testing.T) {
	m := mirroredRuns(t)
	gen := NewGenerator(m)
	s := IdentityState(4, 2)

	moves := gen.Neighbors(s)
	require.Len(t, moves, 4)

	t.Run("transposition is its own inverse", func(t *testing.T) {
		for _, mv := range moves {
			next := mv.Apply(s)
			assert.NotEqual(t, gen.Signature(s), gen.Signature(next))
			assert.Equal(t, gen.Signature(s), gen.Signature(mv.Apply(next)))
		}
	})

	t.Run("initial is seed deterministic", func(t *testing.T) {
		s1, err := gen.Initial(rand.New(rand.NewSource(7)))
		require.NoError(t, err)
		s2, err := gen.Initial(rand.New(rand.NewSource(7)))
		require.NoError(t, err)
		assert.Equal(t, s1.Perms(), s2.Perms())
	})
}

func TestTabuSearchRecoversMirroredAlignment(t *testing.T) {
	m := mirroredRuns(t)
	gen := NewGenerator(m)
	oracle := NewEntropyOracle(m, Natural)

	cfg := search.DefaultConfig()
	cfg.Tenure = 2
	cfg.MaxIterations = 50
	cfg.Seed = 1
	cfg.EvaluateInitial = true

	engine, err := search.New[*State](gen, oracle, cfg)
	require.NoError(t, err)
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.Best.Fitness)
	assert.Equal(t, [][]int{{1, 0}, {1, 0}, {0, 1}, {0, 1}}, res.Best.State.Normalize().Perms())
}

func TestExactAligner(t *testing.T) {
	m := mirroredRuns(t)

	t.Run("finds the optimum", func(t *testing.T) {
		aligner := NewExactAligner(m, Natural)
		best, fitness, err := aligner.Align(context.Background())
		require.NoError(t, err)
		assert.Zero(t, fitness)
		assert.Equal(t, [][]int{{1, 0}, {1, 0}, {0, 1}, {0, 1}}, best.Normalize().Perms())
	})

	t.Run("refuses oversized instances", func(t *testing.T) {
		aligner := NewExactAligner(m, Natural)
		aligner.MaxStates = 4
		_, _, err := aligner.Align(context.Background())
		assert.Equal(t, errors.InstanceTooLarge, errors.CodeOf(err))
	})
}

func TestWriters(t *testing.T) {
	m := mirroredRuns(t)
	aligned := NewState([][]int{{1, 0}, {1, 0}, {0, 1}, {0, 1}})

	t.Run("permutations are 1-based and tab separated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WritePermutations(&buf, aligned))
		assert.Equal(t, "2\t1\n2\t1\n1\t2\n1\t2\n", buf.String())
	})

	t.Run("summary reports total and mean entropy", func(t *testing.T) {
		var buf bytes.Buffer
		oracle := NewEntropyOracle(m, Natural)
		require.NoError(t, WriteSummary(&buf, oracle, IdentityState(4, 2)))
		assert.Equal(t, "total entropy: 1.386294\nmean row entropy: 0.693147\n", buf.String())
	})

	t.Run("clustering averages the aligned runs", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteClustering(&buf, m, aligned))
		assert.Equal(t, "1 1 (x) 1 : 1.000000 0.000000\n2 2 (x) 1 : 0.000000 1.000000\n", buf.String())
	})
}
