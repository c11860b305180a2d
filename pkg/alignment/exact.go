package alignment

import (
	"context"
	"math"

	"github.com/phylogeno/subgenome/pkg/errors"
	"github.com/phylogeno/subgenome/pkg/utils"
)

// ExactAligner enumerates every label assignment with the first run pinned
// to the identity and returns the global optimum. The search space has
// clusters!^(runs-1) states, so exact alignment is only viable for small
// replicate counts; Align refuses instances past MaxStates.
type ExactAligner struct {
	matrix *Matrix
	oracle *EntropyOracle

	// MaxStates bounds the enumerated combinations. Zero uses the default.
	MaxStates int
}

const defaultMaxStates = 10_000_000

// NewExactAligner builds an exhaustive aligner for a run matrix.
func NewExactAligner(m *Matrix, base LogBase) *ExactAligner {
	return &ExactAligner{matrix: m, oracle: NewEntropyOracle(m, base)}
}

// Align returns the optimal alignment and its entropy. Ties between equal
// optima break toward the first assignment in enumeration order, which is
// deterministic.
func (a *ExactAligner) Align(ctx context.Context) (*State, float64, error) {
	limit := a.MaxStates
	if limit <= 0 {
		limit = defaultMaxStates
	}

	k := a.matrix.Clusters()
	free := a.matrix.Runs() - 1
	states := 1
	for r := 0; r < free; r++ {
		states *= utils.Factorial(k)
		if states > limit || states <= 0 {
			return nil, 0, errors.WithFields(
				errors.New(errors.InstanceTooLarge, "exact alignment space too large"),
				errors.Fields{"runs": a.matrix.Runs(), "clusters": k, "limit": limit},
			)
		}
	}

	perms := permutations(k)
	indices := make([]int, free)
	current := IdentityState(a.matrix.Runs(), k)

	var best *State
	bestFitness := math.Inf(1)
	for {
		if err := errors.CheckContext(ctx, "exact alignment"); err != nil {
			return nil, 0, err
		}

		for r, pi := range indices {
			current.perms[r+1] = perms[pi]
		}
		fitness, err := a.oracle.Evaluate(ctx, current)
		if err != nil {
			return nil, 0, err
		}
		if fitness < bestFitness {
			bestFitness = fitness
			best = NewState(utils.CloneIntMatrix(current.perms))
		}

		carry := free - 1
		for carry >= 0 {
			indices[carry]++
			if indices[carry] < len(perms) {
				break
			}
			indices[carry] = 0
			carry--
		}
		if carry < 0 {
			break
		}
	}
	return best, bestFitness, nil
}

// permutations lists all orderings of 0..n-1 in lexicographic order.
func permutations(n int) [][]int {
	base := make([]int, n)
	for i := range base {
		base[i] = i
	}

	var out [][]int
	var build func(prefix []int, rest []int)
	build = func(prefix []int, rest []int) {
		if len(rest) == 0 {
			out = append(out, utils.CloneInts(prefix))
			return
		}
		for i, v := range rest {
			next := make([]int, 0, len(rest)-1)
			next = append(next, rest[:i]...)
			next = append(next, rest[i+1:]...)
			build(append(prefix, v), next)
		}
	}
	build(make([]int, 0, n), base)
	return out
}
