package alignment

import (
	"fmt"
	"math/rand"

	"github.com/phylogeno/subgenome/pkg/search"
	"github.com/phylogeno/subgenome/pkg/utils"
)

// Generator adapts the label alignment problem to the search engine.
// Initial states draw an independent random permutation per run; neighbors
// transpose two labels within one run.
type Generator struct {
	matrix *Matrix
}

// NewGenerator builds a move generator for a run matrix.
func NewGenerator(m *Matrix) *Generator {
	return &Generator{matrix: m}
}

var _ search.Generator[*State] = (*Generator)(nil)

// Initial samples one random column permutation per run from the seeded
// stream.
func (g *Generator) Initial(rng *rand.Rand) (*State, error) {
	perms := make([][]int, g.matrix.Runs())
	for r := range perms {
		perms[r] = rng.Perm(g.matrix.Clusters())
	}
	return &State{perms: perms}, nil
}

// Neighbors enumerates every transposition of two label slots within one
// run, in run order then slot order.
func (g *Generator) Neighbors(s *State) []search.Move[*State] {
	k := g.matrix.Clusters()
	moves := make([]search.Move[*State], 0, g.matrix.Runs()*k*(k-1)/2)
	for r := 0; r < g.matrix.Runs(); r++ {
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				moves = append(moves, transposeMove{
					run: r,
					i:   i,
					j:   j,
					key: fmt.Sprintf("r%04d|c%d+c%d", r, i, j),
				})
			}
		}
	}
	return moves
}

// Signature exposes the canonical state encoding for fitness memoization.
func (g *Generator) Signature(s *State) string {
	return s.signature()
}

// transposeMove swaps the columns mapped onto two label slots of one run.
// Applying the same move twice restores the original state.
type transposeMove struct {
	run  int
	i, j int
	key  string
}

func (m transposeMove) Key() string {
	return m.key
}

func (m transposeMove) Apply(s *State) *State {
	perms := utils.CloneIntMatrix(s.perms)
	perms[m.run][m.i], perms[m.run][m.j] = perms[m.run][m.j], perms[m.run][m.i]
	return &State{perms: perms}
}
