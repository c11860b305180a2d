package partition

import (
	"fmt"
	"math/rand"

	"github.com/phylogeno/subgenome/pkg/search"
	"github.com/phylogeno/subgenome/pkg/utils"
)

// Generator adapts a Problem to the search engine. Initial states draw the
// bin of each allele from a pool holding every bin id once per subgenome
// copy, so bin capacities hold by construction; neighbors swap two alleles
// of one block between different bins.
type Generator struct {
	problem *Problem
}

// NewGenerator builds a move generator for a validated problem.
func NewGenerator(p *Problem) *Generator {
	return &Generator{problem: p}
}

var _ search.Generator[*State] = (*Generator)(nil)

// Initial samples a random capacity-respecting assignment. Each block draws
// its bins without replacement from the pool {0 x size, 1 x size, ...}, one
// slot per chromosome copy, using only the supplied stream.
func (g *Generator) Initial(rng *rand.Rand) (*State, error) {
	pool := make([]int, 0, g.problem.Ploidy)
	for bin := 0; bin < g.problem.BinCount(); bin++ {
		for c := 0; c < g.problem.SubgenomeSize; c++ {
			pool = append(pool, bin)
		}
	}

	bins := make([][]int, len(g.problem.blocks))
	for b, block := range g.problem.blocks {
		perm := rng.Perm(len(pool))
		assigned := make([]int, len(block.Alleles))
		for i := range block.Alleles {
			assigned[i] = pool[perm[i]]
		}
		bins[b] = assigned
	}
	return &State{bins: bins}, nil
}

// Neighbors enumerates every swap of two alleles sitting in different bins
// of the same block. Swaps within a bin are identity moves and are not
// generated. The order is deterministic in the canonical block order.
func (g *Generator) Neighbors(s *State) []search.Move[*State] {
	var moves []search.Move[*State]
	for b, block := range g.problem.blocks {
		for i := 0; i < len(block.Alleles); i++ {
			for j := i + 1; j < len(block.Alleles); j++ {
				if s.bins[b][i] == s.bins[b][j] {
					continue
				}
				moves = append(moves, swapMove{
					block:  b,
					i:      i,
					j:      j,
					key:    swapKey(block, i, j),
					target: g.problem,
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

// swapKey names a swap by its block and the two allele labels involved,
// which are already in lexical order within the block. The key identifies
// the move independently of the state it is applied to.
func swapKey(block Block, i, j int) string {
	return fmt.Sprintf("%s|m%04d|%s+%s", block.AccessionID, block.Marker, block.Alleles[i], block.Alleles[j])
}

// swapMove exchanges the bins of two alleles in one block. Applying the
// same move twice restores the original state.
type swapMove struct {
	block  int
	i, j   int
	key    string
	target *Problem
}

func (m swapMove) Key() string {
	return m.key
}

func (m swapMove) Apply(s *State) *State {
	bins := utils.CloneIntMatrix(s.bins)
	bins[m.block][m.i], bins[m.block][m.j] = bins[m.block][m.j], bins[m.block][m.i]
	return &State{bins: bins}
}
