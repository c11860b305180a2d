package partition

import (
	"strconv"
	"strings"

	"github.com/phylogeno/subgenome/pkg/utils"
)

// State assigns every allele of every block to a subgenome bin. bins[b][i]
// is the bin of the i-th allele of block b, indexed in the problem's
// canonical block order. States are immutable once published; moves return
// fresh copies.
type State struct {
	bins [][]int
}

// NewState wraps a bin assignment, taking ownership of the slices.
func NewState(bins [][]int) *State {
	return &State{bins: bins}
}

// Bins returns a defensive copy of the assignment.
func (s *State) Bins() [][]int {
	return utils.CloneIntMatrix(s.bins)
}

// Bin returns the bin of allele i in block b.
func (s *State) Bin(b, i int) int {
	return s.bins[b][i]
}

// signature renders the assignment as a canonical string. Two states with
// identical assignments always produce identical signatures, so it doubles
// as the fitness cache key material.
func (s *State) signature() string {
	var b strings.Builder
	for bi, bins := range s.bins {
		if bi > 0 {
			b.WriteByte(';')
		}
		for i, bin := range bins {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(bin))
		}
	}
	return b.String()
}
