package alignment

import (
	"strconv"
	"strings"

	"github.com/phylogeno/subgenome/pkg/utils"
)

// State holds one column permutation per run. perms[r][c] is the source
// column of run r mapped onto canonical label c. States are immutable once
// published; moves return fresh copies.
type State struct {
	perms [][]int
}

// NewState wraps per-run permutations, taking ownership of the slices.
func NewState(perms [][]int) *State {
	return &State{perms: perms}
}

// IdentityState maps every run's columns onto themselves.
func IdentityState(runs, clusters int) *State {
	perms := make([][]int, runs)
	for r := range perms {
		perm := make([]int, clusters)
		for c := range perm {
			perm[c] = c
		}
		perms[r] = perm
	}
	return &State{perms: perms}
}

// Perms returns a defensive copy of the permutations.
func (s *State) Perms() [][]int {
	return utils.CloneIntMatrix(s.perms)
}

// Normalize applies the uniform relabeling that turns the last run's
// permutation into the identity. The objective is invariant under uniform
// relabelings, so every optimum has exactly one normalized form; anchoring
// on the last run makes run outputs comparable across analyses.
func (s *State) Normalize() *State {
	last := s.perms[len(s.perms)-1]
	inverse := make([]int, len(last))
	for c, src := range last {
		inverse[src] = c
	}

	perms := make([][]int, len(s.perms))
	for r, perm := range s.perms {
		relabeled := make([]int, len(perm))
		for c := range relabeled {
			relabeled[c] = perm[inverse[c]]
		}
		perms[r] = relabeled
	}
	return &State{perms: perms}
}

// signature renders the permutations as a canonical string for fitness
// memoization.
func (s *State) signature() string {
	var b strings.Builder
	for r, perm := range s.perms {
		if r > 0 {
			b.WriteByte(';')
		}
		for c, src := range perm {
			if c > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(src))
		}
	}
	return b.String()
}
