package analyzer

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidPermutationCount is returned when a permutation set of non-positive size is requested
var ErrInvalidPermutationCount = errors.New("num_perm must be positive")

// RandomSource supplies the 64-bit draws used to build permutation coefficients.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Uint64() uint64
}

// Permutation is an affine hash (a*x + b) over the 64-bit hash space
type Permutation struct {
	A uint64
	B uint64
}

// Apply maps a base token hash to its 32-bit permuted value.
// The multiply-add wraps mod 2^64 and the upper 32 bits are kept.
func (p Permutation) Apply(hash uint64) uint32 {
	return uint32((p.A*hash + p.B) >> 32)
}

// PermutationSet is the ordered, read-only list of permutations shared by
// every signature of one index.
type PermutationSet struct {
	perms []Permutation
}

// NewPermutationSet draws numPerm (a, b) pairs from src, a before b, in position order
func NewPermutationSet(numPerm int, src RandomSource) (*PermutationSet, error) {
	if numPerm <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPermutationCount, numPerm)
	}
	if src == nil {
		return nil, errors.New("random source cannot be nil")
	}

	perms := make([]Permutation, numPerm)
	for i := range perms {
		a := src.Uint64()
		b := src.Uint64()
		perms[i] = Permutation{A: a, B: b}
	}
	return &PermutationSet{perms: perms}, nil
}

// NewSeededPermutationSet builds a reproducible permutation set from seed
func NewSeededPermutationSet(numPerm int, seed uint64) (*PermutationSet, error) {
	return NewPermutationSet(numPerm, NewSeededSource(seed))
}

// NewRandomPermutationSet builds a permutation set from a freshly seeded generator.
// Two calls almost surely produce different sets.
func NewRandomPermutationSet(numPerm int) (*PermutationSet, error) {
	return NewPermutationSet(numPerm, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewSeededSource returns a deterministic PCG generator for seed
func NewSeededSource(seed uint64) RandomSource {
	// Second PCG word is derived so that a single user-facing seed is enough.
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Len returns the number of permutations (num_perm)
func (ps *PermutationSet) Len() int {
	return len(ps.perms)
}

// At returns the permutation at position i
func (ps *PermutationSet) At(i int) Permutation {
	return ps.perms[i]
}
