package analyzer

import (
	"hash/fnv"
	"math"
	"strings"
)

// Signature is a MinHash fingerprint: one minimum permuted hash per permutation
type Signature []uint32

// Equal reports whether both signatures hold the same values in the same positions
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// MinHasher computes signatures against a fixed permutation set
type MinHasher struct {
	perms *PermutationSet
}

// NewMinHasher creates a MinHasher bound to perms
func NewMinHasher(perms *PermutationSet) *MinHasher {
	return &MinHasher{perms: perms}
}

// NumPerm returns the signature length produced by this hasher
func (m *MinHasher) NumPerm() int { return m.perms.Len() }

// Permutations returns the shared permutation set
func (m *MinHasher) Permutations() *PermutationSet { return m.perms }

// ComputeSignature computes the MinHash signature for a token sequence.
// Order and repetition of tokens do not affect the result; an empty
// sequence yields an all-MaxUint32 signature.
func (m *MinHasher) ComputeSignature(tokens []string) Signature {
	sig := make(Signature, m.perms.Len())
	for i := range sig {
		sig[i] = math.MaxUint32
	}

	for _, tok := range tokens {
		h := hash64(tok)
		for i, p := range m.perms.perms {
			if v := p.Apply(h); v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}

// SignatureOf tokenizes text and computes its signature
func (m *MinHasher) SignatureOf(text string) Signature {
	return m.ComputeSignature(Tokenize(text))
}

// Tokenize splits text into whitespace-separated words
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Utilities

func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
