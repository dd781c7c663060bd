package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHasher_SignatureLength(t *testing.T) {
	for _, n := range []int{1, 16, 64, 128} {
		hasher := testHasher(n, 7)
		assert.Equal(t, n, hasher.NumPerm())
		assert.Len(t, hasher.SignatureOf("some words here"), n)
	}
}

func TestMinHasher_EmptyInput(t *testing.T) {
	hasher := testHasher(32, 7)

	for _, text := range []string{"", "   ", "\t\n"} {
		sig := hasher.SignatureOf(text)
		require.Len(t, sig, 32)
		for i, v := range sig {
			assert.Equal(t, uint32(math.MaxUint32), v, "position %d", i)
		}
	}
}

func TestMinHasher_KnownSignature(t *testing.T) {
	hasher := testHasher(64, 5)
	sig := hasher.SignatureOf("the cat sat")

	assert.Equal(t, Signature{724820479, 709643905, 864361260, 268618854}, sig[:4])
}

func TestMinHasher_OrderAndRepetitionInsensitive(t *testing.T) {
	hasher := testHasher(64, 11)

	base := hasher.SignatureOf("alpha beta gamma")
	assert.True(t, base.Equal(hasher.SignatureOf("gamma alpha beta")))
	assert.True(t, base.Equal(hasher.SignatureOf("beta beta alpha gamma alpha")))
	assert.True(t, base.Equal(hasher.SignatureOf("  alpha\tbeta\ngamma ")))
}

func TestMinHasher_SignatureIsElementwiseMin(t *testing.T) {
	hasher := testHasher(64, 3)

	a := hasher.ComputeSignature([]string{"x", "y"})
	b := hasher.ComputeSignature([]string{"z"})
	union := hasher.ComputeSignature([]string{"x", "y", "z"})

	for i := range union {
		assert.Equal(t, min(a[i], b[i]), union[i])
	}
}

func TestMinHasher_SharedPermutations(t *testing.T) {
	perms, err := NewSeededPermutationSet(32, 99)
	require.NoError(t, err)

	h1 := NewMinHasher(perms)
	h2 := NewMinHasher(perms)

	assert.Same(t, perms, h1.Permutations())
	assert.True(t, h1.SignatureOf("one two three").Equal(h2.SignatureOf("one two three")))
}

func TestSignature_Equal(t *testing.T) {
	assert.True(t, Signature{1, 2, 3}.Equal(Signature{1, 2, 3}))
	assert.False(t, Signature{1, 2, 3}.Equal(Signature{1, 2, 4}))
	assert.False(t, Signature{1, 2}.Equal(Signature{1, 2, 3}))
	assert.True(t, Signature{}.Equal(nil))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"the cat sat", []string{"the", "cat", "sat"}},
		{"  padded   words  ", []string{"padded", "words"}},
		{"tabs\tand\nnewlines", []string{"tabs", "and", "newlines"}},
		{"Case Matters case", []string{"Case", "Matters", "case"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}

	assert.Empty(t, Tokenize(""))
}

func TestHash64(t *testing.T) {
	// 64-bit FNV-1a reference value
	assert.Equal(t, uint64(0xa430d84680aabd0b), hash64("hello"))
	assert.Equal(t, uint64(14695981039346656037), hash64(""))
}
