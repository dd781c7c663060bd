package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPermutationSet(t *testing.T) {
	perms, err := NewPermutationSet(4, &countingSource{})
	require.NoError(t, err)

	assert.Equal(t, 4, perms.Len())
	// a is drawn before b, position by position
	assert.Equal(t, Permutation{A: 1, B: 2}, perms.At(0))
	assert.Equal(t, Permutation{A: 3, B: 4}, perms.At(1))
	assert.Equal(t, Permutation{A: 7, B: 8}, perms.At(3))
}

func TestNewPermutationSet_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewPermutationSet(n, &countingSource{})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPermutationCount))
	}
}

func TestNewPermutationSet_NilSource(t *testing.T) {
	_, err := NewPermutationSet(8, nil)
	assert.Error(t, err)
}

func TestNewSeededPermutationSet(t *testing.T) {
	p1, err := NewSeededPermutationSet(64, 42)
	require.NoError(t, err)
	p2, err := NewSeededPermutationSet(64, 42)
	require.NoError(t, err)
	p3, err := NewSeededPermutationSet(64, 43)
	require.NoError(t, err)

	// Same seed should produce same permutations
	for i := 0; i < 64; i++ {
		assert.Equal(t, p1.At(i), p2.At(i))
	}

	differs := false
	for i := 0; i < 64; i++ {
		if p1.At(i) != p3.At(i) {
			differs = true
			break
		}
	}
	assert.True(t, differs, "Different seeds produced identical permutations (very unlikely)")
}

func TestNewRandomPermutationSet(t *testing.T) {
	p1, err := NewRandomPermutationSet(16)
	require.NoError(t, err)
	p2, err := NewRandomPermutationSet(16)
	require.NoError(t, err)

	assert.Equal(t, 16, p1.Len())
	assert.NotEqual(t, p1.At(0), p2.At(0))
}

func TestPermutationApply(t *testing.T) {
	tests := []struct {
		name     string
		perm     Permutation
		hash     uint64
		expected uint32
	}{
		{
			name:     "upper word of product",
			perm:     Permutation{A: 3, B: 5},
			hash:     1 << 32,
			expected: 3,
		},
		{
			name:     "addition carries into upper word",
			perm:     Permutation{A: 1, B: 1},
			hash:     0xFFFFFFFF,
			expected: 1,
		},
		{
			name:     "multiply wraps mod 2^64",
			perm:     Permutation{A: 1 << 63, B: 7},
			hash:     2,
			expected: 0,
		},
		{
			name:     "add wraps mod 2^64",
			perm:     Permutation{A: 1, B: 1 << 63},
			hash:     1 << 63,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.perm.Apply(tt.hash))
		})
	}
}
