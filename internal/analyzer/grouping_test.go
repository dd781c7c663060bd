package analyzer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDuplicateGroups_NearDuplicatePair(t *testing.T) {
	// seeds whose permutations put the first two records above 0.49
	for _, seed := range []uint64{1, 5, 9, 13} {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			idx, err := BuildLSHIndex(scenarioTexts(), LSHConfig{NumPerm: 64, NumBands: 16},
				WithRandomSource(newSplitMix(seed)))
			require.NoError(t, err)

			groups := BuildDuplicateGroups(idx, floatPtr(0.49))

			require.Len(t, groups, 2)
			assert.Equal(t, DuplicateGroup{ID: 0, Members: []int{0, 1}}, groups[0])
			assert.Equal(t, DuplicateGroup{ID: 1, Members: []int{2}}, groups[1])
		})
	}
}

func TestBuildDuplicateGroups_IdenticalTexts(t *testing.T) {
	texts := []string{"hello world", "something else", "hello world", "world hello"}
	idx, err := BuildLSHIndex(texts, LSHConfig{NumPerm: 64, NumBands: 16}, WithSeed(42))
	require.NoError(t, err)

	groups := BuildDuplicateGroups(idx, floatPtr(0.9))

	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 2, 3}, groups[0].Members)
	assert.Equal(t, []int{1}, groups[1].Members)
	assert.True(t, groups[0].IsDuplicate())
	assert.False(t, groups[1].IsDuplicate())
}

func TestBuildDuplicateGroups_NilThresholdUsesCandidates(t *testing.T) {
	texts := []string{"a b c d", "e f g h", "a b c d"}
	idx, err := BuildLSHIndex(texts, LSHConfig{NumPerm: 32, NumBands: 8}, WithSeed(1))
	require.NoError(t, err)

	groups := BuildDuplicateGroups(idx, nil)
	assert.Equal(t, []DuplicateGroup{
		{ID: 0, Members: []int{0, 2}},
		{ID: 1, Members: []int{1}},
	}, groups)
}

func TestBuildDuplicateGroups_Empty(t *testing.T) {
	idx, err := BuildLSHIndex(nil, LSHConfig{NumPerm: 16, NumBands: 4}, WithSeed(1))
	require.NoError(t, err)

	assert.Empty(t, BuildDuplicateGroups(idx, floatPtr(0.5)))
}

func TestBuildDuplicateGroups_Partition(t *testing.T) {
	texts := make([]string, 500)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d t%d t%d t%d", i%9, i%4, i%17, i%6)
	}
	idx, err := BuildLSHIndex(texts, LSHConfig{NumPerm: 64, NumBands: 32}, WithSeed(3))
	require.NoError(t, err)

	for _, threshold := range []*float64{nil, floatPtr(0.0), floatPtr(0.4), floatPtr(0.8), floatPtr(1.0)} {
		groups := BuildDuplicateGroups(idx, threshold)
		require.NoError(t, VerifyPartition(groups, len(texts)))

		for i, g := range groups {
			assert.Equal(t, i, g.ID)
			if i > 0 {
				assert.Less(t, groups[i-1].Members[0], g.Members[0])
			}
		}
	}
}

func TestBuildDuplicateGroups_ThresholdMonotonic(t *testing.T) {
	texts := make([]string, 300)
	for i := range texts {
		texts[i] = fmt.Sprintf("k%d k%d k%d", i%5, i%7, i%3)
	}
	idx, err := BuildLSHIndex(texts, LSHConfig{NumPerm: 64, NumBands: 16}, WithSeed(10))
	require.NoError(t, err)

	// a stricter threshold can only split groups
	loose := len(BuildDuplicateGroups(idx, floatPtr(0.3)))
	strict := len(BuildDuplicateGroups(idx, floatPtr(0.9)))
	assert.LessOrEqual(t, loose, strict)
}

func TestVerifyPartition(t *testing.T) {
	tests := []struct {
		name    string
		groups  []DuplicateGroup
		n       int
		wantErr bool
	}{
		{"valid", []DuplicateGroup{{ID: 0, Members: []int{0, 2}}, {ID: 1, Members: []int{1}}}, 3, false},
		{"empty universe", nil, 0, false},
		{"missing id", []DuplicateGroup{{ID: 0, Members: []int{0}}}, 2, true},
		{"repeated id", []DuplicateGroup{{ID: 0, Members: []int{0, 1}}, {ID: 1, Members: []int{1}}}, 2, true},
		{"out of range", []DuplicateGroup{{ID: 0, Members: []int{0, 5}}}, 2, true},
		{"empty group", []DuplicateGroup{{ID: 0, Members: []int{0}}, {ID: 1}}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPartition(tt.groups, tt.n)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrPartitionViolation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSummarizeGroups(t *testing.T) {
	groups := []DuplicateGroup{
		{ID: 0, Members: []int{0, 3, 4}},
		{ID: 1, Members: []int{1}},
		{ID: 2, Members: []int{2, 5}},
	}

	stats := SummarizeGroups(groups)
	assert.Equal(t, GroupStatistics{
		TotalRecords:    6,
		TotalGroups:     3,
		DuplicateGroups: 2,
		DuplicatesFound: 3,
		LargestGroup:    3,
	}, stats)

	assert.Equal(t, GroupStatistics{}, SummarizeGroups(nil))
}
