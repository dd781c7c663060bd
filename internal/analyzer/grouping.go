package analyzer

import (
	"fmt"
)

// DuplicateGroup is a set of record ids judged transitively similar.
// A group of one is a record with no qualifying match.
type DuplicateGroup struct {
	ID      int   `json:"id" yaml:"id"`
	Members []int `json:"members" yaml:"members"`
}

// Size returns the number of members
func (g DuplicateGroup) Size() int { return len(g.Members) }

// IsDuplicate reports whether the group holds more than one record
func (g DuplicateGroup) IsDuplicate() bool { return len(g.Members) > 1 }

// BuildDuplicateGroups partitions every record of idx into duplicate groups.
// Each id, ascending, is queried with its own signature and unioned with the
// returned candidates. A nil threshold unions raw LSH candidates.
//
// Groups are ordered by smallest member and numbered from 0; members are
// ascending. The result always partitions 0..n-1; anything else panics.
func BuildDuplicateGroups(idx *LSHIndex, threshold *float64) []DuplicateGroup {
	n := idx.Size()
	uf := NewUnionFind(n)
	for id := 0; id < n; id++ {
		for _, other := range idx.Query(idx.Signature(id), threshold) {
			uf.Union(id, other)
		}
	}

	comps := uf.Components()
	groups := make([]DuplicateGroup, len(comps))
	for i, members := range comps {
		groups[i] = DuplicateGroup{ID: i, Members: members}
	}

	if err := VerifyPartition(groups, n); err != nil {
		panic(err)
	}
	return groups
}

// VerifyPartition checks that groups cover 0..n-1 with no id repeated
func VerifyPartition(groups []DuplicateGroup, n int) error {
	seen := make([]bool, n)
	count := 0
	for _, g := range groups {
		if len(g.Members) == 0 {
			return fmt.Errorf("%w: group %d is empty", ErrPartitionViolation, g.ID)
		}
		for _, id := range g.Members {
			if id < 0 || id >= n {
				return fmt.Errorf("%w: group %d holds id %d outside 0..%d", ErrPartitionViolation, g.ID, id, n-1)
			}
			if seen[id] {
				return fmt.Errorf("%w: id %d appears in more than one group", ErrPartitionViolation, id)
			}
			seen[id] = true
			count++
		}
	}
	if count != n {
		return fmt.Errorf("%w: %d of %d ids assigned", ErrPartitionViolation, count, n)
	}
	return nil
}

// GroupStatistics summarizes a partition
type GroupStatistics struct {
	TotalRecords    int `json:"total_records" yaml:"total_records"`
	TotalGroups     int `json:"total_groups" yaml:"total_groups"`
	DuplicateGroups int `json:"duplicate_groups" yaml:"duplicate_groups"` // Groups with more than one member
	DuplicatesFound int `json:"duplicates_found" yaml:"duplicates_found"` // TotalRecords - TotalGroups
	LargestGroup    int `json:"largest_group" yaml:"largest_group"`
}

// SummarizeGroups computes partition statistics
func SummarizeGroups(groups []DuplicateGroup) GroupStatistics {
	var stats GroupStatistics
	stats.TotalGroups = len(groups)
	for _, g := range groups {
		stats.TotalRecords += g.Size()
		if g.IsDuplicate() {
			stats.DuplicateGroups++
		}
		if g.Size() > stats.LargestGroup {
			stats.LargestGroup = g.Size()
		}
	}
	stats.DuplicatesFound = stats.TotalRecords - stats.TotalGroups
	return stats
}
