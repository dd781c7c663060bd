package analyzer

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Signatures at least this long are compared by a worker pool in
// similarityChunk-sized slices; shorter ones are compared inline.
const (
	parallelSimilarityCutoff = 4096
	similarityChunk          = 1024
)

// EstimateJaccardSimilarity estimates Jaccard similarity via signature agreement ratio.
// Both signatures must come from the same permutation set. Two empty
// signatures are identical.
func EstimateJaccardSimilarity(a, b Signature) float64 {
	if len(a) != len(b) {
		panic(fmt.Errorf("%w: signature lengths %d and %d differ", ErrInternalConsistency, len(a), len(b)))
	}
	if len(a) == 0 {
		return 1.0
	}

	var match int
	if len(a) < parallelSimilarityCutoff {
		match = countEqual(a, b)
	} else {
		match = parallelCountEqual(a, b)
	}
	return float64(match) / float64(len(a))
}

func countEqual(a, b Signature) int {
	match := 0
	for i := range a {
		if a[i] == b[i] {
			match++
		}
	}
	return match
}

// parallelCountEqual counts agreeing positions chunk by chunk; each worker
// owns one slot of counts and the slots are summed afterwards.
func parallelCountEqual(a, b Signature) int {
	chunks := (len(a) + similarityChunk - 1) / similarityChunk
	counts := make([]int, chunks)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for c := 0; c < chunks; c++ {
		g.Go(func() error {
			lo := c * similarityChunk
			hi := min(lo+similarityChunk, len(a))
			counts[c] = countEqual(a[lo:hi], b[lo:hi])
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// ComputeJaccardSimilarity computes the exact Jaccard similarity of two token sets.
// Two empty sets are treated as identical.
func ComputeJaccardSimilarity(tokens1, tokens2 []string) float64 {
	set1 := make(map[string]struct{}, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = struct{}{}
	}
	set2 := make(map[string]struct{}, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = struct{}{}
	}

	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}

	intersection := 0
	for t := range set1 {
		if _, ok := set2[t]; ok {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	return float64(intersection) / float64(union)
}
