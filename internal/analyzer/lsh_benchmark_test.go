package analyzer

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
)

func generateBenchmarkTexts(n, words int) []string {
	rng := rand.New(rand.NewPCG(1, 2))
	texts := make([]string, n)
	var sb strings.Builder
	for i := range texts {
		sb.Reset()
		for w := 0; w < words; w++ {
			if w > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "tok%d", rng.IntN(5000))
		}
		texts[i] = sb.String()
	}
	return texts
}

func BenchmarkMinHashComputation(b *testing.B) {
	hasher := testHasher(128, 1)
	text := generateBenchmarkTexts(1, 1000)[0]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hasher.SignatureOf(text)
	}
}

func BenchmarkLSHIndexBuild(b *testing.B) {
	texts := generateBenchmarkTexts(5000, 50)
	config := LSHConfig{NumPerm: 64, NumBands: 16}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildLSHIndex(texts, config, WithSeed(1)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLSHQuery(b *testing.B) {
	texts := generateBenchmarkTexts(5000, 50)
	idx, err := BuildLSHIndex(texts, LSHConfig{NumPerm: 64, NumBands: 16}, WithSeed(1))
	if err != nil {
		b.Fatal(err)
	}
	threshold := 0.49

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Query(idx.Signature(i%idx.Size()), &threshold)
	}
}

func BenchmarkBuildDuplicateGroups(b *testing.B) {
	sizes := []int{1000, 10000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("records_%d", size), func(b *testing.B) {
			texts := generateBenchmarkTexts(size, 30)
			idx, err := BuildLSHIndex(texts, LSHConfig{NumPerm: 64, NumBands: 16}, WithSeed(1))
			if err != nil {
				b.Fatal(err)
			}
			threshold := 0.49

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				BuildDuplicateGroups(idx, &threshold)
			}
		})
	}
}

func BenchmarkEstimateJaccardSimilarity(b *testing.B) {
	for _, n := range []int{128, 8192} {
		b.Run(fmt.Sprintf("perm_%d", n), func(b *testing.B) {
			hasher := testHasher(n, 1)
			texts := generateBenchmarkTexts(2, 40)
			s1, s2 := hasher.SignatureOf(texts[0]), hasher.SignatureOf(texts[1])

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				EstimateJaccardSimilarity(s1, s2)
			}
		})
	}
}
