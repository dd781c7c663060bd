package analyzer

import "math"

// ApproxThreshold is the similarity at which the banding S-curve rises
// most steeply: (1/b)^(1/r)
func ApproxThreshold(bands, rows int) float64 {
	if bands <= 0 || rows <= 0 {
		return 0.0
	}
	return math.Pow(1.0/float64(bands), 1.0/float64(rows))
}

// ValidBandCounts lists every num_bands value that evenly divides numPerm, ascending
func ValidBandCounts(numPerm int) []int {
	var counts []int
	for b := 1; b <= numPerm; b++ {
		if numPerm%b == 0 {
			counts = append(counts, b)
		}
	}
	return counts
}

// ComputeOptimalBandParameters picks the band count for numPerm whose
// approximate threshold is closest to targetThreshold
func ComputeOptimalBandParameters(numPerm int, targetThreshold float64) LSHConfig {
	best := LSHConfig{NumPerm: numPerm, NumBands: 1}
	if numPerm <= 0 {
		return best
	}
	if targetThreshold <= 0 || targetThreshold >= 1 {
		// Degenerate targets: every position its own band maximizes recall
		if targetThreshold <= 0 {
			best.NumBands = numPerm
		}
		return best
	}

	bestError := math.Inf(1)
	for _, bands := range ValidBandCounts(numPerm) {
		rows := numPerm / bands
		diff := math.Abs(ApproxThreshold(bands, rows) - targetThreshold)
		if diff < bestError {
			bestError = diff
			best.NumBands = bands
		}
	}
	return best
}
