package analyzer

// splitMix is a tiny deterministic RandomSource for tests
type splitMix struct {
	state uint64
}

func newSplitMix(seed uint64) *splitMix {
	return &splitMix{state: seed}
}

func (s *splitMix) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// countingSource returns 1, 2, 3, ...
type countingSource struct {
	n uint64
}

func (c *countingSource) Uint64() uint64 {
	c.n++
	return c.n
}

func testHasher(numPerm int, seed uint64) *MinHasher {
	perms, err := NewPermutationSet(numPerm, newSplitMix(seed))
	if err != nil {
		panic(err)
	}
	return NewMinHasher(perms)
}

func floatPtr(v float64) *float64 { return &v }
