package analyzer

// UnionFind is a disjoint-set forest over the dense ids 0..n-1, stored as
// flat parent/size arrays.
type UnionFind struct {
	parent []int32
	size   []int32
}

// NewUnionFind creates n singleton sets
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int32, n),
		size:   make([]int32, n),
	}
	for i := range uf.parent {
		uf.parent[i] = int32(i)
		uf.size[i] = 1
	}
	return uf
}

// Len returns the number of elements
func (uf *UnionFind) Len() int { return len(uf.parent) }

// Find returns the root of x, halving the path on the way up
func (uf *UnionFind) Find(x int) int {
	i := int32(x)
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return int(i)
}

// Union merges the sets of a and b and returns the new root.
// The larger set absorbs the smaller; on a tie the lower root id wins.
func (uf *UnionFind) Union(a, b int) int {
	ra, rb := int32(uf.Find(a)), int32(uf.Find(b))
	if ra == rb {
		return int(ra)
	}
	if uf.size[ra] < uf.size[rb] || (uf.size[ra] == uf.size[rb] && rb < ra) {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return int(ra)
}

// Connected reports whether a and b are in the same set
func (uf *UnionFind) Connected(a, b int) bool {
	return uf.Find(a) == uf.Find(b)
}

// ComponentSize returns the size of the set containing x
func (uf *UnionFind) ComponentSize(x int) int {
	return int(uf.size[uf.Find(x)])
}

// Components flattens the forest. Each component's members are ascending
// and components are ordered by their smallest member.
func (uf *UnionFind) Components() [][]int {
	slot := make(map[int]int)
	var comps [][]int
	for x := range uf.parent {
		r := uf.Find(x)
		k, ok := slot[r]
		if !ok {
			k = len(comps)
			slot[r] = k
			comps = append(comps, make([]int, 0, uf.size[r]))
		}
		comps[k] = append(comps[k], x)
	}
	return comps
}
