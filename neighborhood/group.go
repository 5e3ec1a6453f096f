package neighborhood

import "github.com/hpcc-systems/Medley/ids"

// GroupNeighborhood takes an ordered vector of group hashes g and a depth
// d, and returns the set of order-sensitive aggregate hashes obtained by
// combining every subset of g of size ≥ max(1, m − d), where m = len(g).
// Elements within a subset are always combined in their original index
// order, never the order they were dropped in.
//
// d is clamped to min(d, m-1) so at least one element always survives a
// subset. When m == 0 the only output is the aggregate of the empty
// sequence (ids.EmptySequenceHash, by construction of the H64 fold).
func GroupNeighborhood(g []ids.Hash, d int) map[ids.Hash]struct{} {
	out := make(map[ids.Hash]struct{})
	m := len(g)

	if m == 0 {
		out[ids.H64Hashes()] = struct{}{}
		return out
	}

	if d < 0 {
		d = 0
	}
	if d > m-1 {
		d = m - 1
	}
	minSize := m - d
	if minSize < 1 {
		minSize = 1
	}

	for size := minSize; size <= m; size++ {
		forEachCombination(m, size, func(indices []int) {
			subset := make([]ids.Hash, size)
			for i, ix := range indices {
				subset[i] = g[ix]
			}
			out[ids.H64Hashes(subset...)] = struct{}{}
		})
	}
	return out
}

// forEachCombination visits every size-length, strictly increasing index
// combination of [0, n) in lexicographic order.
func forEachCombination(n, size int, visit func(indices []int)) {
	if size == 0 || size > n {
		return
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		visit(idx)

		i := size - 1
		for i >= 0 && idx[i] == i+n-size {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
