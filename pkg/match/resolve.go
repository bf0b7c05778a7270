package match

import "sort"

func conflicts(a, b Index) bool {
	return a.Query == b.Query || a.Reference == b.Reference
}

// resolveSinglePass compares every unordered pair of conflicting candidates once,
// against the complete candidate snapshot, and drops the one with the smaller summed
// intensity. On equal sums the earlier candidate in (query, reference) order is dropped.
// A candidate beaten by a candidate that is itself beaten elsewhere is still dropped:
// this is one greedy pass, not a fixed point. candidates must be sorted.
func resolveSinglePass(candidates []Index, weight func(Index) float64) []Index {
	dropped := make([]bool, len(candidates))
	for a := 0; a < len(candidates); a++ {
		for b := a + 1; b < len(candidates); b++ {
			if !conflicts(candidates[a], candidates[b]) {
				continue
			}
			if intensityLess(weight(candidates[b]), weight(candidates[a])) {
				dropped[b] = true
			} else {
				dropped[a] = true
			}
		}
	}

	out := make([]Index, 0, len(candidates))
	for k, c := range candidates {
		if !dropped[k] {
			out = append(out, c)
		}
	}
	return out
}

// resolveGreedy accepts candidates in descending summed intensity, skipping any whose
// query or reference peak is already taken. The result is strictly one-to-one.
// Equal weights keep (query, reference) order. candidates must be sorted.
func resolveGreedy(candidates []Index, weight func(Index) float64) []Index {
	order := make([]Index, len(candidates))
	copy(order, candidates)
	sort.SliceStable(order, func(a, b int) bool {
		return intensityLess(weight(order[b]), weight(order[a]))
	})

	usedQuery := make(map[int]bool)
	usedReference := make(map[int]bool)
	out := make([]Index, 0, len(order))
	for _, c := range order {
		if usedQuery[c.Query] || usedReference[c.Reference] {
			continue
		}
		usedQuery[c.Query] = true
		usedReference[c.Reference] = true
		out = append(out, c)
	}

	sortIndices(out)
	return out
}
