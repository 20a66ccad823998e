package vectordb

import (
	"cmp"
	"slices"
	"strings"
)

// sortMatches orders matches by decreasing similarity, breaking ties by ID
// so that nearest-neighbour rank is deterministic.
func sortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
