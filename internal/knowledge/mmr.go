package knowledge

import (
	"math"
	"slices"

	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

// selectMMR picks up to k candidates by maximal marginal relevance and
// returns their indices in ascending order. Candidates must be ordered by
// nearest-neighbour rank.
//
// The first pick is the most relevant candidate. Each further pick maximizes
//
//	lambda*rel(d) - (1-lambda)*max_{s in selected} cos(d, s)
//
// where rel is the store's similarity to the query. Ties go to the lower rank.
func selectMMR(candidates []vectordb.Match, k int, lambda float64) []int {
	if k > len(candidates) {
		k = len(candidates)
	}
	if k <= 0 {
		return nil
	}

	norms := make([]float64, len(candidates))
	for i, c := range candidates {
		norms[i] = norm(c.Embedding)
	}

	// maxSim[i] is the highest similarity of candidate i to any selected one.
	maxSim := make([]float64, len(candidates))
	for i := range maxSim {
		maxSim[i] = math.Inf(-1)
	}
	picked := make([]bool, len(candidates))
	selected := make([]int, 0, k)

	for len(selected) < k {
		best, bestScore := -1, math.Inf(-1)
		for i, c := range candidates {
			if picked[i] {
				continue
			}
			score := float64(c.Similarity)
			if len(selected) > 0 {
				score = lambda*score - (1-lambda)*maxSim[i]
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}

		picked[best] = true
		selected = append(selected, best)
		for i, c := range candidates {
			if picked[i] {
				continue
			}
			sim := cosine(c.Embedding, candidates[best].Embedding, norms[i], norms[best])
			if sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}

	slices.Sort(selected)
	return selected
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector is empty, zero, or the lengths differ.
func cosine(a, b []float32, na, nb float64) float64 {
	if len(a) != len(b) || na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
