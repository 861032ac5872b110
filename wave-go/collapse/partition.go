package collapse

import (
	"math/rand"
	"sort"
)

// partition splits total into parts non-negative integers that sum to
// total. Every such composition is equally likely: the cut points are a
// uniformly random (parts-1)-subset of the total+parts-1 slots.
func partition(rng *rand.Rand, total, parts int) []int {
	if parts < 1 {
		return nil
	}
	sizes := make([]int, parts)
	if parts == 1 {
		sizes[0] = total
		return sizes
	}

	cuts := rng.Perm(total + parts - 1)[:parts-1]
	sort.Ints(cuts)

	prev := -1
	for i, cut := range cuts {
		sizes[i] = cut - prev - 1
		prev = cut
	}
	sizes[parts-1] = total + parts - 1 - prev - 1
	return sizes
}
