package collapse

import "math/rand"

// Candidate is a word with its (non-negative) weight.
type Candidate struct {
	Word   string
	Weight float64
}

// Choose draws the index of one candidate with probability proportional to
// its weight. Candidates with non-positive weight are never chosen. It
// returns ErrNoCandidates if no candidate has positive weight.
func Choose(rng *rand.Rand, cands []Candidate) (int, error) {
	var total float64
	last := -1
	for i, c := range cands {
		if c.Weight > 0 {
			total += c.Weight
			last = i
		}
	}
	if last < 0 {
		return -1, ErrNoCandidates
	}

	x := rng.Float64() * total
	for i, c := range cands {
		if c.Weight <= 0 {
			continue
		}
		if x < c.Weight {
			return i, nil
		}
		x -= c.Weight
	}
	// rounding can leave x just above the last weight
	return last, nil
}
