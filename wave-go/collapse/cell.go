package collapse

import (
	"math"
	"math/rand"
	"sort"
)

// NoInformation is the score of an unresolved cell with no candidates. It is
// lower than the score of any other cell.
const NoInformation = -1.0

// State distinguishes the three kinds of cell.
type State int

const (
	// Empty cells are unresolved and have no candidates yet.
	Empty State = iota
	// Populated cells are unresolved and have at least one candidate.
	Populated
	// Collapsed cells hold a single word.
	Collapsed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	case Collapsed:
		return "collapsed"
	}
	return "unknown"
}

// Cell is one position of a generated sequence: either a fixed word or an
// accumulating weighted distribution over candidate words.
type Cell struct {
	word      string
	collapsed bool
	possibles map[string]float64
}

// NewCell returns an unresolved cell with no candidates.
func NewCell() *Cell {
	return &Cell{possibles: make(map[string]float64)}
}

// NewFixedCell returns a cell collapsed to word.
func NewFixedCell(word string) *Cell {
	return &Cell{word: word, collapsed: true}
}

// State returns the cell's state.
func (c *Cell) State() State {
	switch {
	case c.collapsed:
		return Collapsed
	case len(c.possibles) == 0:
		return Empty
	}
	return Populated
}

// Collapsed reports whether the cell holds a word.
func (c *Cell) Collapsed() bool {
	return c.collapsed
}

// Word returns the cell's word, or "" if it is unresolved.
func (c *Cell) Word() string {
	return c.word
}

// Score is the selection score: 0 for collapsed cells, NoInformation for
// empty ones, and otherwise the weight of the strongest candidate.
func (c *Cell) Score() float64 {
	switch c.State() {
	case Collapsed:
		return 0
	case Empty:
		return NoInformation
	}
	var max float64
	for _, w := range c.possibles {
		if w > max {
			max = w
		}
	}
	return max
}

// Entropy returns the Shannon entropy (in nats) of the normalized candidate
// distribution. It is +Inf for empty cells and 0 for collapsed ones.
func (c *Cell) Entropy() float64 {
	switch c.State() {
	case Collapsed:
		return 0
	case Empty:
		return math.Inf(1)
	}
	var total float64
	for _, w := range c.possibles {
		total += w
	}
	var h float64
	for _, w := range c.possibles {
		p := w / total
		h -= p * math.Log(p)
	}
	return h
}

// Accumulate adds weight to word's candidate weight. It is a no-op on a
// collapsed cell and for non-positive weights.
func (c *Cell) Accumulate(word string, weight float64) {
	if c.collapsed || weight <= 0 {
		return
	}
	c.possibles[word] += weight
}

// Weight returns the accumulated weight of word.
func (c *Cell) Weight(word string) float64 {
	return c.possibles[word]
}

// Candidates returns the candidate words in sorted order.
func (c *Cell) Candidates() []string {
	words := make([]string, 0, len(c.possibles))
	for w := range c.possibles {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Resolve collapses the cell to one of its candidates, drawn from rng with
// probability proportional to weight.
func (c *Cell) Resolve(rng *rand.Rand) error {
	if c.collapsed {
		return ErrAlreadyCollapsed
	}
	words := c.Candidates()
	cands := make([]Candidate, len(words))
	for i, w := range words {
		cands[i] = Candidate{Word: w, Weight: c.possibles[w]}
	}
	i, err := Choose(rng, cands)
	if err != nil {
		return err
	}
	c.collapse(words[i])
	return nil
}

// Fix collapses the cell to word regardless of its candidates.
func (c *Cell) Fix(word string) error {
	if c.collapsed {
		return ErrAlreadyCollapsed
	}
	c.collapse(word)
	return nil
}

func (c *Cell) collapse(word string) {
	c.word = word
	c.collapsed = true
	c.possibles = nil
}
