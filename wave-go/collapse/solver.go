package collapse

import (
	"math/rand"
	"strings"

	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
	"github.com/wavetext/wavetext/wave-golib/text"
)

var (
	// ErrNotFitted is returned when generating from a model without weights.
	ErrNotFitted = errors.New("model must be fitted before generating")
	// ErrPromptTooLong is returned when the prompt leaves no room for padding.
	ErrPromptTooLong = errors.New("prompt must have fewer tokens than the requested length")
	// ErrAlreadyCollapsed is returned when resolving a collapsed cell.
	ErrAlreadyCollapsed = errors.New("cell is already collapsed")
	// ErrNoCandidates is returned when resolving a cell with no candidates.
	ErrNoCandidates = errors.New("cell has no candidates")
)

// DefaultPlaceholder is the word an empty cell collapses to.
const DefaultPlaceholder = "*UNK*"

// Model is the read-only view of an adjacency model used by the Solver.
// *languagemodel.AdjacencyModel implements it.
type Model interface {
	Distances() []int
	Get(d int, word string) languagemodel.Neighbors
	Fitted() bool
}

// Selection picks which unresolved cell to collapse next.
type Selection int

const (
	// MaxWeight picks the cell whose strongest candidate is heaviest.
	MaxWeight Selection = iota
	// MinEntropy picks the cell whose candidate distribution has the lowest
	// Shannon entropy.
	MinEntropy
)

// Options configures a Solver. The zero value is usable.
type Options struct {
	// Tokenizer splits prompts; defaults to text.WordTokenizer.
	Tokenizer text.Tokenizer
	// Placeholder is the word given to cells left without candidates;
	// defaults to DefaultPlaceholder.
	Placeholder string
	// Strict makes Solve fail with ErrNoCandidates instead of using the
	// placeholder.
	Strict bool
	// Selection defaults to MaxWeight.
	Selection Selection
}

// Solver generates sequences from a model. A Solver owns its random source
// and is not safe for concurrent use; the model may be shared between
// solvers.
type Solver struct {
	model Model
	rng   *rand.Rand
	opts  Options
}

// NewSolver returns a Solver drawing words from rng.
func NewSolver(model Model, rng *rand.Rand, opts Options) *Solver {
	if opts.Tokenizer == nil {
		opts.Tokenizer = text.WordTokenizer{}
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	return &Solver{
		model: model,
		rng:   rng,
		opts:  opts,
	}
}

// Generate returns a sentence of length words containing the prompt's words
// in order: the words joined by spaces, capitalized and ending in a period.
func (s *Solver) Generate(prompt string, length int) (string, error) {
	row, err := s.Solve(prompt, length)
	if err != nil {
		return "", err
	}
	return row.String(), nil
}

// Solve lays out and collapses a row for prompt, returning the resolved row.
func (s *Solver) Solve(prompt string, length int) (*Row, error) {
	if !s.model.Fitted() {
		return nil, ErrNotFitted
	}
	toks := s.opts.Tokenizer.Tokenize(prompt)
	if len(toks) >= length {
		return nil, errors.Wrapf(ErrPromptTooLong, "prompt has %d tokens, length is %d", len(toks), length)
	}

	row := s.layout(toks, length)
	distances := s.model.Distances()

	for i, c := range row.Cells {
		if c.Collapsed() {
			s.propagate(row, distances, i)
		}
	}

	for {
		i := s.selectCell(row)
		if i < 0 {
			return row, nil
		}
		if err := s.collapse(row, i); err != nil {
			return nil, err
		}
		s.propagate(row, distances, i)
	}
}

// layout builds the row: start sentinel, padding runs around each prompt
// word, end sentinel.
func (s *Solver) layout(prompt text.Tokens, length int) *Row {
	gaps := partition(s.rng, length-len(prompt), len(prompt)+1)

	cells := make([]*Cell, 0, length+2)
	cells = append(cells, NewFixedCell(languagemodel.StartToken))
	for i, gap := range gaps {
		for j := 0; j < gap; j++ {
			cells = append(cells, NewCell())
		}
		if i < len(prompt) {
			cells = append(cells, NewFixedCell(prompt[i]))
		}
	}
	cells = append(cells, NewFixedCell(languagemodel.EndToken))

	return &Row{Cells: cells, Gaps: gaps}
}

// propagate spreads the neighbor weights of the collapsed cell at index onto
// the unresolved cells within the window.
func (s *Solver) propagate(row *Row, distances []int, index int) {
	word := row.Cells[index].Word()
	for _, d := range distances {
		j := index + d
		if j < 0 || j >= len(row.Cells) || row.Cells[j].Collapsed() {
			continue
		}
		target := row.Cells[j]
		for neighbor, weight := range s.model.Get(d, word) {
			if languagemodel.IsSentinel(neighbor) {
				continue
			}
			target.Accumulate(neighbor, weight)
		}
	}
}

// selectCell returns the index of the next cell to collapse, or -1 when all
// are collapsed. Ties go to the leftmost cell.
func (s *Solver) selectCell(row *Row) int {
	best := -1
	var bestScore float64
	for i, c := range row.Cells {
		if c.Collapsed() {
			continue
		}
		var score float64
		switch s.opts.Selection {
		case MinEntropy:
			score = -c.Entropy()
		default:
			score = c.Score()
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// collapse resolves the cell at i and records the step.
func (s *Solver) collapse(row *Row, i int) error {
	c := row.Cells[i]
	step := Step{Index: i, Score: c.Score()}

	switch c.State() {
	case Empty:
		if s.opts.Strict {
			return errors.Wrapf(ErrNoCandidates, "position %d", i)
		}
		if err := c.Fix(s.opts.Placeholder); err != nil {
			return err
		}
		step.Fallback = true
	default:
		if err := c.Resolve(s.rng); err != nil {
			return errors.Wrapf(err, "position %d", i)
		}
	}

	step.Word = c.Word()
	row.Steps = append(row.Steps, step)
	return nil
}

// Step records one collapse of the selection loop.
type Step struct {
	Index    int
	Word     string
	Score    float64
	Fallback bool
}

// Row is a resolved sequence, sentinels included.
type Row struct {
	Cells []*Cell
	// Gaps holds the padding run lengths before, between and after the
	// prompt words.
	Gaps []int
	// Steps lists the padding cells in the order they were collapsed.
	Steps []Step
}

// Words returns the words between the sentinels.
func (r *Row) Words() []string {
	if len(r.Cells) < 2 {
		return nil
	}
	inner := r.Cells[1 : len(r.Cells)-1]
	words := make([]string, len(inner))
	for i, c := range inner {
		words[i] = c.Word()
	}
	return words
}

// String joins the words, capitalizes the first letter and adds a period.
func (r *Row) String() string {
	return text.Capitalize(strings.Join(r.Words(), " ")) + "."
}
