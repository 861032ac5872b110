package languagemodel

import (
	"sort"

	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/text"
)

// Reserved tokens bounding every sentence and generated sequence. They can
// not be produced by a tokenizer honoring the word contract.
const (
	StartToken = "*START*"
	EndToken   = "*END*"
)

var (
	// ErrEmptyCorpus is returned by Fit when given no sentences.
	ErrEmptyCorpus = errors.New("adjacency model must be fitted on at least one sentence")
	// ErrAlreadyFitted is returned by Fit on a model that already holds weights.
	ErrAlreadyFitted = errors.New("adjacency model is already fitted")
)

// Neighbors maps a neighbor word to its weight.
type Neighbors map[string]float64

// Table maps an anchor word to its neighbors at one signed distance.
type Table map[string]Neighbors

// Options configures an AdjacencyModel.
type Options struct {
	// MaxDist is the largest token separation counted; must be >= 1.
	MaxDist int
	// FrameSentences wraps each sentence in StartToken/EndToken while counting
	// so that sentence boundaries are learned.
	FrameSentences bool
}

// DefaultOptions matches the window used by the wavetext driver.
var DefaultOptions = Options{MaxDist: 6}

// AdjacencyModel holds directional, distance-indexed co-occurrence weights:
// weights[d][a][b] is the number of sentences (with multiplicity) in which b
// appears d tokens after a (before a, for negative d), divided by the number
// of sentences in the corpus. It is written once by Fit and safe for
// concurrent reads afterwards.
type AdjacencyModel struct {
	opts      Options
	sentences int
	weights   map[int]Table
	tokenizer text.Tokenizer
}

// NewAdjacencyModel returns an empty model with the given window.
func NewAdjacencyModel(opts Options) (*AdjacencyModel, error) {
	if opts.MaxDist < 1 {
		return nil, errors.Errorf("max distance must be positive, got %d", opts.MaxDist)
	}
	return &AdjacencyModel{
		opts:      opts,
		tokenizer: text.WordTokenizer{},
	}, nil
}

// SetTokenizer replaces the tokenizer used by Fit.
func (m *AdjacencyModel) SetTokenizer(tok text.Tokenizer) {
	m.tokenizer = tok
}

// Fit counts adjacencies in sentences and normalizes them by the number of
// sentences. It may only be called once per model.
func (m *AdjacencyModel) Fit(sentences []string) error {
	if len(sentences) == 0 {
		return ErrEmptyCorpus
	}
	if m.Fitted() {
		return ErrAlreadyFitted
	}

	seqs := make([]text.Tokens, 0, len(sentences))
	vocab := map[string]struct{}{StartToken: {}, EndToken: {}}
	for _, s := range sentences {
		toks := m.tokenizer.Tokenize(s)
		if m.opts.FrameSentences {
			framed := make(text.Tokens, 0, len(toks)+2)
			framed = append(framed, StartToken)
			framed = append(framed, toks...)
			toks = append(framed, EndToken)
		}
		for _, t := range toks {
			vocab[t] = struct{}{}
		}
		seqs = append(seqs, toks)
	}

	counts := m.newTable(vocab)
	for _, toks := range seqs {
		m.count(counts, toks)
	}

	n := float64(len(sentences))
	for _, table := range counts {
		for _, neighbors := range table {
			for w := range neighbors {
				neighbors[w] /= n
			}
		}
	}

	m.weights = counts
	m.sentences = len(sentences)
	return nil
}

// newTable allocates an empty neighbor map for every word at every distance.
func (m *AdjacencyModel) newTable(vocab map[string]struct{}) map[int]Table {
	weights := make(map[int]Table, 2*m.opts.MaxDist)
	for _, d := range m.Distances() {
		table := make(Table, len(vocab))
		for w := range vocab {
			table[w] = make(Neighbors)
		}
		weights[d] = table
	}
	return weights
}

// count adds the raw pair counts of one token sequence.
func (m *AdjacencyModel) count(counts map[int]Table, toks text.Tokens) {
	for i, a := range toks {
		for k := 1; k <= m.opts.MaxDist && i+k < len(toks); k++ {
			b := toks[i+k]
			counts[k][a][b]++
			counts[-k][b][a]++
		}
	}
}

// Get returns the neighbor weights of word at signed distance d. The result
// is never nil; it is empty for unseen words and distances outside the
// window. Callers must not modify it.
func (m *AdjacencyModel) Get(d int, word string) Neighbors {
	if n, ok := m.weights[d][word]; ok {
		return n
	}
	return Neighbors{}
}

// Weight returns weights[d][a][b], or 0 when absent.
func (m *AdjacencyModel) Weight(d int, a, b string) float64 {
	return m.weights[d][a][b]
}

// Distances returns the signed distances in the window, ascending and
// without 0: -MaxDist..-1, 1..MaxDist.
func (m *AdjacencyModel) Distances() []int {
	ds := make([]int, 0, 2*m.opts.MaxDist)
	for d := -m.opts.MaxDist; d <= m.opts.MaxDist; d++ {
		if d != 0 {
			ds = append(ds, d)
		}
	}
	return ds
}

// MaxDist returns the window size.
func (m *AdjacencyModel) MaxDist() int {
	return m.opts.MaxDist
}

// Framed reports whether sentences were wrapped in sentinels while fitting.
func (m *AdjacencyModel) Framed() bool {
	return m.opts.FrameSentences
}

// Options returns the options the model was built with.
func (m *AdjacencyModel) Options() Options {
	return m.opts
}

// Fitted reports whether the model holds any weights.
func (m *AdjacencyModel) Fitted() bool {
	return len(m.weights) > 0
}

// Sentences returns the number of sentences the model was fitted on.
func (m *AdjacencyModel) Sentences() int {
	return m.sentences
}

// Vocab returns every anchor word in the model, sorted, sentinels included.
func (m *AdjacencyModel) Vocab() []string {
	table, ok := m.weights[1]
	if !ok {
		return nil
	}
	vocab := make([]string, 0, len(table))
	for w := range table {
		vocab = append(vocab, w)
	}
	sort.Strings(vocab)
	return vocab
}

// Len returns the number of anchor words, sentinels included.
func (m *AdjacencyModel) Len() int {
	return len(m.weights[1])
}

// IsSentinel reports whether w is one of the reserved sentence markers.
func IsSentinel(w string) bool {
	return w == StartToken || w == EndToken
}
