package collapse

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
	"github.com/wavetext/wavetext/wave-golib/text"
)

var sentences = []string{
	"Strong people build strong nations.",
	"The people of the north were strong and proud.",
	"A strong wind blew across the open plain.",
	"People often forget how strong they are.",
	"The nations of the world met in the north.",
	"Proud people rarely ask for help.",
}

func requireModel(t *testing.T, opts languagemodel.Options, corpus []string) *languagemodel.AdjacencyModel {
	m, err := languagemodel.NewAdjacencyModel(opts)
	require.NoError(t, err)
	require.NoError(t, m.Fit(corpus))
	return m
}

func newSolver(m Model, seed int64, opts Options) *Solver {
	return NewSolver(m, rand.New(rand.NewSource(seed)), opts)
}

// wordsOf strips the trailing period and re-tokenizes a generated sentence.
func wordsOf(sentence string) text.Tokens {
	return text.WordTokenizer{}.Tokenize(strings.TrimSuffix(sentence, "."))
}

func TestGeneratePromptTooLong(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)
	s := newSolver(m, 1, Options{})

	_, err := s.Generate("a b c d e f g h i j k", 5)
	assert.Equal(t, ErrPromptTooLong, errors.Cause(err))

	_, err = s.Generate("strong people", 2)
	assert.Equal(t, ErrPromptTooLong, errors.Cause(err))

	_, err = s.Generate("", 0)
	assert.Equal(t, ErrPromptTooLong, errors.Cause(err))
}

func TestGenerateNotFitted(t *testing.T) {
	m, err := languagemodel.NewAdjacencyModel(languagemodel.DefaultOptions)
	require.NoError(t, err)

	_, err = newSolver(m, 1, Options{}).Generate("strong people", 12)
	assert.Equal(t, ErrNotFitted, err)

	// not fitted wins over a prompt that is too long
	_, err = newSolver(m, 1, Options{}).Generate("a b c", 2)
	assert.Equal(t, ErrNotFitted, err)
}

func TestGenerateLengthAndOrder(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)

	for seed := int64(0); seed < 25; seed++ {
		out, err := newSolver(m, seed, Options{}).Generate("strong people", 12)
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(out, "."), out)
		assert.Equal(t, strings.ToUpper(out[:1]), out[:1], out)

		words := wordsOf(out)
		require.Len(t, words, 12, out)

		// prompt words appear in order
		next := 0
		prompt := []string{"strong", "people"}
		for _, w := range words {
			if next < len(prompt) && w == prompt[next] {
				next++
			}
		}
		assert.Equal(t, len(prompt), next, out)
	}
}

func TestSolveRow(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)

	row, err := newSolver(m, 5, Options{}).Solve("strong people", 8)
	require.NoError(t, err)

	require.Len(t, row.Cells, 10)
	assert.Equal(t, languagemodel.StartToken, row.Cells[0].Word())
	assert.Equal(t, languagemodel.EndToken, row.Cells[9].Word())
	for _, c := range row.Cells {
		assert.True(t, c.Collapsed())
	}

	assert.Len(t, row.Gaps, 3)
	assert.Equal(t, 6, row.Gaps[0]+row.Gaps[1]+row.Gaps[2])
	assert.Len(t, row.Steps, 6)
	assert.Len(t, row.Words(), 8)

	assert.Equal(t, "strong", row.Cells[1+row.Gaps[0]].Word())
	assert.Equal(t, "people", row.Cells[2+row.Gaps[0]+row.Gaps[1]].Word())

	for _, step := range row.Steps {
		assert.Equal(t, step.Word, row.Cells[step.Index].Word())
		assert.False(t, languagemodel.IsSentinel(step.Word))
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)
	out, err := newSolver(m, 9, Options{}).Generate("", 4)
	require.NoError(t, err)
	assert.Len(t, wordsOf(out), 4)
}

func TestGenerateSeeded(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)
	for seed := int64(0); seed < 10; seed++ {
		a, err := newSolver(m, seed, Options{}).Generate("strong people", 12)
		require.NoError(t, err)
		b, err := newSolver(m, seed, Options{}).Generate("strong people", 12)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestGenerateUnseenWords(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)

	row, err := newSolver(m, 2, Options{}).Solve("zebra quantum", 6)
	require.NoError(t, err)
	assert.Len(t, row.Words(), 6)
	require.Len(t, row.Steps, 4)
	for _, step := range row.Steps {
		assert.True(t, step.Fallback)
		assert.Equal(t, DefaultPlaceholder, step.Word)
		assert.Equal(t, NoInformation, step.Score)
	}

	row, err = newSolver(m, 2, Options{Placeholder: "blank"}).Solve("zebra quantum", 6)
	require.NoError(t, err)
	for _, step := range row.Steps {
		assert.Equal(t, "blank", step.Word)
	}
}

func TestGenerateStrict(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)
	_, err := newSolver(m, 2, Options{Strict: true}).Generate("zebra quantum", 6)
	assert.Equal(t, ErrNoCandidates, errors.Cause(err))
}

func TestGenerateSingleContinuation(t *testing.T) {
	m := requireModel(t, languagemodel.Options{MaxDist: 1}, []string{"the cat sat"})

	seen := make(map[string]bool)
	for seed := int64(0); seed < 40; seed++ {
		out, err := newSolver(m, seed, Options{}).Generate("the", 2)
		require.NoError(t, err)
		seen[out] = true
	}
	// padding after "the" can only be "cat"; before it nothing is known
	for out := range seen {
		assert.Contains(t, []string{"The cat.", "*UNK* the."}, out)
	}
}

func TestGenerateFramedNeverEmitsSentinels(t *testing.T) {
	m := requireModel(t, languagemodel.Options{MaxDist: 3, FrameSentences: true}, sentences)
	for seed := int64(0); seed < 20; seed++ {
		row, err := newSolver(m, seed, Options{}).Solve("people", 7)
		require.NoError(t, err)
		for _, w := range row.Words() {
			assert.False(t, languagemodel.IsSentinel(w), w)
		}
	}
}

func TestGenerateMinEntropy(t *testing.T) {
	m := requireModel(t, languagemodel.DefaultOptions, sentences)
	out, err := newSolver(m, 4, Options{Selection: MinEntropy}).Generate("strong people", 10)
	require.NoError(t, err)
	assert.Len(t, wordsOf(out), 10)
}

func TestGenerateStemmingTokenizer(t *testing.T) {
	m, err := languagemodel.NewAdjacencyModel(languagemodel.DefaultOptions)
	require.NoError(t, err)
	m.SetTokenizer(text.NewStemmingTokenizer())
	require.NoError(t, m.Fit(sentences))

	out, err := newSolver(m, 1, Options{Tokenizer: text.NewStemmingTokenizer()}).Generate("Nations", 3)
	require.NoError(t, err)
	assert.Contains(t, wordsOf(out), "nation")
}

func TestSelectCellTieBreak(t *testing.T) {
	s := newSolver(nil, 1, Options{})

	a, b := NewCell(), NewCell()
	a.Accumulate("x", 0.5)
	b.Accumulate("y", 0.5)
	row := &Row{Cells: []*Cell{NewFixedCell("z"), a, b}}
	assert.Equal(t, 1, s.selectCell(row))

	b.Accumulate("y", 0.1)
	assert.Equal(t, 2, s.selectCell(row))

	row = &Row{Cells: []*Cell{NewFixedCell("z"), NewCell(), NewCell()}}
	assert.Equal(t, 1, s.selectCell(row))

	row = &Row{Cells: []*Cell{NewFixedCell("z")}}
	assert.Equal(t, -1, s.selectCell(row))
}

func TestSelectCellMinEntropy(t *testing.T) {
	spread, peaked := NewCell(), NewCell()
	spread.Accumulate("a", 3)
	spread.Accumulate("b", 3)
	peaked.Accumulate("c", 1)
	row := &Row{Cells: []*Cell{NewCell(), spread, peaked}}

	assert.Equal(t, 1, newSolver(nil, 1, Options{}).selectCell(row))
	assert.Equal(t, 2, newSolver(nil, 1, Options{Selection: MinEntropy}).selectCell(row))
}

func TestPropagate(t *testing.T) {
	m := requireModel(t, languagemodel.Options{MaxDist: 2, FrameSentences: true}, []string{"the cat sat", "the dog sat"})
	s := newSolver(m, 1, Options{})

	row := &Row{Cells: []*Cell{NewFixedCell("the"), NewCell(), NewCell(), NewCell()}}
	s.propagate(row, m.Distances(), 0)

	assert.Equal(t, []string{"cat", "dog"}, row.Cells[1].Candidates())
	assert.Equal(t, []string{"sat"}, row.Cells[2].Candidates())
	assert.Equal(t, Empty, row.Cells[3].State())

	// the same source twice adds weight but no new candidates
	before := row.Cells[1].Weight("cat")
	s.propagate(row, m.Distances(), 0)
	assert.Equal(t, []string{"cat", "dog"}, row.Cells[1].Candidates())
	assert.Equal(t, 2*before, row.Cells[1].Weight("cat"))

	// "sat" is followed by the end sentinel, which is never a candidate
	row = &Row{Cells: []*Cell{NewFixedCell("sat"), NewCell()}}
	s.propagate(row, m.Distances(), 0)
	assert.Equal(t, Empty, row.Cells[1].State())
}

func TestRowString(t *testing.T) {
	row := &Row{Cells: []*Cell{
		NewFixedCell(languagemodel.StartToken),
		NewFixedCell("strong"),
		NewFixedCell("people"),
		NewFixedCell(languagemodel.EndToken),
	}}
	assert.Equal(t, []string{"strong", "people"}, row.Words())
	assert.Equal(t, "Strong people.", row.String())
}
