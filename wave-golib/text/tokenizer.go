package text

import (
	"strings"
	"unicode"

	porterstemmer "github.com/kiteco/go-porterstemmer"
)

// Tokens represents a slice of strings
type Tokens []string

// TokenFunc defines a type of function that takes in an array of tokens and
// returns an array of tokens.
type TokenFunc func(Tokens) Tokens

// Tokenizer is generic interface for an object which breaks an input
// string into Tokens.
type Tokenizer interface {
	Tokenize(string) Tokens
}

// Processor consists of a list of text processing rules.
type Processor struct {
	filters []TokenFunc
}

// NewProcessor takes a list of TokenFuncs to instantiate a Processor.
func NewProcessor(funcs ...TokenFunc) *Processor {
	return &Processor{filters: append([]TokenFunc(nil), funcs...)}
}

// Apply applies a list of TokenFunc to transform the input tokens
func (p *Processor) Apply(ts Tokens) Tokens {
	if p == nil {
		return ts
	}
	for _, fn := range p.filters {
		ts = fn(ts)
	}
	return ts
}

// WordTokenizer splits text into lower-cased words made only of letters and
// digits. Apostrophes inside a word are dropped ("don't" -> "dont"), any other
// character separates words, and empty words are discarded. The zero value is
// ready to use and safe for concurrent use.
type WordTokenizer struct{}

// Tokenize satisfies the Tokenizer interface.
func (WordTokenizer) Tokenize(s string) Tokens {
	var tokens Tokens
	for _, field := range strings.FieldsFunc(s, isSeparator) {
		if w := normalizeWord(field); w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// ProcessedTokenizer runs the output of a Tokenizer through a Processor.
type ProcessedTokenizer struct {
	Tokenizer Tokenizer
	Processor *Processor
}

// Tokenize satisfies the Tokenizer interface. Tokens emptied by the
// processor are dropped.
func (pt ProcessedTokenizer) Tokenize(s string) Tokens {
	return RemoveEmpty(pt.Processor.Apply(pt.Tokenizer.Tokenize(s)))
}

// NewStemmingTokenizer returns a WordTokenizer whose words are reduced to
// their porter stems.
func NewStemmingTokenizer() Tokenizer {
	return ProcessedTokenizer{
		Tokenizer: WordTokenizer{},
		Processor: NewProcessor(Lower, Stem),
	}
}

// Lower converts all tokens to lower case
func Lower(ts Tokens) Tokens {
	for i, t := range ts {
		ts[i] = strings.ToLower(t)
	}
	return ts
}

// Stem extracts and returns the stems of each token in the input token stream
func Stem(ts Tokens) Tokens {
	for i, t := range ts {
		ts[i] = porterstemmer.StemString(t)
	}
	return ts
}

// RemoveEmpty drops empty tokens.
func RemoveEmpty(ts Tokens) Tokens {
	out := ts[:0]
	for _, t := range ts {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// isSeparator reports whether r splits two words. Apostrophes and combining
// marks stay attached to the word and are stripped by normalizeWord.
func isSeparator(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return false
	case r == '\'' || r == '’':
		return false
	}
	return true
}
