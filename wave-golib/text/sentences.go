package text

import (
	"strings"
	"unicode"
)

// closers may trail a sentence terminator and still belong to the sentence.
const closers = `"')]”’`

// SplitSentences breaks a document into sentences. A sentence ends at a run
// of '.', '!' or '?' (plus any closing quotes or brackets) that is followed
// by whitespace or the end of the text, so "3.5" and "e.g.x" stay whole.
// Whitespace inside each sentence is collapsed and empty sentences are
// dropped.
func SplitSentences(doc string) []string {
	var out []string
	runes := []rune(doc)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || strings.ContainsRune(closers, runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		if s := CollapseSpace(string(runes[start:j])); s != "" {
			out = append(out, s)
		}
		start = j
		i = j - 1
	}
	if s := CollapseSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
