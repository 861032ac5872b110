package languagemodel

import (
	"bytes"
	"encoding/binary"
	"sort"

	spooky "github.com/dgryski/go-spooky"
)

// Neighbor is a single weighted neighbor word.
type Neighbor struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// Top returns the k heaviest neighbors, heaviest first, ties broken by word.
// A non-positive k returns all of them.
func (n Neighbors) Top(k int) []Neighbor {
	out := make([]Neighbor, 0, len(n))
	for w, wt := range n {
		out = append(out, Neighbor{Word: w, Weight: wt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Word < out[j].Word
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

// Total sums every weight in the model. Multiplied by Sentences() it yields
// the raw number of counted pairs.
func (m *AdjacencyModel) Total() float64 {
	var total float64
	for _, d := range m.Distances() {
		for _, neighbors := range m.weights[d] {
			total += sum(neighbors)
		}
	}
	return total
}

// sum sums the weights of a neighbor map
func sum(n Neighbors) float64 {
	var s float64
	for _, w := range n {
		s += w
	}
	return s
}

// Fingerprint identifies a (corpus, options, tokenizer) triple; models fitted
// from equal fingerprints are equal. tokenizer names the tokenizer used for
// fitting. It is the key of the on-disk model cache.
func Fingerprint(opts Options, tokenizer string, sentences []string) uint64 {
	var buf bytes.Buffer
	buf.WriteString(tokenizer)
	buf.WriteByte(0)
	var hdr [9]byte
	binary.LittleEndian.PutUint64(hdr[:8], uint64(opts.MaxDist))
	if opts.FrameSentences {
		hdr[8] = 1
	}
	buf.Write(hdr[:])
	for _, s := range sentences {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		buf.Write(n[:])
		buf.WriteString(s)
	}
	return spooky.Hash64(buf.Bytes())
}
