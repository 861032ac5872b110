// Package collapse generates fixed-length word sequences from an adjacency
// model by collapsing cells one at a time.
//
// A row of cells is laid out around the prompt: the start and end sentinels
// and each prompt word are fixed, and the remaining padding cells start with
// no candidates. Every fixed cell spreads its neighbor weights onto the
// unresolved cells within the model's window. The solver then repeatedly
// picks the unresolved cell whose strongest candidate is heaviest, draws its
// word in proportion to the accumulated weights, and spreads that word's
// neighbor weights in turn, until every cell holds a word.
//
//	solver := collapse.NewSolver(model, rand.New(rand.NewSource(1)), collapse.Options{})
//	sentence, err := solver.Generate("strong people", 12)
package collapse
