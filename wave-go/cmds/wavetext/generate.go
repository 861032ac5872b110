package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/wavetext/wavetext/wave-go/collapse"
	"github.com/wavetext/wavetext/wave-golib/cmdline"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
	"github.com/wavetext/wavetext/wave-golib/text"
	"github.com/wavetext/wavetext/wave-golib/wavelog"
)

const (
	defaultPrompt = "strong people"
	defaultLength = 12
)

var generateCmd = cmdline.Command{
	Name:     "generate",
	Synopsis: "generate sentences around a prompt from a frozen model",
	Args: &generateArgs{
		Model:  "model.gob.sz",
		Prompt: defaultPrompt,
		Length: defaultLength,
		Count:  1,
	},
}

type generateArgs struct {
	Model   string `arg:"env:WAVETEXT_MODEL" help:"frozen model to generate from"`
	Prompt  string `help:"words the sentence must contain, in order"`
	Length  int    `help:"number of words per sentence"`
	Count   int    `help:"number of sentences"`
	Seed    int64  `help:"random seed; 0 picks one from the clock"`
	Stem    bool   `help:"stem the prompt (use with models fitted with --stem)"`
	Strict  bool   `help:"fail instead of emitting a placeholder for positions without candidates"`
	Entropy bool   `help:"collapse the position with the least uncertain distribution first"`
	Verbose bool   `help:"log every collapse"`
}

func (a *generateArgs) Validate() error {
	if a.Length < 1 {
		return errors.Errorf("--length must be positive, got %d", a.Length)
	}
	if a.Count < 1 {
		return errors.Errorf("--count must be positive, got %d", a.Count)
	}
	return nil
}

func (a *generateArgs) Handle() error {
	start := time.Now()
	m, err := languagemodel.Load(a.Model)
	if err != nil {
		return err
	}
	wavelog.Basic.Printf("loaded %s in %v", a.Model, time.Since(start))
	return a.run(os.Stdout, m, wavelog.Basic)
}

func (a *generateArgs) solverOptions() collapse.Options {
	opts := collapse.Options{Strict: a.Strict}
	if a.Stem {
		opts.Tokenizer = text.NewStemmingTokenizer()
	}
	if a.Entropy {
		opts.Selection = collapse.MinEntropy
	}
	return opts
}

func (a *generateArgs) run(w io.Writer, m collapse.Model, logger wavelog.Interface) error {
	seed := a.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if a.Verbose {
		logger.Printf("seed %d", seed)
	}

	solver := collapse.NewSolver(m, rand.New(rand.NewSource(seed)), a.solverOptions())
	for i := 0; i < a.Count; i++ {
		row, err := solver.Solve(a.Prompt, a.Length)
		if err != nil {
			return err
		}
		if a.Verbose {
			for _, step := range row.Steps {
				if step.Fallback {
					logger.Printf("position %d: no candidates, using %s", step.Index, step.Word)
					continue
				}
				logger.Printf("position %d: %s (score %.4f)", step.Index, step.Word, step.Score)
			}
		}
		fmt.Fprintln(w, row.String())
	}
	return nil
}
