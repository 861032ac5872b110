package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/wavetext/wavetext/wave-golib/cmdline"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
)

var neighborsCmd = cmdline.Command{
	Name:     "neighbors",
	Synopsis: "list the heaviest neighbors of a word at a distance",
	Args: &neighborsArgs{
		Model:    "model.gob.sz",
		Distance: 1,
		Top:      10,
	},
}

type neighborsArgs struct {
	Model    string `arg:"env:WAVETEXT_MODEL" help:"frozen model to inspect"`
	Word     string `arg:"required" help:"anchor word"`
	Distance int    `help:"signed distance from the anchor"`
	Top      int    `help:"number of neighbors to list; 0 lists all"`
}

func (a *neighborsArgs) Validate() error {
	if a.Distance == 0 {
		return errors.Errorf("--distance must be non-zero")
	}
	return nil
}

func (a *neighborsArgs) Handle() error {
	m, err := languagemodel.Load(a.Model)
	if err != nil {
		return err
	}
	return a.run(os.Stdout, m)
}

func (a *neighborsArgs) run(w io.Writer, m *languagemodel.AdjacencyModel) error {
	if a.Distance < -m.MaxDist() || a.Distance > m.MaxDist() {
		return errors.Errorf("distance %d is outside the model's window of %d", a.Distance, m.MaxDist())
	}

	neighbors := m.Get(a.Distance, a.Word).Top(a.Top)
	if len(neighbors) == 0 {
		fmt.Fprintf(w, "no neighbors of %q at distance %d\n", a.Word, a.Distance)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"word", "weight", "count"})
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	for _, n := range neighbors {
		count := n.Weight * float64(m.Sentences())
		table.Append([]string{
			n.Word,
			strconv.FormatFloat(n.Weight, 'f', 6, 64),
			strconv.FormatFloat(count, 'f', 0, 64),
		})
	}
	table.Render()
	return nil
}
