package main

import (
	"github.com/wavetext/wavetext/wave-golib/cmdline"
)

func main() {
	cmdline.MustDispatch(fitCmd, generateCmd, neighborsCmd, serveCmd)
}
