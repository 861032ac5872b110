package main

import (
	"net/http"
	"os"

	"github.com/wavetext/wavetext/wave-golib/cmdline"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/wavelog"
)

var serveCmd = cmdline.Command{
	Name:     "serve",
	Synopsis: "serve generation from a directory of frozen models over HTTP",
	Args: &serveArgs{
		Models:    "models",
		Port:      ":3041",
		CacheSize: 8,
		MaxLength: 256,
	},
}

type serveArgs struct {
	Models    string `arg:"env:WAVETEXT_MODELS" help:"directory of frozen models"`
	Port      string `help:"address to listen on"`
	CacheSize int    `help:"number of models kept in memory"`
	MaxLength int    `help:"longest sentence a request may ask for"`
}

func (a *serveArgs) Validate() error {
	if info, err := os.Stat(a.Models); err != nil || !info.IsDir() {
		return errors.Errorf("--models %s is not a directory", a.Models)
	}
	if a.CacheSize < 1 {
		return errors.Errorf("--cachesize must be positive, got %d", a.CacheSize)
	}
	if a.MaxLength < 1 {
		return errors.Errorf("--maxlength must be positive, got %d", a.MaxLength)
	}
	return nil
}

func (a *serveArgs) Handle() error {
	logger := wavelog.Basic
	app, err := newApp(a.Models, a.CacheSize, a.MaxLength, logger)
	if err != nil {
		return err
	}
	logger.Println("serving models from", a.Models, "on", a.Port)
	return http.ListenAndServe(a.Port, app.handler())
}
