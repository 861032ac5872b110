package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
)

var books = map[string]string{
	"one.txt": "Strong people build strong nations. The people of the north were strong and proud.\n" +
		"A strong wind blew across the open plain.",
	"two.html": "<html><body><p>People often forget how strong they are.</p>" +
		"<p>Proud people rarely ask for help. The nations of the world met in the north.</p></body></html>",
	"sources.txt": "one.txt\ntwo.html\n",
}

func requireTempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "wavetext")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func requireBooks(t *testing.T) string {
	dir := requireTempDir(t)
	for name, contents := range books {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

func requireModel(t *testing.T) *languagemodel.AdjacencyModel {
	m, err := languagemodel.NewAdjacencyModel(languagemodel.DefaultOptions)
	require.NoError(t, err)
	require.NoError(t, m.Fit([]string{
		"Strong people build strong nations.",
		"The people of the north were strong and proud.",
		"A strong wind blew across the open plain.",
		"People often forget how strong they are.",
	}))
	return m
}
