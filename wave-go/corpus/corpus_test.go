package corpus

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetext/wavetext/wave-golib/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	dir, err := ioutil.TempDir("", "corpus")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	for name, contents := range files {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.txt":       "Strong people\r\nbuild strong nations. They endure!",
		"a.txt":       "The cat sat.\nThe dog sat.",
		"c.html":      "<html><head><title>Ignored.</title></head><body><p>Proud people rarely ask.</p><script>var x = 1;</script></body></html>",
		"sources.txt": "https://example.com/a.txt",
		".hidden":     "Not a book.",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	c, err := Load(dir, DefaultOptions)
	require.NoError(t, err)

	require.Len(t, c.Books, 3)
	assert.Equal(t, "a.txt", c.Books[0].Name)
	assert.Equal(t, "b.txt", c.Books[1].Name)
	assert.Equal(t, "c.html", c.Books[2].Name)

	assert.Equal(t, []string{
		"The cat sat.",
		"The dog sat.",
		"Strong people build strong nations.",
		"They endure!",
		"Proud people rarely ask.",
	}, c.Sentences())

	assert.True(t, c.Size() > 0)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(os.TempDir(), "does-not-exist-wavetext"), DefaultOptions)
	assert.Error(t, err)

	dir := writeFiles(t, map[string]string{"sources.txt": "nothing"})
	_, err = Load(dir, DefaultOptions)
	assert.Equal(t, ErrNoBooks, errors.Cause(err))
}

func TestLoadContextCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "A.", "b.txt": "B."})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadContext(ctx, dir, DefaultOptions)
	assert.Equal(t, context.Canceled, err)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"One line.", "Two lines."}, Split("book.txt", "One\nline. Two\r\nlines."))
	assert.Equal(t, []string{"Hello there."}, Split("page.HTM", "<b>Hello</b> there."))
}

func TestReadBookStripsBOM(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bom.txt": "\xef\xbb\xbfHello there. Bye."})
	b, err := ReadBook(filepath.Join(dir, "bom.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bom.txt", b.Name)
	assert.Equal(t, []string{"Hello there.", "Bye."}, b.Sentences)
}

func TestExists(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "A."})
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "a.txt")))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}
