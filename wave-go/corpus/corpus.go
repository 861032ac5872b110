// Package corpus reads the sentences of a directory of books.
package corpus

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/ssor/bom"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/text"
	"github.com/wavetext/wavetext/wave-golib/workerpool"
)

// ErrNoBooks is returned when a directory holds no readable books.
var ErrNoBooks = errors.New("no books found")

// Options configures Load.
type Options struct {
	// Skip lists file names that are not books.
	Skip []string
	// NumGo is the number of files read concurrently.
	NumGo int
}

// DefaultOptions skips the sources listing that ships next to the books.
var DefaultOptions = Options{
	Skip:  []string{"sources.txt"},
	NumGo: runtime.NumCPU(),
}

// Book is one file of the corpus.
type Book struct {
	Name      string
	Size      int64
	Sentences []string
}

// Corpus is the set of books read from a directory, ordered by file name.
type Corpus struct {
	Dir   string
	Books []Book
}

// Sentences returns the sentences of every book, in order.
func (c *Corpus) Sentences() []string {
	var out []string
	for _, b := range c.Books {
		out = append(out, b.Sentences...)
	}
	return out
}

// Size is the total size of the books in bytes.
func (c *Corpus) Size() int64 {
	var n int64
	for _, b := range c.Books {
		n += b.Size
	}
	return n
}

// Load reads every regular file in dir, except hidden files and those named
// in opts.Skip. HTML files (.html, .htm) are reduced to their visible text.
// The first book that cannot be read stops the remaining reads.
func Load(dir string, opts Options) (*Corpus, error) {
	return LoadContext(context.Background(), dir, opts)
}

// LoadContext is Load, abandoning unread books once ctx is done.
func LoadContext(ctx context.Context, dir string, opts Options) (*Corpus, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading corpus directory")
	}

	skip := make(map[string]bool, len(opts.Skip))
	for _, name := range opts.Skip {
		skip[name] = true
	}

	var names []string
	for _, info := range infos {
		name := info.Name()
		if !info.Mode().IsRegular() || skip[name] || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(ErrNoBooks, "in %s", dir)
	}
	sort.Strings(names)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	books := make([]Book, len(names))
	jobs := make([]workerpool.Job, 0, len(names))
	for i, name := range names {
		i, name := i, name
		jobs = append(jobs, func() error {
			b, err := ReadBook(filepath.Join(dir, name))
			if err != nil {
				cancel()
				return err
			}
			books[i] = b
			return nil
		})
	}

	pool := workerpool.NewWithCtx(ctx, opts.NumGo)
	defer pool.Stop()
	pool.AddBlocking(jobs)
	if err := pool.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Corpus{Dir: dir, Books: books}, nil
}

// ReadBook reads and splits a single file, dropping any byte order mark.
func ReadBook(path string) (Book, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return Book{}, errors.Wrapf(err, "error reading %s", path)
	}
	buf = bom.CleanBom(buf)
	return Book{
		Name:      filepath.Base(path),
		Size:      int64(len(buf)),
		Sentences: Split(path, string(buf)),
	}, nil
}

// Split returns the sentences of a document; name selects the HTML path by
// extension.
func Split(name, doc string) []string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		doc = text.HTMLText(doc)
	}
	doc = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(doc)
	return text.SplitSentences(doc)
}

// Exists reports whether dir is a directory.
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
