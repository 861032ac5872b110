package main

import (
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/wavetext/wavetext/wave-go/corpus"
	"github.com/wavetext/wavetext/wave-golib/cmdline"
	"github.com/wavetext/wavetext/wave-golib/diskcache"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
	"github.com/wavetext/wavetext/wave-golib/text"
	"github.com/wavetext/wavetext/wave-golib/wavelog"
)

var fitCmd = cmdline.Command{
	Name:     "fit",
	Synopsis: "fit an adjacency model on a directory of books and freeze it",
	Args: &fitArgs{
		Texts:   "text",
		Out:     "model.gob.sz",
		MaxDist: languagemodel.DefaultOptions.MaxDist,
	},
}

type fitArgs struct {
	Texts   string `arg:"env:WAVETEXT_TEXTS" help:"directory of books to fit on"`
	Out     string `help:"where to freeze the model (.json, .gob, .gz, .sz or .leveldb)"`
	MaxDist int    `help:"largest word separation counted"`
	Frame   bool   `help:"count sentence boundaries with start and end sentinels"`
	Stem    bool   `help:"stem words before counting"`
	Cache   string `arg:"env:WAVETEXT_CACHE" help:"directory caching fitted models by corpus fingerprint"`
}

func (a *fitArgs) Validate() error {
	if a.MaxDist < 1 {
		return errors.Errorf("--maxdist must be positive, got %d", a.MaxDist)
	}
	if !corpus.Exists(a.Texts) {
		return errors.Errorf("--texts %s is not a directory", a.Texts)
	}
	if a.Out == "" {
		return errors.Errorf("--out is required")
	}
	return nil
}

func (a *fitArgs) Handle() error {
	logger := wavelog.Basic.WithDurations()
	defer logger.Durations.Flush(logger)

	m, err := fit(a, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := m.Freeze(a.Out); err != nil {
		return err
	}
	logger.Durations.Since("freeze", start)
	logger.Printf("froze %s words at %d distances to %s", humanize.Comma(int64(m.Len())), len(m.Distances()), a.Out)
	return nil
}

func (a *fitArgs) options() languagemodel.Options {
	return languagemodel.Options{
		MaxDist:        a.MaxDist,
		FrameSentences: a.Frame,
	}
}

func (a *fitArgs) tokenizer() (string, text.Tokenizer) {
	if a.Stem {
		return "stem", text.NewStemmingTokenizer()
	}
	return "words", text.WordTokenizer{}
}

// fit loads the corpus and returns its model, from the cache when one was
// already fitted on the same corpus with the same options.
func fit(a *fitArgs, logger *wavelog.Logger) (*languagemodel.AdjacencyModel, error) {
	start := time.Now()
	books, err := corpus.Load(a.Texts, corpus.DefaultOptions)
	if err != nil {
		return nil, err
	}
	sentences := books.Sentences()
	logger.Durations.Since("load corpus", start)
	logger.Printf("read %d books (%s), %s sentences", len(books.Books),
		humanize.Bytes(uint64(books.Size())), humanize.Comma(int64(len(sentences))))

	name, tok := a.tokenizer()
	opts := a.options()
	logLengths(logger, tok, sentences)

	var cache *diskcache.Cache
	var key []byte
	if a.Cache != "" {
		cache, err = diskcache.Open(a.Cache, diskcache.DefaultOptions)
		if err != nil {
			return nil, errors.Wrapf(err, "error opening cache")
		}
		key = diskcache.Key(languagemodel.Fingerprint(opts, name, sentences))
		if m, err := readCached(cache, key); err == nil {
			logger.Durations.Since("cache hit", start)
			return m, nil
		} else if errors.Cause(err) != diskcache.ErrNoSuchKey {
			logger.Println("ignoring unreadable cache entry:", err)
		}
	}

	start = time.Now()
	m, err := languagemodel.NewAdjacencyModel(opts)
	if err != nil {
		return nil, err
	}
	m.SetTokenizer(tok)
	if err := m.Fit(sentences); err != nil {
		return nil, err
	}
	logger.Durations.Since("fit", start)

	if cache != nil {
		if err := writeCached(cache, key, m); err != nil {
			logger.Println("error caching model:", err)
		}
	}
	return m, nil
}

func readCached(cache *diskcache.Cache, key []byte) (m *languagemodel.AdjacencyModel, err error) {
	if !cache.Exists(key) {
		return nil, diskcache.ErrNoSuchKey
	}
	r, err := cache.GetReader(key)
	if err != nil {
		return nil, err
	}
	defer errors.Defer(&err, r.Close)
	return languagemodel.Read(r)
}

func writeCached(cache *diskcache.Cache, key []byte, m *languagemodel.AdjacencyModel) error {
	w, err := cache.PutWriter(key)
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(w); err != nil {
		w.Close()
		return errors.Combine(err, cache.Remove(key))
	}
	return w.Close()
}

// logLengths logs the distribution of sentence lengths in words.
func logLengths(logger wavelog.Interface, tok text.Tokenizer, sentences []string) {
	lengths := make(stats.Float64Data, 0, len(sentences))
	for _, s := range sentences {
		lengths = append(lengths, float64(len(tok.Tokenize(s))))
	}
	median, err := lengths.Median()
	if err != nil {
		return
	}
	mean, _ := lengths.Mean()
	max, _ := lengths.Max()
	logger.Printf("sentence length: median %.0f, mean %.1f, max %.0f words", median, mean, max)
}
