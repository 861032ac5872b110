package languagemodel

import (
	"io"
	"strings"

	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/serialization"
	"github.com/wavetext/wavetext/wave-golib/text"
)

// streamFormat is the encoding used by WriteTo and ReadFrom.
const streamFormat = "model.gob.sz"

// frozen is the serialized form of an AdjacencyModel.
type frozen struct {
	MaxDist        int
	FrameSentences bool
	Sentences      int
	Weights        map[int]Table
}

func (m *AdjacencyModel) frozen() *frozen {
	return &frozen{
		MaxDist:        m.opts.MaxDist,
		FrameSentences: m.opts.FrameSentences,
		Sentences:      m.sentences,
		Weights:        m.weights,
	}
}

// thaw rebuilds a model from its serialized form. Every anchor seen at any
// distance gets a (possibly empty) neighbor map at every distance, since
// encoders may drop empty maps.
func thaw(f *frozen) (*AdjacencyModel, error) {
	m, err := NewAdjacencyModel(Options{MaxDist: f.MaxDist, FrameSentences: f.FrameSentences})
	if err != nil {
		return nil, err
	}
	if f.Sentences < 0 {
		return nil, errors.Errorf("invalid sentence count %d", f.Sentences)
	}
	if len(f.Weights) == 0 {
		return m, nil
	}

	vocab := make(map[string]struct{})
	for d, table := range f.Weights {
		if d == 0 || d < -f.MaxDist || d > f.MaxDist {
			return nil, errors.Errorf("distance %d outside window of %d", d, f.MaxDist)
		}
		for w, neighbors := range table {
			vocab[w] = struct{}{}
			for _, wt := range neighbors {
				if wt < 0 {
					return nil, errors.Errorf("negative weight for %q at distance %d", w, d)
				}
			}
		}
	}

	weights := m.newTable(vocab)
	for d, table := range f.Weights {
		for w, neighbors := range table {
			for n, wt := range neighbors {
				weights[d][w][n] = wt
			}
		}
	}
	m.weights = weights
	m.sentences = f.Sentences
	return m, nil
}

// Freeze writes the model to path. Paths ending in .leveldb are written as a
// leveldb database (replacing any database already there); any other path is
// handed to serialization.Encode, so .json, .gob and their .gz/.sz
// compressed variants are supported.
func (m *AdjacencyModel) Freeze(path string) error {
	if strings.HasSuffix(path, levelDBSuffix) {
		return errors.WrapfOrNil(m.freezeLevelDB(path), "error freezing model to %s", path)
	}
	return errors.WrapfOrNil(serialization.Encode(path, m.frozen()), "error freezing model to %s", path)
}

// Load reads a model written by Freeze. The loaded model tokenizes with
// text.WordTokenizer.
func Load(path string) (*AdjacencyModel, error) {
	var f *frozen
	var err error
	if strings.HasSuffix(path, levelDBSuffix) {
		f, err = loadLevelDB(path)
	} else {
		f = new(frozen)
		err = serialization.Decode(path, f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error loading model from %s", path)
	}
	m, err := thaw(f)
	return m, errors.WrapfOrNil(err, "error loading model from %s", path)
}

// WriteTo streams the model as snappy-compressed gob.
func (m *AdjacencyModel) WriteTo(w io.Writer) (n int64, err error) {
	cw := &countingWriter{w: w}
	enc, err := serialization.NewStreamEncoder(cw, streamFormat)
	if err != nil {
		return 0, err
	}
	defer func() { n = cw.n }()
	defer errors.Defer(&err, enc.Close)
	return 0, enc.Encode(m.frozen())
}

// ReadFrom replaces the contents of an empty model with a model streamed by
// WriteTo. The receiver's tokenizer is kept.
func (m *AdjacencyModel) ReadFrom(r io.Reader) (int64, error) {
	if m.Fitted() {
		return 0, ErrAlreadyFitted
	}
	cr := &countingReader{r: r}
	var f frozen
	if err := serialization.DecodeAs(cr, streamFormat, &f); err != nil {
		return cr.n, err
	}
	loaded, err := thaw(&f)
	if err != nil {
		return cr.n, err
	}
	tok := m.tokenizer
	*m = *loaded
	if tok != nil {
		m.tokenizer = tok
	}
	return cr.n, nil
}

// Read returns a model streamed by WriteTo.
func Read(r io.Reader) (*AdjacencyModel, error) {
	m := &AdjacencyModel{tokenizer: text.WordTokenizer{}}
	if _, err := m.ReadFrom(r); err != nil {
		return nil, err
	}
	return m, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
