package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/wavetext/wavetext/wave-golib/errors"
)

// Encode writes the object to the path, using the format specified by the file
// extension, which can be .json or .gob. The path may additionally have a .gz
// (gzip) or .sz (snappy) suffix, in which case the stream will be compressed.
func Encode(path string, obj interface{}) (err error) {
	enc, err := NewEncoder(path)
	if err != nil {
		return err
	}
	defer errors.Defer(&err, enc.Close)
	return enc.Encode(obj)
}

// Encoder is an interface that matches gob.Encoder and json.Encoder
type Encoder interface {
	// Encode adds an item to the stream
	Encode(interface{}) error
}

// EncodeCloser is an encoder that can also close its underlying stream
type EncodeCloser struct {
	encoder Encoder
	closers []io.Closer
}

// Encode writes an object to the underlying stream
func (e *EncodeCloser) Encode(x interface{}) error {
	return e.encoder.Encode(x)
}

// Close flushes and closes the underlying streams, innermost first.
func (e *EncodeCloser) Close() error {
	var err error
	for i := len(e.closers) - 1; i >= 0; i-- {
		err = errors.Combine(err, e.closers[i].Close())
	}
	return err
}

// NewEncoder opens the specified path and returns an encoder that writes in the
// format specified by the file extension; see Encode.
func NewEncoder(path string) (*EncodeCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := newEncoderAs(f, path)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	enc.closers = append([]io.Closer{f}, enc.closers...)
	return enc, nil
}

// NewStreamEncoder is like NewEncoder but writes to w, using name only to
// pick the compression and encoding. Closing the returned encoder does not
// close w.
func NewStreamEncoder(w io.Writer, name string) (*EncodeCloser, error) {
	return newEncoderAs(w, name)
}

func newEncoderAs(w io.Writer, path string) (*EncodeCloser, error) {
	inpath := path
	var closers []io.Closer

	// Switch on compression
	switch {
	case strings.HasSuffix(path, ".gz"):
		path = strings.TrimSuffix(path, ".gz")
		gz := gzip.NewWriter(w)
		closers = append(closers, gz)
		w = gz
	case strings.HasSuffix(path, ".sz"):
		path = strings.TrimSuffix(path, ".sz")
		sz := snappy.NewBufferedWriter(w)
		closers = append(closers, sz)
		w = sz
	}

	// Switch on encoding
	var e Encoder
	switch {
	case strings.HasSuffix(path, ".json"):
		e = json.NewEncoder(w)
	case strings.HasSuffix(path, ".gob"):
		e = gob.NewEncoder(w)
	default:
		return nil, fmt.Errorf("could not find encoder for %s", inpath)
	}

	return &EncodeCloser{
		encoder: e,
		closers: closers,
	}, nil
}
