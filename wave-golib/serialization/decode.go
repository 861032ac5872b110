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

// Decoder is an interface that matches gob.Decoder and json.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

// Decode loads an object from a file into obj, which must be a pointer. If
// the path ends with .gz or .sz then the contents will be decompressed. The
// encoding is then determined by the remaining file extension, which can be
// .json or .gob.
func Decode(path string, obj interface{}) error {
	r, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	defer r.Close()
	return DecodeAs(r, path, obj)
}

// DecodeAs is like Decode but reads from r, using path only to determine the
// compression and encoding.
func DecodeAs(r io.Reader, path string, obj interface{}) error {
	inpath := path
	// Switch on compression
	switch {
	case strings.HasSuffix(path, ".gz"):
		path = strings.TrimSuffix(path, ".gz")
		rd, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "error loading %s", inpath)
		}
		defer rd.Close()
		r = rd
	case strings.HasSuffix(path, ".sz"):
		path = strings.TrimSuffix(path, ".sz")
		r = snappy.NewReader(r)
	}

	// Switch on encoding
	var d Decoder
	switch {
	case strings.HasSuffix(path, ".json"):
		d = json.NewDecoder(r)
	case strings.HasSuffix(path, ".gob"):
		d = gob.NewDecoder(r)
	default:
		return fmt.Errorf("could not find decoder for %s", inpath)
	}
	return errors.WrapfOrNil(d.Decode(obj), "error decoding %s", inpath)
}
