// Package diskcache is a size-bounded, filesystem-backed cache. When the
// total size of the cache would exceed its budget, the least recently
// written entries are removed first.
package diskcache

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"

	spooky "github.com/dgryski/go-spooky"
	"github.com/wavetext/wavetext/wave-golib/errors"
)

// ErrNoSuchKey is returned by Cache.Get when a key does not exist in the cache
var ErrNoSuchKey = errors.New("key does not exist in cache")

// Options represents options for a cache
type Options struct {
	MaxSize         int64 // MaxSize is the maximum total size of the cache in bytes
	BytesUntilFlush int64 // bytes written between checks of MaxSize
}

// DefaultOptions allows 1GB of cached models, checked after every write.
var DefaultOptions = Options{
	MaxSize:         1 << 30,
	BytesUntilFlush: 0,
}

// Cache represents a disk-based cache. It is not safe for concurrent writers.
type Cache struct {
	Path            string
	opts            Options
	bytesSinceFlush int64
}

// Open creates a cache with contents stored as files in the given directory.
// It creates the directory if it does not already exist.
func Open(path string, opts Options) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		Path: path,
		opts: opts,
	}, nil
}

// Key derives a cache key from a 64-bit fingerprint.
func Key(fingerprint uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], fingerprint)
	return buf[:]
}

// GetReader looks up the value for the given key and returns a reader to it.
// If the key does not exist then ErrNoSuchKey is returned.
func (c *Cache) GetReader(key []byte) (io.ReadCloser, error) {
	r, err := os.Open(c.pathFor(key))
	if os.IsNotExist(err) {
		return nil, ErrNoSuchKey
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Exists reports whether the key exists.
func (c *Cache) Exists(key []byte) bool {
	_, err := os.Stat(c.pathFor(key))
	return err == nil
}

// PutWriter returns a writer for the value of key. The entry becomes visible
// under key only once the writer is closed without error, so readers never
// observe a partial value.
func (c *Cache) PutWriter(key []byte) (io.WriteCloser, error) {
	f, err := ioutil.TempFile(c.Path, ".put-")
	if err != nil {
		return nil, err
	}
	return &putWriter{f: f, c: c, dest: c.pathFor(key)}, nil
}

// Remove deletes key from the cache; removing a missing key is not an error.
func (c *Cache) Remove(key []byte) error {
	err := os.Remove(c.pathFor(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

type putWriter struct {
	f       *os.File
	c       *Cache
	dest    string
	written int64
	failed  bool
}

func (p *putWriter) Write(buf []byte) (int, error) {
	n, err := p.f.Write(buf)
	p.written += int64(n)
	if err != nil {
		p.failed = true
	}
	return n, err
}

func (p *putWriter) Close() error {
	if err := p.f.Close(); err != nil || p.failed {
		os.Remove(p.f.Name())
		return errors.Wrapf(err, "error writing cache entry")
	}

	p.c.bytesSinceFlush += p.written
	if p.c.bytesSinceFlush > p.c.opts.BytesUntilFlush {
		if err := p.c.flushCapacity(p.written); err != nil {
			log.Printf("error cleaning up cache: %v", err)
		} else {
			p.c.bytesSinceFlush = 0
		}
	}
	return os.Rename(p.f.Name(), p.dest)
}

// flushCapacity deletes old entries until there are at least n bytes left
// in the cache budget.
func (c *Cache) flushCapacity(n int64) error {
	files, err := c.entries()
	if err != nil {
		return err
	}

	var sum int64
	for _, f := range files {
		sum += f.Size()
	}
	if sum+n <= c.opts.MaxSize {
		return nil
	}

	sort.Sort(byModTime(files))
	for _, f := range files {
		if err := os.Remove(filepath.Join(c.Path, f.Name())); err != nil {
			return err
		}
		sum -= f.Size()
		if sum+n <= c.opts.MaxSize {
			break
		}
	}
	return nil
}

// entries lists committed entries, skipping in-flight temp files.
func (c *Cache) entries() ([]os.FileInfo, error) {
	all, err := ioutil.ReadDir(c.Path)
	if err != nil {
		return nil, err
	}
	var files []os.FileInfo
	for _, f := range all {
		if f.IsDir() || f.Name()[0] == '.' {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func (c *Cache) pathFor(key []byte) string {
	return filepath.Join(c.Path, hash(key))
}

type byModTime []os.FileInfo

func (xs byModTime) Len() int           { return len(xs) }
func (xs byModTime) Swap(i, j int)      { xs[i], xs[j] = xs[j], xs[i] }
func (xs byModTime) Less(i, j int) bool { return xs[i].ModTime().Before(xs[j].ModTime()) }

func hash(key []byte) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], spooky.Hash64(key))
	return hex.EncodeToString(buf[:])
}
