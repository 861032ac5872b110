package languagemodel

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/wavetext/wavetext/wave-golib/errors"
)

const levelDBSuffix = ".leveldb"

var (
	metaKey         = []byte("meta")
	weightKeyPrefix = "w\x00"
)

type levelDBMeta struct {
	MaxDist        int  `json:"max_dist"`
	FrameSentences bool `json:"frame_sentences"`
	Sentences      int  `json:"sentences"`
}

// weightKey is "w\x00<distance>\x00<anchor>".
func weightKey(d int, word string) []byte {
	return []byte(weightKeyPrefix + strconv.Itoa(d) + "\x00" + word)
}

func parseWeightKey(key []byte) (int, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(string(key), weightKeyPrefix), "\x00", 2)
	if len(parts) != 2 {
		return 0, "", errors.Errorf("malformed weight key %q", key)
	}
	d, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", errors.Wrapf(err, "malformed weight key %q", key)
	}
	return d, parts[1], nil
}

// freezeLevelDB writes one record per (distance, anchor) holding the JSON
// neighbor map, plus a metadata record.
func (m *AdjacencyModel) freezeLevelDB(path string) (err error) {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return err
	}
	defer errors.Defer(&err, db.Close)

	meta, err := json.Marshal(levelDBMeta{
		MaxDist:        m.opts.MaxDist,
		FrameSentences: m.opts.FrameSentences,
		Sentences:      m.sentences,
	})
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(metaKey, meta)
	for d, table := range m.weights {
		for w, neighbors := range table {
			val, err := json.Marshal(neighbors)
			if err != nil {
				return err
			}
			batch.Put(weightKey(d, w), val)
		}
	}
	return db.Write(batch, nil)
}

func loadLevelDB(path string) (f *frozen, err error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ReadOnly:       true,
		ErrorIfMissing: true,
	})
	if err != nil {
		return nil, err
	}
	defer errors.Defer(&err, db.Close)

	raw, err := db.Get(metaKey, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "missing model metadata")
	}
	var meta levelDBMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}

	f = &frozen{
		MaxDist:        meta.MaxDist,
		FrameSentences: meta.FrameSentences,
		Sentences:      meta.Sentences,
		Weights:        make(map[int]Table),
	}

	it := db.NewIterator(util.BytesPrefix([]byte(weightKeyPrefix)), nil)
	defer it.Release()
	for it.Next() {
		d, w, err := parseWeightKey(it.Key())
		if err != nil {
			return nil, err
		}
		var neighbors Neighbors
		if err := json.Unmarshal(it.Value(), &neighbors); err != nil {
			return nil, errors.Wrapf(err, "error decoding neighbors of %q at distance %d", w, d)
		}
		if f.Weights[d] == nil {
			f.Weights[d] = make(Table)
		}
		f.Weights[d][w] = neighbors
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return f, nil
}
