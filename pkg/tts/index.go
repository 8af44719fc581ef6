package tts

import (
	"errors"
	"log"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// IndexEntry is the metadata the index keeps per cached audio file.
type IndexEntry struct {
	// Key is the cache key (MD5 hex).
	Key string `msgpack:"key"`

	// Text is the message that produced the entry, for `cache list`.
	Text string `msgpack:"text"`

	// Voice and Style record the settings the audio was rendered with.
	Voice string `msgpack:"voice"`
	Style string `msgpack:"style"`

	// Size is the WAV file size in bytes.
	Size int64 `msgpack:"size"`

	// CreatedAt is when the entry was first synthesized.
	CreatedAt time.Time `msgpack:"created_at"`

	// LastAccess is the most recent hit or store, driving LRU pruning.
	LastAccess time.Time `msgpack:"last_access"`
}

// Index is a BadgerDB-backed catalog of cache entries. The WAV files
// remain the source of truth: losing the index loses listing and LRU
// pruning, never audio, so every method degrades to a no-op on a nil
// receiver and the daemon runs fine without it.
type Index struct {
	db *badger.DB
}

// OpenIndex opens (or creates) the index database in dir.
func OpenIndex(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir).WithLogger(indexLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// OpenIndexInMemory opens a memory-only index, for tests.
func OpenIndexInMemory() (*Index, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(indexLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	if ix == nil {
		return nil
	}
	return ix.db.Close()
}

// Record upserts the entry for a freshly stored cache file.
func (ix *Index) Record(e IndexEntry) error {
	if ix == nil {
		return nil
	}
	val, err := msgpack.Marshal(&e)
	if err != nil {
		return err
	}
	return ix.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(e.Key), val)
	})
}

// Touch bumps LastAccess for key. Unknown keys are ignored; the WAV may
// predate the index.
func (ix *Index) Touch(key string, at time.Time) error {
	if ix == nil {
		return nil
	}
	return ix.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var e IndexEntry
		if err := msgpack.Unmarshal(val, &e); err != nil {
			return err
		}
		e.LastAccess = at
		out, err := msgpack.Marshal(&e)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), out)
	})
}

// Delete removes the entry for key.
func (ix *Index) Delete(key string) error {
	if ix == nil {
		return nil
	}
	return ix.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// List returns all entries, most recently used first.
func (ix *Index) List() ([]IndexEntry, error) {
	if ix == nil {
		return nil, nil
	}
	var entries []IndexEntry
	err := ix.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var e IndexEntry
			if err := msgpack.Unmarshal(val, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.After(entries[j].LastAccess)
	})
	return entries, nil
}

// Prune returns the least recently used entries to evict so that the
// total indexed size drops to maxBytes or below. It only selects victims;
// the caller deletes the files and then the index entries.
func (ix *Index) Prune(maxBytes int64) ([]IndexEntry, error) {
	entries, err := ix.List()
	if err != nil {
		return nil, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	var victims []IndexEntry
	for i := len(entries) - 1; i >= 0 && total > maxBytes; i-- {
		victims = append(victims, entries[i])
		total -= entries[i].Size
	}
	return victims, nil
}

// indexLogger routes badger errors to the process log and drops the rest.
type indexLogger struct{}

func (indexLogger) Errorf(f string, v ...interface{})   { log.Printf("[index] ERROR: "+f, v...) }
func (indexLogger) Warningf(f string, v ...interface{}) { log.Printf("[index] WARN: "+f, v...) }
func (indexLogger) Infof(string, ...interface{})        {}
func (indexLogger) Debugf(string, ...interface{})       {}
