// Package results provides the BadgerDB-backed benchmark results store.
//
// Each record describes one solve attempt for a level: which solver ran,
// what it found and how much work it took. Execution traces are stored
// as separate zstd-compressed blobs so that listing records stays cheap.
package results

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/slices"
)

// Key prefixes for BadgerDB storage.
// Using prefixes allows efficient iteration over specific data types.
var (
	// prefixRecord is the prefix for solve records.
	// Key format: prefixRecord + level (8 bytes, big-endian) + solver name
	prefixRecord = []byte{0x01}

	// prefixTrace is the prefix for compressed execution traces.
	// Key format: prefixTrace + level (8 bytes, big-endian) + solver name
	prefixTrace = []byte{0x02}
)

// Sentinel errors.
var (
	// ErrNotFound indicates no record exists for the level and solver.
	ErrNotFound = fmt.Errorf("results: record not found")

	// ErrClosed indicates the store has been closed.
	ErrClosed = fmt.Errorf("results: store closed")
)

// Record is the outcome of one solve attempt.
type Record struct {
	// Level is the level identifier.
	Level uint64

	// Solver names the strategy that ran (bfs, ids, procedure, resumable).
	Solver string

	// Program is the textual form of the solution, empty when unsolved.
	Program string

	// TotalSize is the solution's instruction count across all parts.
	TotalSize int

	// FlatLength is the minimal flat sequence length, when known.
	FlatLength int

	// ProgramsTested counts candidate programs executed.
	ProgramsTested int64

	// TimeSeconds is the wall-clock time spent, cumulative over resumes.
	TimeSeconds float64

	// Solved reports whether a solution was found.
	Solved bool
}

// Config contains configuration for the results store.
type Config struct {
	// Path is the directory path for the database.
	Path string

	// InMemory runs the database in memory (for testing).
	InMemory bool

	// SyncWrites ensures writes are synced to disk.
	SyncWrites bool

	// Logger is an optional badger logger. Nil disables logging.
	Logger badger.Logger
}

// DefaultConfig returns default store configuration.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		InMemory:   false,
		SyncWrites: false,
		Logger:     nil,
	}
}

// Store is a BadgerDB-backed results database. Records are gob-encoded;
// traces are zstd-compressed. A single encoder/decoder pair is shared,
// both are safe for concurrent use via EncodeAll/DecodeAll.
type Store struct {
	db *badger.DB

	enc *zstd.Encoder
	dec *zstd.Decoder

	closed atomic.Bool
}

// Open opens or creates a results store.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(cfg.Logger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// recordKey returns the BadgerDB key for a solve record.
func recordKey(level uint64, solver string) []byte {
	key := make([]byte, 0, 1+8+len(solver))
	key = append(key, prefixRecord[0])
	key = binary.BigEndian.AppendUint64(key, level)
	return append(key, solver...)
}

// traceKey returns the BadgerDB key for a trace blob.
func traceKey(level uint64, solver string) []byte {
	key := make([]byte, 0, 1+8+len(solver))
	key = append(key, prefixTrace[0])
	key = binary.BigEndian.AppendUint64(key, level)
	return append(key, solver...)
}

// Put stores a solve record, overwriting any previous one for the same
// level and solver.
func (s *Store) Put(r *Record) error {
	if s.closed.Load() {
		return ErrClosed
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(r.Level, r.Solver), buf.Bytes())
	})
}

// Get retrieves the record for a level and solver.
func (s *Store) Get(level uint64, solver string) (*Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var rec *Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(level, solver))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var r Record
			if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&r); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			rec = &r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PutTrace stores an execution trace for a level and solver. The trace
// is compressed before writing; a nil or empty trace deletes the blob.
func (s *Store) PutTrace(level uint64, solver string, trace []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	if len(trace) == 0 {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(traceKey(level, solver))
		})
	}

	compressed := s.enc.EncodeAll(trace, nil)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(traceKey(level, solver), compressed)
	})
}

// GetTrace retrieves and decompresses a stored execution trace.
func (s *Store) GetTrace(level uint64, solver string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var trace []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(traceKey(level, solver))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			trace, err = s.dec.DecodeAll(val, nil)
			if err != nil {
				return fmt.Errorf("decompress trace: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return trace, nil
}

// Delete removes the record and any trace for a level and solver.
func (s *Store) Delete(level uint64, solver string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(recordKey(level, solver)); err != nil {
			return err
		}
		return txn.Delete(traceKey(level, solver))
	})
}

// Iterate walks all records in key order (by level, then solver name).
// Return an error from the callback to stop iteration.
func (s *Store) Iterate(fn func(*Record) error) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixRecord
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r Record
				if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&r); err != nil {
					return fmt.Errorf("decode record: %w", err)
				}
				return fn(&r)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Unsolved returns the level identifiers that have at least one record
// and no solving record from any solver, sorted ascending. This is the
// retry worklist.
func (s *Store) Unsolved() ([]uint64, error) {
	attempted := make(map[uint64]bool) // level -> any record solved
	err := s.Iterate(func(r *Record) error {
		if r.Solved {
			attempted[r.Level] = true
		} else if !attempted[r.Level] {
			attempted[r.Level] = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []uint64
	for level, solved := range attempted {
		if !solved {
			out = append(out, level)
		}
	}
	slices.Sort(out)
	return out, nil
}
