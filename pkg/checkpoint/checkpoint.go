// Package checkpoint provides durable storage for resumable-search
// checkpoints.
//
// A checkpoint records the exact position inside the procedure-search
// enumeration (current total size, active size distribution and the
// three odometer indices) plus the cumulative counters, keyed by level
// identifier. Writing then reading a checkpoint yields identical values;
// resume correctness depends on it.
package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	// ErrNotFound is returned when no checkpoint exists for a level.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("checkpoint store closed")
)

// bucketCheckpoints holds gob-encoded checkpoints keyed by level id.
var bucketCheckpoints = []byte("checkpoints")

// Checkpoint is the resumable-search position for one level.
type Checkpoint struct {
	// Level identifies the level the search belongs to.
	Level uint64

	// CurrentSize is the total program size being searched.
	CurrentSize int

	// MainSize, P1Size and P2Size form the active size distribution.
	MainSize int
	P1Size   int
	P2Size   int

	// ProgramsTested is the cumulative candidate count across sessions.
	ProgramsTested int64

	// TimeSpent is the cumulative wall-clock seconds across sessions.
	TimeSpent float64

	// MainIndex, P1Index and P2Index address the next untested
	// candidate in the canonical enumeration of the active distribution.
	MainIndex int64
	P1Index   int64
	P2Index   int64
}

// Config holds store configuration.
type Config struct {
	// Path is the database file path.
	Path string

	// Timeout bounds how long opening waits for the file lock.
	Timeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig(path string) Config {
	return Config{Path: path, Timeout: 5 * time.Second}
}

// Store is a bbolt-backed checkpoint store. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	closed bool
}

// Open opens or creates the checkpoint database.
func Open(config Config) (*Store, error) {
	db, err := bolt.Open(config.Path, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCheckpoints)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store. Further operations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func levelKey(level uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], level)
	return key[:]
}

// Put stores the checkpoint for its level, replacing any existing one.
func (s *Store) Put(cp *Checkpoint) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cp); err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCheckpoints).Put(levelKey(cp.Level), buf.Bytes())
	})
}

// Get returns the checkpoint for a level, or ErrNotFound. A record that
// fails to decode is reported as ErrNotFound as well: a corrupt
// checkpoint is indistinguishable from a missing one to callers, which
// start fresh either way.
func (s *Store) Get(level uint64) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var cp Checkpoint
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCheckpoints).Get(levelKey(level))
		if data == nil {
			return ErrNotFound
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cp); err != nil {
			return fmt.Errorf("%w: decode: %v", ErrNotFound, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Delete removes the checkpoint for a level. Deleting a missing
// checkpoint is not an error.
func (s *Store) Delete(level uint64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCheckpoints).Delete(levelKey(level))
	})
}
