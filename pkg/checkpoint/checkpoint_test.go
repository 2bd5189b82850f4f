package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "checkpoint_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := Open(DefaultConfig(filepath.Join(tmpDir, "checkpoints.db")))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoundTrip(t *testing.T) {
	store := openTestStore(t)

	want := &Checkpoint{
		Level:          42,
		CurrentSize:    7,
		MainSize:       4,
		P1Size:         2,
		P2Size:         1,
		ProgramsTested: 1234567,
		TimeSpent:      98.765,
		MainIndex:      300,
		P1Index:        17,
		P2Index:        5,
	}
	if err := store.Put(want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Every field must round-trip exactly.
	if *got != *want {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestOverwrite(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(&Checkpoint{Level: 1, CurrentSize: 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(&Checkpoint{Level: 1, CurrentSize: 5}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := store.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentSize != 5 {
		t.Errorf("CurrentSize = %d, want 5 after overwrite", got.CurrentSize)
	}
}

func TestNotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(&Checkpoint{Level: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting a missing checkpoint is fine.
	if err := store.Delete(2); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestLevelsAreIndependent(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(&Checkpoint{Level: 1, CurrentSize: 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(&Checkpoint{Level: 2, CurrentSize: 9}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := store.Get(2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentSize != 9 {
		t.Errorf("level 2 checkpoint disturbed: %+v", got)
	}
}

func TestClosed(t *testing.T) {
	store := openTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := store.Put(&Checkpoint{Level: 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Put on closed = %v, want ErrClosed", err)
	}
	if _, err := store.Get(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Get on closed = %v, want ErrClosed", err)
	}
	if err := store.Delete(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Delete on closed = %v, want ErrClosed", err)
	}
	// Double close is harmless.
	if err := store.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "checkpoint_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, "checkpoints.db")

	store, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := &Checkpoint{Level: 3, CurrentSize: 6, MainIndex: 777}
	if err := store.Put(want); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.Get(3)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if *got != *want {
		t.Fatalf("persistence mismatch:\n got  %+v\n want %+v", got, want)
	}
}
