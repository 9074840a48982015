package filelock

import (
	"path/filepath"
	"testing"
)

func TestLockUnlockReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := Lock(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := unlock(); err != nil {
		t.Fatal(err)
	}

	// Once released the lock is immediately available again.
	unlock, err = Lock(path)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if err := unlock(); err != nil {
		t.Fatal(err)
	}
}
