package dirlock

import (
	"path/filepath"
	"testing"
)

func TestAcquireThenSecondFails(t *testing.T) {
	dir := t.TempDir()

	l1, err := Acquire(dir)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer l1.Unlock()

	if _, err := Acquire(dir); err == nil {
		t.Fatal("expected second Acquire on same directory to fail")
	}
}

func TestUnlockThenReacquire(t *testing.T) {
	dir := t.TempDir()

	l1, err := Acquire(dir)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := l1.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	l2, err := Acquire(dir)
	if err != nil {
		t.Fatalf("re-Acquire after Unlock: %v", err)
	}
	l2.Unlock()
}

func TestAcquireCreatesLockFile(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Unlock()
	if l.path != filepath.Join(dir, lockFileName) {
		t.Errorf("lock path = %s", l.path)
	}
}
