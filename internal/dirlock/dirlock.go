// Package dirlock holds one advisory lock per destination directory for the
// duration of a pull or sync, so two concurrent invocations against the
// same directory don't interleave writes.
package dirlock

import (
	"os"
	"path/filepath"

	"github.com/binrep/binrep/internal/binreperr"
)

const lockFileName = ".binrep.lock"

// Lock is a held advisory lock on a directory. Release it with Unlock.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes a non-blocking advisory lock on dir. It never retries: if
// the lock is already held, it returns binreperr.Locked immediately.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, binreperr.Config("cannot create destination directory", err)
	}
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, binreperr.Config("cannot open lock file", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, binreperr.Locked(dir)
	}
	return &Lock{f: f, path: path}, nil
}

// Unlock releases the lock and closes the underlying file handle. The lock
// file itself is left in place; only the advisory lock is released.
func (l *Lock) Unlock() error {
	if l == nil {
		return nil
	}
	if err := unlockFile(l.f); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
