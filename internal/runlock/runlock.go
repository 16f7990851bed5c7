// Package runlock keeps two processes from polling against the same
// database at once.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is an exclusive, non-blocking file lock.
type Lock struct {
	fl *flock.Flock
}

// PathFor is the lock file guarding dbPath.
func PathFor(dbPath string) string { return dbPath + ".lock" }

func New(path string) *Lock {
	return &Lock{fl: flock.New(path)}
}

func (l *Lock) Path() string { return l.fl.Path() }

// TryLock returns false without error when another holder has the lock.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return false, fmt.Errorf("run lock dir: %w", err)
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("run lock %s: %w", l.fl.Path(), err)
	}
	return ok, nil
}

func (l *Lock) Unlock() error { return l.fl.Unlock() }
