// Package craftlock wraps the advisory exclusive lock spec.md §5 requires
// on `<db>/.lock` for the duration of any mutating operation, built on
// github.com/theckman/go-flock (vendored by the teacher for its own
// project-directory locking needs).
package craftlock

import (
	"github.com/pkg/errors"
	"github.com/theckman/go-flock"
)

// Lock is an exclusive advisory lock on a single file path.
type Lock struct {
	flock *flock.Flock
}

// New returns a Lock over path. The file is created on first Acquire if it
// does not already exist.
func New(path string) *Lock {
	return &Lock{flock: flock.NewFlock(path)}
}

// Acquire blocks until the lock is held.
func (l *Lock) Acquire() error {
	if err := l.flock.Lock(); err != nil {
		return errors.Wrapf(err, "acquiring lock %q", l.flock.Path())
	}
	return nil
}

// TryAcquire attempts to acquire the lock without blocking, reporting
// whether it succeeded.
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.flock.TryLock()
	if err != nil {
		return false, errors.Wrapf(err, "acquiring lock %q", l.flock.Path())
	}
	return ok, nil
}

// Release drops the lock. Safe to call even if Acquire was never called.
func (l *Lock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	return errors.Wrapf(l.flock.Unlock(), "releasing lock %q", l.flock.Path())
}
