// Package filelock provides advisory file locks that serialize writers of
// the tracker's data files across processes.
package filelock

import (
	"errors"
	"os"
)

const lockFileMode = 0o600

// Lock acquires an exclusive advisory lock on the file at path, creating it
// if needed, and blocks until the lock is free. The returned function
// releases the lock.
//
// Locks are per open file: taking the same lock twice in one process
// deadlocks.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from tracker dir
	if err != nil {
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		return errors.Join(unlockFile(f), f.Close())
	}, nil
}

// WithLock runs fn while holding the lock at path. The error from fn takes
// precedence over an unlock error.
func WithLock(path string, fn func() error) error {
	unlock, err := Lock(path)
	if err != nil {
		return err
	}

	fnErr := fn()
	unlockErr := unlock()
	if fnErr != nil {
		return fnErr
	}
	return unlockErr
}
