// Package filelock provides advisory file locking so concurrent lifereset
// processes do not hand out the same task ID.
package filelock

import (
	"fmt"
	"os"
)

const lockFileMode = 0o600

// Suffix is appended to a guarded file's path to name its lock file.
const Suffix = ".lock"

// Lock acquires an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases
// the lock and must be called when the critical section is done.
//
// Other callers block until the lock is available.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from planner dir
	if err != nil {
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

// Guard runs fn while holding the lock for guarded, which is the path of
// the file being protected (the lock itself lives at guarded+Suffix).
func Guard(guarded string, fn func() error) (err error) {
	unlock, err := Lock(guarded + Suffix)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("releasing lock: %w", uerr)
		}
	}()
	return fn()
}
