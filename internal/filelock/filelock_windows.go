//go:build windows

package filelock

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

const (
	minRetry = time.Millisecond
	maxRetry = 50 * time.Millisecond
)

// lockFile polls with LOCKFILE_FAIL_IMMEDIATELY. A blocking LockFileEx
// would pin the OS thread and can starve the Go scheduler.
func lockFile(f *os.File) error {
	h := windows.Handle(f.Fd())
	wait := minRetry
	for {
		err := windows.LockFileEx(h,
			windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
			0, 1, 0, new(windows.Overlapped))
		if err == nil {
			return nil
		}
		if !errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return err
		}
		time.Sleep(wait)
		wait = min(2*wait, maxRetry)
	}
}

func unlockFile(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, new(windows.Overlapped))
}
