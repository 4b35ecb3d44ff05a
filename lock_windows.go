//go:build windows

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// lockImage takes a non-blocking exclusive byte range lock covering the whole
// of f and returns the matching unlock.
func lockImage(f *os.File) (func(), error) {
	h := windows.Handle(f.Fd())
	ol := new(windows.Overlapped)
	const flags = windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY
	if err := windows.LockFileEx(h, flags, 0, ^uint32(0), ^uint32(0), ol); err != nil {
		return nil, fmt.Errorf("lock %s: image is in use: %w", f.Name(), err)
	}
	return func() { _ = windows.UnlockFileEx(h, 0, ^uint32(0), ^uint32(0), ol) }, nil
}
