//go:build !windows

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockImage takes a non-blocking exclusive flock on f and returns the
// matching unlock.
func lockImage(f *os.File) (func(), error) {
	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return nil, fmt.Errorf("lock %s: image is in use: %w", f.Name(), err)
	}
	return func() { _ = unix.Flock(fd, unix.LOCK_UN) }, nil
}
