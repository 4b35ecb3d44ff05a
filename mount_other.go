//go:build !linux && !darwin

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <disk.dsk> <mountpoint>",
		Short: "Mount an RS-DOS image read-only with FUSE (linux and macOS only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, _ []string) error {
			return fmt.Errorf("mount is not supported on %s", runtime.GOOS)
		},
	}
}
