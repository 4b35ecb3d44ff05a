//go:build linux || darwin

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/spf13/cobra"

	"cocodsk/rsdos"
)

// imageRoot is the root directory of a mounted image: one regular file per
// live directory entry.
type imageRoot struct {
	fs.Inode

	img *rsdos.Image
}

var _ = (fs.NodeOnAdder)((*imageRoot)(nil))

func (r *imageRoot) OnAdd(ctx context.Context) {
	p := &r.Inode
	for _, e := range rsdos.LiveEntries(r.img) {
		f := &imageFile{img: r.img, entry: e}
		child := p.NewPersistentInode(ctx, f, fs.StableAttr{
			Mode: syscall.S_IFREG,
			Ino:  1000 + uint64(e.Slot),
		})
		p.AddChild(mountName(&e), child, false)
	}
}

// mountName is NAME.EXT with path separators replaced.
func mountName(e *rsdos.Entry) string {
	name := strings.ReplaceAll(e.FullName(), "/", "_")
	if name == "" || name == "." || name == ".." {
		name = fmt.Sprintf("SLOT%02d", e.Slot)
	}
	return name
}

type imageFile struct {
	fs.Inode

	img   *rsdos.Image
	entry rsdos.Entry
}

var _ = (fs.NodeReader)((*imageFile)(nil))
var _ = (fs.NodeOpener)((*imageFile)(nil))
var _ = (fs.NodeGetattrer)((*imageFile)(nil))

func (f *imageFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, err := rsdos.ReadFile(f.img, &f.entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %s: %v\n", f.entry.FullName(), err)
	}
	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return fuse.ReadResultData(content[off:end]), 0
}

func (f *imageFile) Open(ctx context.Context, openFlags uint32) (fh fs.FileHandle, fuseFlags uint32, errno syscall.Errno) {
	if openFlags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	return f, fuse.FOPEN_DIRECT_IO, 0
}

func (f *imageFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	t := rsdos.ReadTable(f.img)
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(f.entry.Size(&t))
	return 0
}

func newMountCmd() *cobra.Command {
	var fuseDebug bool
	cmd := &cobra.Command{
		Use:   "mount <disk.dsk> <mountpoint>",
		Short: "Mount an RS-DOS image read-only with FUSE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadImage(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts := &fs.Options{}
			opts.Debug = fuseDebug
			opts.FsName = args[0]
			opts.Name = "rsdos"
			server, err := fs.Mount(args[1], &imageRoot{img: img}, opts)
			if err != nil {
				return fmt.Errorf("mount %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s mounted on %s (Ctrl+C to unmount)\n", img, args[1])

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				if err := server.Unmount(); err != nil {
					fmt.Fprintf(os.Stderr, "WARNING: unmount: %v\n", err)
				}
			}()
			server.Wait()
			return nil
		},
	}
	cmd.Flags().BoolVar(&fuseDebug, "fuse-debug", false, "print FUSE debug information")
	return cmd
}
