//go:build linux || darwin

package main

import (
	"context"
	"syscall"
	"testing"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocodsk/rsdos"
)

func TestImageFileRead(t *testing.T) {
	img := buildImage(t, testFile{"PROG", "BIN", 0xC2, 40, []int{10, 11}})
	e := rsdos.LiveEntries(img)[0]
	f := &imageFile{img: img, entry: e}
	want, err := rsdos.ReadFile(img, &e)
	require.NoError(t, err)

	var attr fuse.AttrOut
	assert.Equal(t, syscall.Errno(0), f.Getattr(context.Background(), nil, &attr))
	assert.Equal(t, uint64(len(want)), attr.Size)
	assert.Equal(t, uint64(rsdos.GranuleSize+256+40), attr.Size)

	buf := make([]byte, 100)
	res, errno := f.Read(context.Background(), nil, buf, int64(rsdos.GranuleSize))
	assert.Equal(t, syscall.Errno(0), errno)
	got, _ := res.Bytes(buf)
	assert.Equal(t, want[rsdos.GranuleSize:rsdos.GranuleSize+100], got)

	res, _ = f.Read(context.Background(), nil, buf, int64(len(want)-10))
	got, _ = res.Bytes(buf)
	assert.Len(t, got, 10)

	res, _ = f.Read(context.Background(), nil, buf, int64(len(want)+10))
	got, _ = res.Bytes(buf)
	assert.Empty(t, got)
}

func TestImageFileIsReadOnly(t *testing.T) {
	img := buildImage(t, testFile{"PROG", "BIN", 0xC1, 40, []int{10}})
	f := &imageFile{img: img, entry: rsdos.LiveEntries(img)[0]}
	_, _, errno := f.Open(context.Background(), syscall.O_RDWR)
	assert.Equal(t, syscall.EROFS, errno)
	_, _, errno = f.Open(context.Background(), syscall.O_RDONLY)
	assert.Equal(t, syscall.Errno(0), errno)
}

func TestMountName(t *testing.T) {
	e := rsdos.NewEntry("A/B", "TXT", rsdos.TypeText, rsdos.FlagASCII, 0, 1)
	assert.Equal(t, "A_B.TXT", mountName(&e))
	e = rsdos.NewEntry("", "", rsdos.TypeText, rsdos.FlagASCII, 0, 1)
	e.Slot = 7
	e.RawName[0] = 0x80
	assert.Equal(t, "SLOT07", mountName(&e))
}
