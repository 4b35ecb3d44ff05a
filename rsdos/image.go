package rsdos

import (
	"errors"
	"fmt"
)

var (
	// ErrShortImage is returned when a write would reach past the end of
	// the image buffer.
	ErrShortImage = errors.New("image too small")
	// ErrInsufficientSpace is returned by Defragment when the files do not
	// fit into the free granules.
	ErrInsufficientSpace = errors.New("insufficient free granules")
	// ErrBrokenChain is returned by ReadFile for a file whose chain is
	// out of bounds or cyclic.
	ErrBrokenChain = errors.New("broken granule chain")
)

// Image is a disk image held in memory. The table and directory are views
// into the same buffer; nothing is cached between operations.
type Image struct {
	data []byte
}

// NewImage wraps data without copying it. The image owns the buffer from
// here on.
func NewImage(data []byte) *Image {
	return &Image{data: data}
}

// Bytes returns the underlying buffer.
func (i *Image) Bytes() []byte {
	return i.data
}

// Len returns the buffer length.
func (i *Image) Len() int {
	return len(i.data)
}

// Short reports whether the buffer is smaller than a 35 track image.
func (i *Image) Short() bool {
	return len(i.data) < NominalSize
}

func (i *Image) String() string {
	return fmt.Sprintf("RS-DOS image, %d bytes", len(i.data))
}

// readAt copies up to n bytes starting at off, filling whatever lies past
// the end of the buffer with fill.
func (i *Image) readAt(off, n int, fill byte) []byte {
	b := make([]byte, n)
	k := 0
	if off < len(i.data) {
		k = copy(b, i.data[off:])
	}
	for ; k < n; k++ {
		b[k] = fill
	}
	return b
}

// region returns the writable slice [off, off+n) or ErrShortImage.
func (i *Image) region(off, n int) ([]byte, error) {
	if off < 0 || off+n > len(i.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortImage, n, off, len(i.data))
	}
	return i.data[off : off+n], nil
}

// Granule returns a copy of the payload bytes of granule g.
func (i *Image) Granule(g int) []byte {
	return i.readAt(GranuleOffset(g), GranuleSize, 0)
}

func (i *Image) clone() *Image {
	d := make([]byte, len(i.data))
	copy(d, i.data)
	return &Image{data: d}
}
