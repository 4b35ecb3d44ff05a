package rsdos

// Table byte classes.
const (
	FreeGranule = 0xFF
	// EndMarker is the lowest end-of-chain value; the low five bits of an
	// end marker count the sectors used in the final granule.
	EndMarker  = 0xC0
	sectorMask = 0x1F
	// EOFZero terminates a chain whose final granule uses only the last
	// partial sector.
	EOFZero = 0x00
)

// Table is the granule allocation table, one byte per granule.
type Table [NumGranules]byte

// ReadTable copies the allocation table out of the image. Bytes missing from
// a short image read as free.
func ReadTable(img *Image) Table {
	var t Table
	copy(t[:], img.readAt(TableOffset, TableSize, FreeGranule))
	return t
}

// WriteTable overwrites the table region in place.
func WriteTable(img *Image, t Table) error {
	r, err := img.region(TableOffset, TableSize)
	if err != nil {
		return err
	}
	copy(r, t[:])
	return nil
}

// IsFree reports whether granule g is marked free.
func (t *Table) IsFree(g int) bool {
	return t[g] == FreeGranule
}

// IsEndMarker reports whether v is an end-of-chain value.
func IsEndMarker(v byte) bool {
	return v >= EndMarker
}

// IsSectorCount reports whether v is an end marker carrying a sector count,
// as opposed to the free marker.
func IsSectorCount(v byte) bool {
	return v >= EndMarker && v != FreeGranule
}

// SectorsUsed decodes the sector count of a terminating table value. The
// zero terminator uses no whole sectors.
func SectorsUsed(v byte) int {
	if v == EOFZero {
		return 0
	}
	return int(v & sectorMask)
}

// FreeCount returns the number of granules marked free.
func (t *Table) FreeCount() int {
	n := 0
	for _, v := range t {
		if v == FreeGranule {
			n++
		}
	}
	return n
}
