// Package rsdos models the granule allocation scheme of RS-DOS (Disk Extended
// Color BASIC) floppy images: the 68-byte granule table, the 72-slot flat
// directory and the chains that tie them together.
package rsdos

// Disk geometry. Tracks are 0-based, sectors 1-based.
const (
	Tracks          = 35
	SectorsPerTrack = 18
	SectorSize      = 256
	TrackSize       = SectorsPerTrack * SectorSize

	// NominalSize is the size of a single-sided 35 track image.
	NominalSize = Tracks * TrackSize
)

// Granule layout.
const (
	NumGranules       = 68
	SectorsPerGranule = 9
	GranuleSize       = SectorsPerGranule * SectorSize

	// DirTrack holds the table and the directory and carries no granules.
	DirTrack = 17
)

// Control regions on the directory track.
const (
	TableSector = 2
	TableSize   = NumGranules

	DirFirstSector = 3
	DirLastSector  = 11
	EntrySize      = 32
	NumSlots       = (DirLastSector - DirFirstSector + 1) * SectorSize / EntrySize
	DirSize        = NumSlots * EntrySize
)

const (
	TableOffset = DirTrack*TrackSize + (TableSector-1)*SectorSize
	DirOffset   = DirTrack*TrackSize + (DirFirstSector-1)*SectorSize
)

// Offset maps a track/sector address to a linear byte offset. Callers are
// responsible for bounds.
func Offset(track, sector int) int {
	return track*TrackSize + (sector-1)*SectorSize
}

// GranuleTrack returns the track and first sector holding granule g. Two
// granules share each track; the directory track is skipped.
func GranuleTrack(g int) (track, sector int) {
	track = g / 2
	if track >= DirTrack {
		track++
	}
	sector = 1 + (g%2)*SectorsPerGranule
	return track, sector
}

// GranuleOffset is the byte offset of the first sector of granule g.
func GranuleOffset(g int) int {
	return Offset(GranuleTrack(g))
}
