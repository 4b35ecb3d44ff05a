package rsdos

import "fmt"

// Usage counts, per granule, how many live files reach it.
type Usage [NumGranules]int

// tailBytes is the byte count of a final granule with table value v.
func tailBytes(v byte, lastSectorBytes int) int {
	sectors := SectorsUsed(v) - 1
	if sectors < 0 {
		sectors = 0
	}
	return sectors*SectorSize + lastSectorBytes
}

func chainSize(t *Table, c Chain, lastSectorBytes int) int {
	size := 0
	for _, g := range c.Granules {
		v := t[g]
		if IsEndMarker(v) || v == EOFZero {
			size += tailBytes(v, lastSectorBytes)
		} else {
			size += GranuleSize
		}
	}
	return size
}

// FileSize computes a file's length: a full granule for every linked
// granule plus the used sectors of the final one.
func FileSize(t *Table, first, lastSectorBytes int) int {
	return chainSize(t, Walk(t, first), lastSectorBytes)
}

// Size is FileSize for the entry.
func (e *Entry) Size(t *Table) int {
	return FileSize(t, int(e.FirstGranule), int(e.LastSectorBytes))
}

// UsageMap walks every live entry and counts the references to each
// granule.
func UsageMap(t *Table, entries []Entry) Usage {
	var u Usage
	for i := range entries {
		if !entries[i].Live() {
			continue
		}
		for _, g := range Walk(t, int(entries[i].FirstGranule)).Granules {
			u[g]++
		}
	}
	return u
}

// ReadFile returns the raw bytes of a file: its granules in chain order cut
// to the computed size. On a broken chain the bytes gathered so far are
// returned together with ErrBrokenChain.
func ReadFile(img *Image, e *Entry) ([]byte, error) {
	t := ReadTable(img)
	c := Walk(&t, int(e.FirstGranule))
	data := make([]byte, 0, c.Len()*GranuleSize)
	for _, g := range c.Granules {
		data = append(data, img.Granule(g)...)
	}
	if size := chainSize(&t, c, int(e.LastSectorBytes)); size < len(data) {
		data = data[:size]
	}
	if !c.Valid() {
		return data, fmt.Errorf("%w: %s: %s", ErrBrokenChain, e.FullName(), c)
	}
	return data, nil
}
