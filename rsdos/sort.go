package rsdos

import "sort"

// SortOptions controls SortDirectory.
type SortOptions struct {
	// Compact drops deleted slots and re-pads the directory with unused
	// slots. Without it every non-live slot keeps its relative order after
	// the sorted files.
	Compact bool
}

// SortResult holds the directory before and after sorting.
type SortResult struct {
	Before []Entry
	After  []Entry
	// Changed is false when the directory bytes are unchanged.
	Changed bool
}

// lessEntry orders entries by trimmed name, then extension, comparing bytes.
func lessEntry(a, b *Entry) bool {
	if an, bn := a.Name(), b.Name(); an != bn {
		return an < bn
	}
	return a.Ext() < b.Ext()
}

// SortEntries returns the live entries of slots stably sorted by name and
// extension. Only slots before the first unused sentinel count as live.
func SortEntries(slots []Entry) (live, rest []Entry) {
	ended := false
	for _, e := range slots {
		if e.Unused() {
			ended = true
		}
		if !ended && e.Live() {
			live = append(live, e)
		} else {
			rest = append(rest, e)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return lessEntry(&live[i], &live[j]) })
	return live, rest
}

// SortDirectory rewrites the directory with its live entries in name order.
// The allocation table and granule contents are never touched.
func SortDirectory(img *Image, opts SortOptions) (*SortResult, error) {
	if _, err := img.region(DirOffset, DirSize); err != nil {
		return nil, err
	}
	before := AllSlots(img)
	live, rest := SortEntries(before)

	sorted := live
	if !opts.Compact {
		sorted = append(sorted, rest...)
	}

	res := &SortResult{Before: ReadSlots(img)}
	old := img.readAt(DirOffset, DirSize, 0)
	if err := WriteSlots(img, sorted); err != nil {
		return nil, err
	}
	res.After = ReadSlots(img)
	res.Changed = string(old) != string(img.readAt(DirOffset, DirSize, 0))
	return res, nil
}
