package rsdos

import (
	"fmt"

	"github.com/mit-pdos/go-journal/util"
)

// Relocation describes where one file moved.
type Relocation struct {
	Entry Entry
	From  []int
	To    []int
	Size  int
}

// Moved reports whether the file changed place.
func (r *Relocation) Moved() bool {
	if len(r.From) != len(r.To) {
		return true
	}
	for i := range r.From {
		if r.From[i] != r.To[i] {
			return true
		}
	}
	return false
}

// DefragResult reports a defragmentation run. Skipped files had a broken
// chain or a final granule marked free; their granules were left in place.
type DefragResult struct {
	Relocations []Relocation
	Skipped     []Finding
	FreeBefore  int
	FreeAfter   int
	Table       Table
}

// plan is one file prepared for relocation.
type plan struct {
	entry  Entry
	chain  Chain
	marker byte // table value of the final granule
	data   []byte
	to     []int
}

// firstFit returns the lowest start of n consecutive unclaimed granules.
func firstFit(claimed *[NumGranules]bool, n int) (int, bool) {
	run := 0
	for g := 0; g < NumGranules; g++ {
		if claimed[g] {
			run = 0
			continue
		}
		run++
		if run == n {
			return g - n + 1, true
		}
	}
	return 0, false
}

// Defragment moves every file onto a contiguous ascending run of granules,
// in directory order, packing from granule 0. File bytes, sizes and end
// markers are preserved. The whole rewrite is computed on a scratch copy and
// committed in one step; on error the image is left unchanged.
func Defragment(img *Image) (*DefragResult, error) {
	if img.Short() {
		return nil, fmt.Errorf("%w: defragmenting needs %d bytes, have %d", ErrShortImage, NominalSize, img.Len())
	}
	t := ReadTable(img)
	res := &DefragResult{FreeBefore: t.FreeCount()}

	var claimed [NumGranules]bool
	var newTable Table
	for g := range newTable {
		newTable[g] = FreeGranule
	}

	// Files with broken chains stay where they are. So do files whose last
	// granule is marked free: there is no end marker to carry over.
	var plans []*plan
	for _, e := range LiveEntries(img) {
		c := Walk(&t, int(e.FirstGranule))
		if !c.Valid() || t.IsFree(c.Last()) {
			res.Skipped = append(res.Skipped, Finding{Entry: e, Chain: c, Size: chainSize(&t, c, int(e.LastSectorBytes))})
			for _, g := range c.Granules {
				claimed[g] = true
				newTable[g] = t[g]
			}
			util.DPrintf(1, "defrag: skipping %s: %s\n", e.FullName(), c)
			continue
		}
		p := &plan{entry: e, chain: c, marker: t[c.Last()]}
		for _, g := range c.Granules {
			p.data = append(p.data, img.Granule(g)...)
		}
		plans = append(plans, p)
	}

	for _, p := range plans {
		n := p.chain.Len()
		start, ok := firstFit(&claimed, n)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs %d granules", ErrInsufficientSpace, p.entry.FullName(), n)
		}
		for i := 0; i < n; i++ {
			claimed[start+i] = true
			p.to = append(p.to, start+i)
		}
	}

	scratch := img.clone()
	dir := AllSlots(scratch)
	for _, p := range plans {
		n := len(p.to)
		for i, g := range p.to {
			block := p.data[i*GranuleSize : (i+1)*GranuleSize]
			if i < n-1 {
				newTable[g] = byte(p.to[i+1])
			} else {
				newTable[g] = p.marker
				if IsSectorCount(p.marker) {
					block = finalBlock(block, tailBytes(p.marker, int(p.entry.LastSectorBytes)))
				}
			}
			r, err := scratch.region(GranuleOffset(g), GranuleSize)
			if err != nil {
				return nil, err
			}
			copy(r, block)
		}
		dir[p.entry.Slot].FirstGranule = byte(p.to[0])
		res.Relocations = append(res.Relocations, Relocation{
			Entry: dir[p.entry.Slot],
			From:  p.chain.Granules,
			To:    p.to,
			Size:  chainSize(&t, p.chain, int(p.entry.LastSectorBytes)),
		})
		util.DPrintf(2, "defrag: %s %v -> %v\n", p.entry.FullName(), p.chain.Granules, p.to)
	}

	if err := WriteTable(scratch, newTable); err != nil {
		return nil, err
	}
	if err := WriteSlots(scratch, dir); err != nil {
		return nil, err
	}

	copy(img.data, scratch.data)
	res.Table = newTable
	res.FreeAfter = newTable.FreeCount()
	return res, nil
}

// finalBlock keeps the first live bytes of a granule and zeroes the rest.
func finalBlock(block []byte, live int) []byte {
	if live > GranuleSize {
		live = GranuleSize
	}
	out := make([]byte, GranuleSize)
	copy(out, block[:live])
	return out
}
