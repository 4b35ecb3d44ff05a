package rsdos

// Finding is the audit result for one directory slot.
type Finding struct {
	Entry Entry
	Chain Chain
	Size  int
}

// Deleted reports whether the slot holds a deleted file. Deleted slots are
// carried for display only; they take no part in the granule accounting.
func (f *Finding) Deleted() bool { return f.Entry.Deleted() }

// Verdict describes the chain of a live entry.
func (f *Finding) Verdict() Anomaly { return f.Chain.Anomaly }

// Report is the result of Audit. The four granule classes partition 0..67.
type Report struct {
	Short    bool
	Table    Table
	Usage    Usage
	Findings []Finding

	Free         []int // marked free, referenced by no file
	UsedOnce     []int
	MultiplyUsed []int
	Orphaned     []int // allocated in the table, referenced by no file

	// MarkedFree lists granules a file reaches although the table marks
	// them free. They also appear in UsedOnce or MultiplyUsed.
	MarkedFree []int
}

// FilesFound is the number of live entries.
func (r *Report) FilesFound() int {
	n := 0
	for i := range r.Findings {
		if !r.Findings[i].Deleted() {
			n++
		}
	}
	return n
}

// UsedGranules counts granules referenced by at least one file.
func (r *Report) UsedGranules() int { return len(r.UsedOnce) + len(r.MultiplyUsed) }

// FreeGranules counts granules marked free in the table.
func (r *Report) FreeGranules() int { return r.Table.FreeCount() }

// TotalGranules is the fixed granule count.
func (r *Report) TotalGranules() int { return NumGranules }

// BrokenChains returns the live findings whose chain walk ended early.
func (r *Report) BrokenChains() []Finding {
	var broken []Finding
	for _, f := range r.Findings {
		if !f.Deleted() && !f.Chain.Valid() {
			broken = append(broken, f)
		}
	}
	return broken
}

// Problems counts the data-integrity findings of the report.
func (r *Report) Problems() int {
	return len(r.BrokenChains()) + len(r.MultiplyUsed) + len(r.Orphaned) + len(r.MarkedFree)
}

// Audit checks the directory against the allocation table. It never
// modifies the image.
func Audit(img *Image) *Report {
	r := &Report{
		Short: img.Short(),
		Table: ReadTable(img),
	}
	slots := ReadSlots(img)
	for _, e := range slots {
		f := Finding{Entry: e}
		if e.Live() {
			f.Chain = Walk(&r.Table, int(e.FirstGranule))
			f.Size = chainSize(&r.Table, f.Chain, int(e.LastSectorBytes))
		}
		r.Findings = append(r.Findings, f)
	}
	r.Usage = UsageMap(&r.Table, slots)

	for g := 0; g < NumGranules; g++ {
		switch n := r.Usage[g]; {
		case n > 1:
			r.MultiplyUsed = append(r.MultiplyUsed, g)
		case n == 1:
			r.UsedOnce = append(r.UsedOnce, g)
		case r.Table.IsFree(g):
			r.Free = append(r.Free, g)
		default:
			r.Orphaned = append(r.Orphaned, g)
		}
		if r.Usage[g] > 0 && r.Table.IsFree(g) {
			r.MarkedFree = append(r.MarkedFree, g)
		}
	}
	return r
}
