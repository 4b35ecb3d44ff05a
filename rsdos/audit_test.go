package rsdos

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditClean(t *testing.T) {
	img := newTestDisk().
		file("A", "BAS", 0xC3, 10, 0, 1).
		file("B", "BIN", 0xC1, 20, 4).
		build(t)

	r := Audit(img)
	assert.False(t, r.Short)
	assert.Equal(t, 2, r.FilesFound())
	assert.Equal(t, []int{0, 1, 4}, r.UsedOnce)
	assert.Empty(t, r.MultiplyUsed)
	assert.Empty(t, r.Orphaned)
	assert.Empty(t, r.MarkedFree)
	assert.Equal(t, 3, r.UsedGranules())
	assert.Equal(t, 65, r.FreeGranules())
	assert.Equal(t, 68, r.TotalGranules())
	assert.Zero(t, r.Problems())

	require.Len(t, r.Findings, 2)
	assert.Equal(t, GranuleSize+2*256+10, r.Findings[0].Size)
	assert.Equal(t, AnomalyNone, r.Findings[1].Verdict())
}

func TestAuditMultiplyUsed(t *testing.T) {
	img := newTestDisk().
		file("ONE", "", 0xC1, 1, 3).
		file("TWO", "", 0xC1, 1, 3).
		build(t)

	r := Audit(img)
	assert.Equal(t, 2, r.Usage[3])
	assert.Equal(t, []int{3}, r.MultiplyUsed)
	assert.NotContains(t, r.UsedOnce, 3)
	assert.Equal(t, 1, r.Problems())
}

func TestAuditOrphaned(t *testing.T) {
	d := newTestDisk().file("ONE", "", 0xC1, 1, 3)
	d.table[10] = 0x00
	d.table[11] = 12
	img := d.build(t)

	r := Audit(img)
	assert.Equal(t, []int{10, 11}, r.Orphaned)
	assert.NotContains(t, r.Free, 10)
	assert.Equal(t, 2, r.Problems())
}

func TestAuditBrokenAndDeleted(t *testing.T) {
	d := newTestDisk().
		file("GONE", "", 0xC1, 1, 20).
		file("LOOP", "", 0xC1, 1, 5, 6)
	d.entries[0].RawName[0] = SlotDeleted
	d.table[6] = 5
	img := d.build(t)

	r := Audit(img)
	require.Len(t, r.Findings, 2)
	assert.True(t, r.Findings[0].Deleted())
	assert.Equal(t, 1, r.FilesFound())
	// the deleted file's granule is allocated but unreferenced
	assert.Contains(t, r.Orphaned, 20)

	broken := r.BrokenChains()
	require.Len(t, broken, 1)
	assert.Equal(t, AnomalyCycle, broken[0].Verdict())
	assert.Equal(t, []int{5, 6}, broken[0].Chain.Granules)
}

func TestAuditMarkedFree(t *testing.T) {
	d := newTestDisk().file("ODD", "", 0xC1, 1, 30, 31)
	d.table[31] = FreeGranule
	img := d.build(t)

	r := Audit(img)
	assert.Equal(t, []int{31}, r.MarkedFree)
	assert.Contains(t, r.UsedOnce, 31)
	assert.NotContains(t, r.Free, 31)
}

func TestAuditDoesNotModify(t *testing.T) {
	d := newTestDisk().file("ONE", "", 0xC1, 1, 3).file("TWO", "", 0xC1, 1, 3)
	d.table[9] = 0
	img := d.build(t)
	before := append([]byte(nil), img.Bytes()...)
	Audit(img)
	assert.Equal(t, before, img.Bytes())
}

func TestAuditShortImage(t *testing.T) {
	img := NewImage(make([]byte, 1000))
	r := Audit(img)
	assert.True(t, r.Short)
	assert.Zero(t, r.FilesFound())
	assert.Len(t, r.Free, NumGranules)
}

// The four granule classes partition 0..67 whatever the table and
// directory hold.
func TestAuditPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		d := newTestDisk()
		for g := range d.table {
			if rng.Intn(3) == 0 {
				d.table[g] = byte(rng.Intn(256))
			}
		}
		for i := 0; i < rng.Intn(10); i++ {
			d.entries = append(d.entries, NewEntry("F", "", TypeData, FlagBinary, byte(rng.Intn(80)), uint16(rng.Intn(256))))
		}
		r := Audit(d.build(t))

		var all []int
		all = append(all, r.Free...)
		all = append(all, r.UsedOnce...)
		all = append(all, r.MultiplyUsed...)
		all = append(all, r.Orphaned...)
		sort.Ints(all)
		require.Len(t, all, NumGranules)
		for g := range all {
			assert.Equal(t, g, all[g])
		}
	}
}
