package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocodsk/rsdos"
)

func TestGranuleGlyphs(t *testing.T) {
	img := buildImage(t,
		testFile{"ONE", "", 0xC1, 1, []int{0}},
		testFile{"TWO", "", 0xC1, 1, []int{0}},
		testFile{"BIG", "", 0xC2, 1, []int{34, 35}},
	)
	tbl := rsdos.ReadTable(img)
	tbl[5] = 0x00
	require.NoError(t, rsdos.WriteTable(img, tbl))

	glyphs := granuleGlyphs(rsdos.Audit(img))
	require.Len(t, glyphs, rsdos.NumGranules+1)
	assert.Equal(t, glyphShared, glyphs[0])
	assert.Equal(t, glyphFree, glyphs[1])
	assert.Equal(t, glyphOrphaned, glyphs[5])
	assert.Equal(t, glyphSystem, glyphs[34])
	assert.Equal(t, glyphFile, glyphs[35])
	assert.Equal(t, glyphFile, glyphs[36])
}

func TestGranuleOwners(t *testing.T) {
	img := buildImage(t,
		testFile{"ONE", "", 0xC2, 1, []int{4, 7}},
		testFile{"GONE", "", 0xC1, 1, []int{9}},
		testFile{"TWO", "", 0xC1, 1, []int{7}},
	)
	slots := rsdos.ReadSlots(img)
	slots[1].RawName[0] = rsdos.SlotDeleted
	require.NoError(t, rsdos.WriteSlots(img, slots))

	owners := granuleOwners(rsdos.Audit(img))
	assert.Equal(t, "1", owners[4])
	assert.Equal(t, "*", owners[7])
	assert.Equal(t, "-", owners[9])
	assert.Equal(t, "-", owners[0])
}

func TestTableDump(t *testing.T) {
	var tbl rsdos.Table
	for g := range tbl {
		tbl[g] = byte(g)
	}
	rows := tableDump(&tbl)
	require.Len(t, rows, 5)
	assert.Equal(t, "00: 00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F", rows[0])
	assert.Equal(t, "40: 40 41 42 43", rows[4])
}

func TestJoinInts(t *testing.T) {
	assert.Equal(t, "none", joinInts(nil))
	assert.Equal(t, "3 10 11", joinInts([]int{3, 10, 11}))
}
