package main

import (
	"fmt"
	"strconv"
	"strings"

	"cocodsk/rsdos"
)

// Granule map glyphs.
const (
	glyphFile     = '█'
	glyphFree     = '░'
	glyphOrphaned = '■'
	glyphShared   = '▓'
	glyphSystem   = '═'
)

const mapLegend = "Legend:  █ file   ░ free   ▓ shared   ■ lost   ═ directory track | Q to quit"

// granuleGlyphs renders one glyph per granule from an audit report, with the
// directory track drawn between granules 33 and 34.
func granuleGlyphs(r *rsdos.Report) []rune {
	glyphs := make([]rune, 0, rsdos.NumGranules+1)
	for g := 0; g < rsdos.NumGranules; g++ {
		if g == rsdos.DirTrack*2 {
			glyphs = append(glyphs, glyphSystem)
		}
		var ch rune
		switch n := r.Usage[g]; {
		case n > 1:
			ch = glyphShared
		case n == 1:
			ch = glyphFile
		case r.Table.IsFree(g):
			ch = glyphFree
		default:
			ch = glyphOrphaned
		}
		glyphs = append(glyphs, ch)
	}
	return glyphs
}

// granuleOwners labels every granule with the 1-based number of the live
// file using it: "-" for none, "*" for more than one.
func granuleOwners(r *rsdos.Report) [rsdos.NumGranules]string {
	var owners [rsdos.NumGranules]string
	for g := range owners {
		owners[g] = "-"
	}
	n := 0
	for _, f := range r.Findings {
		if f.Deleted() {
			continue
		}
		n++
		label := strconv.Itoa(n)
		for _, g := range f.Chain.Granules {
			if owners[g] == "-" || owners[g] == label {
				owners[g] = label
			} else {
				owners[g] = "*"
			}
		}
	}
	return owners
}

// tableDump formats the raw allocation table as rows of 16 hex values.
func tableDump(t *rsdos.Table) []string {
	var rows []string
	for start := 0; start < len(t); start += 16 {
		end := start + 16
		if end > len(t) {
			end = len(t)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%02X:", start)
		for _, v := range t[start:end] {
			fmt.Fprintf(&b, " %02X", v)
		}
		rows = append(rows, b.String())
	}
	return rows
}

// ownerDump formats granuleOwners as rows of 16 right aligned labels.
func ownerDump(owners [rsdos.NumGranules]string) []string {
	var rows []string
	for start := 0; start < len(owners); start += 16 {
		end := start + 16
		if end > len(owners) {
			end = len(owners)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%02X:", start)
		for _, o := range owners[start:end] {
			fmt.Fprintf(&b, " %3s", o)
		}
		rows = append(rows, b.String())
	}
	return rows
}

func joinInts(v []int) string {
	if len(v) == 0 {
		return "none"
	}
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}
