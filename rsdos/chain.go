package rsdos

import (
	"fmt"

	"github.com/mit-pdos/go-journal/util"
)

// Anomaly classifies how a chain walk ended early.
type Anomaly int

const (
	AnomalyNone Anomaly = iota
	// AnomalyOutOfBounds: a granule index outside 0..67 was reached.
	AnomalyOutOfBounds
	// AnomalyCycle: a granule already in the chain was reached again.
	AnomalyCycle
	// AnomalyOverlong: the walk hit the 68 step cap.
	AnomalyOverlong
)

func (a Anomaly) String() string {
	switch a {
	case AnomalyNone:
		return "valid"
	case AnomalyOutOfBounds:
		return "out of bounds"
	case AnomalyCycle:
		return "cycle"
	case AnomalyOverlong:
		return "too long"
	}
	return fmt.Sprintf("anomaly(%d)", int(a))
}

// Chain is the ordered granule list of one file. When Anomaly is set,
// Granules holds the part walked before the problem and At the offending
// index.
type Chain struct {
	Granules []int
	Anomaly  Anomaly
	At       int
}

// Valid reports whether the walk reached an end marker.
func (c Chain) Valid() bool {
	return c.Anomaly == AnomalyNone
}

// Len is the number of granules in the chain.
func (c Chain) Len() int {
	return len(c.Granules)
}

// Last returns the final granule of the chain, or -1 when it is empty.
func (c Chain) Last() int {
	if len(c.Granules) == 0 {
		return -1
	}
	return c.Granules[len(c.Granules)-1]
}

// Contiguous reports whether the chain is an ascending run of consecutive
// granules.
func (c Chain) Contiguous() bool {
	for i := 1; i < len(c.Granules); i++ {
		if c.Granules[i] != c.Granules[i-1]+1 {
			return false
		}
	}
	return true
}

func (c Chain) String() string {
	if c.Valid() {
		return fmt.Sprint(c.Granules)
	}
	return fmt.Sprintf("%v (%s at %d)", c.Granules, c.Anomaly, c.At)
}

// Walk follows the table from first and returns the chain. A table value of
// 0 ends the chain like an end marker. Walk never fails: structural problems
// are reported through Chain.Anomaly.
func Walk(t *Table, first int) Chain {
	var c Chain
	var seen [NumGranules]bool
	g := first
	for {
		if g < 0 || g >= NumGranules {
			c.Anomaly, c.At = AnomalyOutOfBounds, g
			util.DPrintf(1, "walk %d: granule %d out of bounds\n", first, g)
			return c
		}
		if seen[g] {
			c.Anomaly, c.At = AnomalyCycle, g
			util.DPrintf(1, "walk %d: loop at granule %d\n", first, g)
			return c
		}
		if len(c.Granules) >= NumGranules {
			c.Anomaly, c.At = AnomalyOverlong, g
			util.DPrintf(1, "walk %d: more than %d granules\n", first, NumGranules)
			return c
		}
		seen[g] = true
		c.Granules = append(c.Granules, g)
		v := t[g]
		if IsEndMarker(v) || v == EOFZero {
			return c
		}
		g = int(v)
	}
}
