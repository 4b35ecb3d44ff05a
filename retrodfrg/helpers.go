package retrodfrg

import (
	"time"
)

// GlyphRows wraps one glyph per block into rows of at most width cells.
// A non-positive width yields a single row.
func GlyphRows(glyphs []rune, width int) []string {
	if len(glyphs) == 0 {
		return nil
	}
	if width <= 0 || width > len(glyphs) {
		width = len(glyphs)
	}
	var rows []string
	for i := 0; i < len(glyphs); i += width {
		end := i + width
		if end > len(glyphs) {
			end = len(glyphs)
		}
		rows = append(rows, string(glyphs[i:end]))
	}
	return rows
}

// Step marks a phase done, replaces the status block and redraws.
func Step(u *UI, phase string, status ...string) error {
	if u.IsStopped() {
		return ErrInterrupted
	}
	u.SetPhaseDone(phase)
	if len(status) > 0 {
		u.SetStatusLines(status)
	}
	u.LayoutAndDraw()
	return nil
}

// WaitWithStop waits for d while allowing early interruption.
func WaitWithStop(u *UI, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-u.stop:
		return ErrInterrupted
	case <-timer.C:
		return nil
	}
}
