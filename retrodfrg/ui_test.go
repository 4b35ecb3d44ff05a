package retrodfrg

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimUI(t *testing.T, w, h int) (*UI, tcell.SimulationScreen) {
	s := tcell.NewSimulationScreen("UTF-8")
	u, err := NewUIWithScreen(s)
	require.NoError(t, err)
	s.SetSize(w, h)
	t.Cleanup(u.Close)
	return u, s
}

func screenLines(s tcell.SimulationScreen) []string {
	cells, w, h := s.GetContents()
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(c.Runes[0])
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

func TestGlyphRows(t *testing.T) {
	glyphs := []rune("ab░█cd")
	assert.Equal(t, []string{"ab░█", "cd"}, GlyphRows(glyphs, 4))
	assert.Equal(t, []string{"ab░█cd"}, GlyphRows(glyphs, 0))
	assert.Equal(t, []string{"ab░█cd"}, GlyphRows(glyphs, 100))
	assert.Nil(t, GlyphRows(nil, 10))
}

func TestLayoutAndDraw(t *testing.T) {
	u, s := newSimUI(t, 40, 20)
	u.SetTitle("DEFRAG")
	u.SetSummaryLines([]string{"Files: 3"})
	u.SetLegend([]string{"█ used  ░ free"})
	u.SetMaps(Map{Title: "Before", Rows: []string{"█░█░"}}, Map{Title: "After", Rows: []string{"██░░"}})
	u.SetPhases([]string{"Read", "Write"})
	u.SetPhaseDone("read")
	u.SetStatusLines([]string{"working"})
	u.LayoutAndDraw()

	lines := screenLines(s)
	assert.Contains(t, lines[0], "DEFRAG")
	assert.Equal(t, "Files: 3", lines[1])
	assert.Equal(t, "█ used  ░ free", lines[2])
	assert.Contains(t, lines[3], " Before ")
	assert.Equal(t, "█░█░", lines[4])
	assert.Contains(t, lines[5], " After ")
	assert.Equal(t, "██░░", lines[6])
	assert.Contains(t, lines[7], " Phase ")
	assert.Equal(t, "[✓]Read [ ]Write", lines[8])
	assert.Contains(t, lines[9], " Status ")
	assert.Equal(t, "working", lines[10])
}

func TestLayoutClipsWideRows(t *testing.T) {
	u, s := newSimUI(t, 10, 20)
	u.SetMaps(Map{Rows: []string{strings.Repeat("█", 30)}})
	u.LayoutAndDraw()
	lines := screenLines(s)
	assert.Equal(t, strings.Repeat("█", 10), lines[1])
}

func TestStepAndStop(t *testing.T) {
	u, s := newSimUI(t, 40, 12)
	u.SetPhases([]string{"Plan"})
	require.NoError(t, Step(u, "Plan", "planned"))
	lines := screenLines(s)
	assert.Equal(t, "[✓]Plan", lines[1])
	assert.Equal(t, "planned", lines[3])

	require.NoError(t, WaitWithStop(u, time.Millisecond))
	u.RequestStop()
	u.RequestStop()
	assert.True(t, u.IsStopped())
	assert.ErrorIs(t, Step(u, "Plan"), ErrInterrupted)
	assert.ErrorIs(t, WaitWithStop(u, time.Hour), ErrInterrupted)
}

func TestCloseStopsEventLoop(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	u, err := NewUIWithScreen(s)
	require.NoError(t, err)
	// queue events the loop may still be handling when Close runs
	s.SetSize(30, 10)
	s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	s.SetSize(50, 12)

	u.Close()
	select {
	case <-u.done:
	default:
		t.Fatal("event loop still running after Close")
	}
	assert.True(t, u.IsStopped())
	assert.NotPanics(t, u.Close)
	assert.NotPanics(t, u.RequestStop)
}

func TestQuitKeyStopsUI(t *testing.T) {
	u, s := newSimUI(t, 40, 12)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-u.done:
	case <-time.After(5 * time.Second):
		t.Fatal("q did not stop the event loop")
	}
	assert.True(t, u.IsStopped())
}
