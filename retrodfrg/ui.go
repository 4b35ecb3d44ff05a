// Package retrodfrg draws a full screen, DOS defragmenter style view: a title,
// summary lines, a legend, one or more block maps, a phase line and a status
// block. It knows nothing about the disk format; callers hand it glyph rows.
package retrodfrg

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// ErrInterrupted is returned when the user requests to stop the operation.
var ErrInterrupted = errors.New("interrupted")

// footerRows is the room kept below the maps for the phase and status blocks.
const footerRows = 7

// Map is a titled block of pre-rendered glyph rows.
type Map struct {
	Title string
	Rows  []string
}

// UI is the terminal view.
type UI struct {
	s    tcell.Screen
	stop chan struct{}
	done chan struct{} // closed when the event loop has returned

	stopOnce  sync.Once
	closeOnce sync.Once

	title     string
	summary   []string
	legend    []string
	maps      []Map
	phases    []string
	phaseDone map[string]bool
	status    []string
}

// NewUI opens the terminal and starts the key handler. Ctrl+C, q and Esc
// request a stop.
func NewUI() (*UI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewUIWithScreen(s)
}

// NewUIWithScreen is NewUI on a caller supplied, not yet initialised screen.
func NewUIWithScreen(s tcell.Screen) (*UI, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.DisableMouse()
	u := &UI{
		s:         s,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		phaseDone: make(map[string]bool),
	}
	go u.eventLoop(s)
	return u, nil
}

// Close stops the event loop, then restores the terminal. It is safe to
// call more than once.
func (u *UI) Close() {
	u.closeOnce.Do(func() {
		u.RequestStop()
		select {
		case <-u.done:
		case <-time.After(250 * time.Millisecond):
		}
		u.s.Fini()
		<-u.done
		fmt.Print("\033[?1049l\033[?25h")
	})
}

// RequestStop signals that the user has requested to stop the current
// operation. It can be called multiple times safely.
func (u *UI) RequestStop() {
	u.stopOnce.Do(func() {
		close(u.stop)
		_ = u.s.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// IsStopped returns true if the user has requested to stop the operation.
func (u *UI) IsStopped() bool {
	select {
	case <-u.stop:
		return true
	default:
		return false
	}
}

// Size returns the current screen width and height.
func (u *UI) Size() (width, height int) {
	return u.s.Size()
}

func (u *UI) SetTitle(t string)              { u.title = t }
func (u *UI) SetSummaryLines(lines []string) { u.summary = append([]string(nil), lines...) }
func (u *UI) SetLegend(lines []string)       { u.legend = append([]string(nil), lines...) }
func (u *UI) SetStatusLines(lines []string)  { u.status = append([]string(nil), lines...) }
func (u *UI) SetMaps(maps ...Map)            { u.maps = append([]Map(nil), maps...) }

// SetPhases sets the phase labels; each shows a check mark once SetPhaseDone
// has been called for it.
func (u *UI) SetPhases(labels []string) { u.phases = append([]string(nil), labels...) }

// SetPhaseDone marks a phase as completed. Names are case-insensitive.
func (u *UI) SetPhaseDone(p string) { u.phaseDone[strings.ToLower(p)] = true }

// canvas tracks the next free row while drawing.
type canvas struct {
	s tcell.Screen
	w int
	y int
}

func (c *canvas) put(x int, str string) {
	for i, r := range []rune(str) {
		if x+i >= c.w {
			break
		}
		c.s.SetContent(x+i, c.y, r, nil, tcell.StyleDefault)
	}
}

// line draws str on the next row unless limit has been reached.
func (c *canvas) line(str string, limit int) {
	if c.y >= limit {
		return
	}
	c.put(0, str)
	c.y++
}

// rule draws a horizontal rule with an optional label.
func (c *canvas) rule(fill, label string, x int) {
	c.put(0, strings.Repeat(fill, c.w))
	if label != "" {
		c.put(x, label)
	}
	c.y++
}

// LayoutAndDraw redraws the whole view from the current state.
func (u *UI) LayoutAndDraw() {
	u.s.Clear()
	w, h := u.s.Size()
	c := &canvas{s: u.s, w: w}

	if u.title != "" {
		c.rule("═", u.title, (w-len(u.title))/2)
	}
	for _, l := range u.summary {
		c.line(l, h)
	}
	for _, l := range u.legend {
		c.line(l, h)
	}

	// Rows that do not fit above the footer are dropped.
	for _, m := range u.maps {
		if c.y >= h-footerRows {
			break
		}
		label := ""
		if m.Title != "" {
			label = " " + m.Title + " "
		}
		c.rule("─", label, 2)
		for _, row := range m.Rows {
			c.line(row, h-footerRows)
		}
	}

	if len(u.phases) > 0 {
		c.rule("─", " Phase ", 2)
		parts := make([]string, len(u.phases))
		for i, p := range u.phases {
			mark := ' '
			if u.phaseDone[strings.ToLower(p)] {
				mark = '✓'
			}
			parts[i] = fmt.Sprintf("[%c]%s", mark, p)
		}
		c.line(strings.Join(parts, " "), h)
	}

	if len(u.status) > 0 {
		c.rule("─", " Status ", 2)
		for _, l := range u.status {
			c.line(l, h)
		}
	}

	u.s.Show()
}

// eventLoop handles keys and resizes on s until a stop is requested or the
// screen is finalised.
func (u *UI) eventLoop(s tcell.Screen) {
	defer close(u.done)
	for {
		select {
		case <-u.stop:
			return
		default:
		}
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
				u.RequestStop()
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				u.RequestStop()
			}
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt, nil:
			return
		}
	}
}
