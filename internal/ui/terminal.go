package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"share/internal/share"
)

const (
	defaultWidth  = 80
	redrawEvery   = 100 * time.Millisecond
	minBarWidth   = 10
	maxBarWidth   = 50
	clearLine     = "\r\033[2K"
	barFilled     = "█"
	barEmpty      = "░"
	labelTemplate = " %3d%%"
)

// TerminalView renders batch progress as a single redrawn line and prints
// alerts above it. When the output is not a terminal, progress is not drawn
// and only alerts are printed.
type TerminalView struct {
	mu    sync.Mutex
	out   io.Writer
	tty   bool
	width func() int
	now   func() time.Time

	total    int64
	visible  bool
	onScreen bool
	percent  float64
	lastDraw time.Time
}

var _ share.View = (*TerminalView)(nil)

// NewTerminalView writes to f, drawing progress only if f is a terminal.
func NewTerminalView(f *os.File) *TerminalView {
	fd := int(f.Fd())
	return &TerminalView{
		out: f,
		tty: term.IsTerminal(fd),
		width: func() int {
			w, _, err := term.GetSize(fd)
			if err != nil || w <= 0 {
				return defaultWidth
			}
			return w
		},
		now: time.Now,
	}
}

// NewWriterView writes to w with a fixed width. tty controls whether
// progress lines are drawn.
func NewWriterView(w io.Writer, tty bool, width int) *TerminalView {
	if width <= 0 {
		width = defaultWidth
	}
	return &TerminalView{
		out:   w,
		tty:   tty,
		width: func() int { return width },
		now:   time.Now,
	}
}

// SetTotal sets the batch size shown next to the bar.
func (v *TerminalView) SetTotal(bytes int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.total = bytes
}

func (v *TerminalView) ShowProgress() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = true
	v.percent = 0
	v.lastDraw = time.Time{}
}

// SetProgress redraws the bar at most every 100ms. 0% and 100% are always drawn.
func (v *TerminalView) SetProgress(percent float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.percent = percent
	if !v.visible || !v.tty {
		return
	}

	rounded := share.RoundPercent(percent)
	now := v.now()
	if rounded != 0 && rounded != 100 && now.Sub(v.lastDraw) < redrawEvery {
		return
	}
	v.draw()
	v.lastDraw = now
}

func (v *TerminalView) HideProgress() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = false
	if v.onScreen {
		fmt.Fprint(v.out, clearLine)
		v.onScreen = false
	}
}

// Alert prints msg on its own line. A visible bar is redrawn below it.
func (v *TerminalView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.onScreen {
		fmt.Fprint(v.out, clearLine)
		v.onScreen = false
	}
	fmt.Fprintln(v.out, msg)
	if v.visible && v.tty {
		v.draw()
	}
}

// draw writes the progress line. Caller holds mu.
func (v *TerminalView) draw() {
	fmt.Fprint(v.out, "\r"+v.line())
	v.onScreen = true
}

func (v *TerminalView) line() string {
	percent := share.RoundPercent(v.percent)
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	label := fmt.Sprintf(labelTemplate, percent)
	if v.total > 0 {
		label += " of " + humanize.Bytes(uint64(v.total))
	}

	barWidth := v.width() - len(label) - 3
	barWidth = max(minBarWidth, min(maxBarWidth, barWidth))
	filled := percent * barWidth / 100

	return "[" + strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled) + "]" + label
}
