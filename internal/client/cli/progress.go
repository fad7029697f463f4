package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Test seams for the terminal checks.
var (
	isTerminal  = term.IsTerminal
	terminalGet = term.GetSize
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
)

// progressBar renders upload progress. On a terminal it redraws a single
// line; otherwise it prints one line per quarter.
type progressBar struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	tty   bool
	width int
	last  int
}

func newProgressBar(w io.Writer, label string) *progressBar {
	p := &progressBar{w: w, label: label, width: defaultBarWidth, last: -1}

	f, ok := w.(*os.File)
	if !ok {
		return p
	}
	fd := int(f.Fd())
	if !isTerminal(fd) {
		return p
	}
	p.tty = true
	if cols, _, err := terminalGet(fd); err == nil {
		// label, space, brackets, space, "100%"
		if bw := cols - len(label) - 8; bw < defaultBarWidth {
			p.width = max(bw, minBarWidth)
		}
	}
	return p
}

// Update is a driver.ProgressFunc.
func (p *progressBar) Update(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	percent = min(max(percent, 0), 100)
	if percent == p.last {
		return
	}

	if p.tty {
		fmt.Fprintf(p.w, "\r%s %s", p.label, renderBar(percent, p.width))
		if percent == 100 {
			fmt.Fprintln(p.w)
		}
		p.last = percent
		return
	}

	if p.last < 0 || percent/25 > p.last/25 {
		fmt.Fprintf(p.w, "%s %d%%\n", p.label, percent)
	}
	p.last = percent
}

// renderBar draws "[####......]  42%" with width cells.
func renderBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat(".", width-filled), percent)
}
