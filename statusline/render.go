package statusline

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// flusher is the optional flushing side of a sink, matching bufio.Writer.
type flusher interface {
	Flush() error
}

// renderer owns the sink and the cache of the last written line. Only the
// worker goroutine calls into it, so it needs no locking.
type renderer struct {
	out io.Writer

	lastLine  string
	lastWidth int
}

// paint overwrites the status row with line unless it matches the cached
// last line, in which case nothing is written at all. The new line is padded
// with spaces to the previous line's visible width so leftover characters
// from a longer prior line are fully blanked. Reports whether a write
// happened.
func (r *renderer) paint(line string) (wrote bool, err error) {
	if line == r.lastLine {
		return false, nil
	}

	width := lipgloss.Width(line)
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(line)
	if pad := r.lastWidth - width; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if err := r.write(b.String()); err != nil {
		return false, err
	}

	r.lastLine = line
	r.lastWidth = width
	return true, nil
}

// clear blanks the status row, padded to the previous line's width, and
// returns the cursor to column 0 without a line break. The cache resets so
// the next paint rewrites from scratch.
func (r *renderer) clear() error {
	if r.lastWidth == 0 && r.lastLine == "" {
		return nil
	}
	blanks := "\r" + strings.Repeat(" ", r.lastWidth) + "\r"
	if err := r.write(blanks); err != nil {
		return err
	}
	r.lastLine = ""
	r.lastWidth = 0
	return nil
}

// printLine overwrites the status row with line and ends it with a line
// break, scrolling prior content up. The status row is afterwards blank on a
// fresh line, so the cache resets.
func (r *renderer) printLine(line string) error {
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(line)
	if pad := r.lastWidth - lipgloss.Width(line); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteByte('\n')
	if err := r.write(b.String()); err != nil {
		return err
	}
	r.lastLine = ""
	r.lastWidth = 0
	return nil
}

func (r *renderer) write(s string) error {
	if _, err := io.WriteString(r.out, s); err != nil {
		return fmt.Errorf("status line write: %w", err)
	}
	if f, ok := r.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("status line flush: %w", err)
		}
	}
	return nil
}
