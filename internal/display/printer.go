package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/talentmap/internal/models"
)

const barWidth = 20

// Printer writes styled output to a single writer.
type Printer struct {
	w      io.Writer
	bold   *color.Color
	cyan   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	faint  *color.Color
}

// NewPrinter creates a Printer, enabling color when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return newPrinter(w, ColorEnabled(w))
}

// NewPlainPrinter creates a Printer that never emits color.
func NewPlainPrinter(w io.Writer) *Printer {
	return newPrinter(w, false)
}

func newPrinter(w io.Writer, enabled bool) *Printer {
	p := &Printer{
		w:      w,
		bold:   color.New(color.Bold),
		cyan:   color.New(color.FgCyan),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		faint:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.bold, p.cyan, p.green, p.yellow, p.red, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ColorEnabled reports whether w is a TTY and color is not globally disabled.
func ColorEnabled(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Success prints a green check line.
func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.green.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Failure prints a red cross line.
func (p *Printer) Failure(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.red.Sprint("✗"), fmt.Sprintf(format, args...))
}

// Info prints a plain line.
func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// ProgressBar renders p as "[#####---------------]  25% (5/20)".
func ProgressBar(p models.Progress, width int) string {
	if width <= 0 {
		width = barWidth
	}
	filled := 0
	if p.Total > 0 {
		filled = p.Answered * width / p.Total
	}
	return fmt.Sprintf("[%s%s] %3d%% (%d/%d)",
		strings.Repeat("#", filled), strings.Repeat("-", width-filled),
		p.Percentage, p.Answered, p.Total)
}

func (p *Printer) progressColor(pr models.Progress) *color.Color {
	switch {
	case pr.Complete():
		return p.green
	case pr.Answered > 0:
		return p.yellow
	default:
		return p.faint
	}
}

// ScoreBar renders a 0-100 score as a bar followed by the number.
func ScoreBar(score, width int) string {
	if width <= 0 {
		width = barWidth
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := score * width / 100
	return fmt.Sprintf("%s%s %3d", strings.Repeat("█", filled), strings.Repeat("░", width-filled), score)
}
