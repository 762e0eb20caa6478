package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/zephyrtronium/decicalc"
)

var (
	colorResult = lipgloss.Color("#2CD7C7")
	colorError  = lipgloss.Color("#E74C3C")
	colorMuted  = lipgloss.Color("#5C7A84")
)

// printer writes styled output. Styles apply only when color is true.
type printer struct {
	w     io.Writer
	color bool

	title  lipgloss.Style
	result lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

func newPrinter(w io.Writer, noColor bool) *printer {
	return &printer{
		w:      w,
		color:  !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(w),
		title:  lipgloss.NewStyle().Bold(true),
		result: lipgloss.NewStyle().Bold(true).Foreground(colorResult),
		err:    lipgloss.NewStyle().Foreground(colorError),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// isTerminal reports whether v is a terminal file.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// evaluated prints the value or error of an evaluation after a label.
func (p *printer) evaluated(label string, r decicalc.Result) {
	if r.Err != nil {
		p.println(label + p.paint(p.err, r.String()))
		return
	}
	p.println(label + p.paint(p.result, r.Value))
}

// steps prints a numbered step log.
func (p *printer) steps(steps []string) {
	for i, s := range steps {
		p.println(p.paint(p.muted, fmt.Sprintf("%d.", i+1)), s)
	}
}
