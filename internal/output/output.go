// Package output renders CLI results as styled text or JSON.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/deppfellow/go-shopdb/internal/lib/utils"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Printer writes command output. In JSON mode only Result produces output,
// so the stream stays machine readable.
type Printer struct {
	out  io.Writer
	json bool
}

// New returns a Printer writing to out.
func New(out io.Writer, jsonOutput bool) *Printer {
	return &Printer{out: out, json: jsonOutput}
}

// JSON reports whether the printer is in JSON mode.
func (p *Printer) JSON() bool {
	return p.json
}

func (p *Printer) line(icon string, format string, args ...any) {
	if p.json {
		return
	}
	fmt.Fprint(p.out, icon)
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	p.line(successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	p.line(warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	p.line(errorStyle.Render("✗ "), format, args...)
}

// Info prints an info message
func (p *Printer) Info(format string, args ...any) {
	p.line(infoStyle.Render("ℹ "), format, args...)
}

// Muted prints a muted message
func (p *Printer) Muted(format string, args ...any) {
	if p.json {
		return
	}
	fmt.Fprintln(p.out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func (p *Printer) Section(title string) {
	if p.json {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, primaryStyle.Render(title))
	fmt.Fprintln(p.out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Table prints rows under headers, aligned in columns. An empty table
// prints a muted placeholder instead.
func (p *Printer) Table(headers []string, rows [][]string) {
	if p.json {
		return
	}
	if len(rows) == 0 {
		p.Muted("(no rows)")
		return
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// Result emits v as JSON in JSON mode, and calls render otherwise.
func (p *Printer) Result(v any, render func()) error {
	if p.json {
		return utils.WriteJSON(p.out, v)
	}
	render()
	return nil
}

// StatusIcon returns a colored status icon
func StatusIcon(status string) string {
	switch status {
	case "healthy":
		return successStyle.Render("✓")
	case "skipped":
		return warningStyle.Render("○")
	case "unhealthy":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}
