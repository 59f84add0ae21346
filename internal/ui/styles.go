package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	infoColor    = lipgloss.Color("#119EFF")
	accentColor  = lipgloss.Color("#73B7F6")
	lightColor   = lipgloss.Color("#ECEDEE")
	darkColor    = lipgloss.Color("#16161D")
	successColor = lipgloss.Color("#4ADE80")
	errorColor   = lipgloss.Color("#F87171")
	warnColor    = lipgloss.Color("#FBBF24")
	mutedColor   = lipgloss.Color("#64748B")
	androidColor = lipgloss.Color("#34D399")
)

// Styles holds the lipgloss styles bound to one output renderer.
type Styles struct {
	Info     lipgloss.Style
	Link     lipgloss.Style
	Error    lipgloss.Style
	Warn     lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Android  lipgloss.Style
}

// NewStyles builds the style set for the given renderer. Colors degrade
// automatically when the renderer's output is not a terminal.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Info:    r.NewStyle().Foreground(infoColor),
		Link:    r.NewStyle().Foreground(infoColor).Underline(true),
		Error:   r.NewStyle().Foreground(errorColor),
		Warn:    r.NewStyle().Foreground(warnColor),
		Success: r.NewStyle().Foreground(successColor),
		Muted:   r.NewStyle().Foreground(mutedColor),
		Title: r.NewStyle().
			Foreground(accentColor).
			Bold(true),
		Item: r.NewStyle().
			Foreground(lightColor).
			PaddingLeft(2),
		Selected: r.NewStyle().
			Foreground(darkColor).
			Background(infoColor).
			Bold(true).
			PaddingLeft(2).
			PaddingRight(2),
		Android: r.NewStyle().
			Foreground(androidColor).
			Bold(true),
	}
}

// Printer writes styled user-facing messages. Progress goes to Out,
// failures go to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer

	out Styles
	err Styles
}

// NewPrinter creates a printer whose colors follow each writer's terminal
// capabilities.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{
		Out: out,
		Err: errOut,
		out: NewStyles(lipgloss.NewRenderer(out)),
		err: NewStyles(lipgloss.NewRenderer(errOut)),
	}
}

// Infof prints a blue progress line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintln(p.Out, p.out.Info.Render(fmt.Sprintf(format, args...)))
}

// Successf prints a green line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.Out, p.out.Success.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints a red line to the error stream.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.Err, p.err.Error.Render(fmt.Sprintf(format, args...)))
}

// DocsHint points the user at the setup documentation.
func (p *Printer) DocsHint(url string) {
	fmt.Fprintln(p.Err,
		p.err.Error.Render("Please refer to ")+
			p.err.Link.Render(url)+
			" for installation/setup instructions")
}

// Failure prints the top-level failure banner followed by the error detail.
func (p *Printer) Failure(err error) {
	fmt.Fprintln(p.Err, p.err.Error.Render("Something failed:"))
	fmt.Fprintf(p.Err, " %v\n", err)
}

// OutStyles exposes the styles bound to Out, for tabular command output.
func (p *Printer) OutStyles() Styles {
	return p.out
}

// StatusDot returns a colored dot
func (s Styles) StatusDot(online bool) string {
	if online {
		return s.Success.Render("●")
	}
	return s.Error.Render("○")
}
