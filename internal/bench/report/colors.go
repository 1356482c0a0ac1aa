package report

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme defines the colors used for console output.
type ColorScheme struct {
	Title     *color.Color
	Label     *color.Color
	Value     *color.Color
	Success   *color.Color
	Warning   *color.Color
	Error     *color.Color
	Highlight *color.Color
	Muted     *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:     color.New(color.FgCyan, color.Bold),
		Label:     color.New(color.FgYellow),
		Value:     color.New(color.FgWhite, color.Bold),
		Success:   color.New(color.FgGreen),
		Warning:   color.New(color.FgYellow, color.Bold),
		Error:     color.New(color.FgRed),
		Highlight: color.New(color.FgMagenta, color.Bold),
		Muted:     color.New(color.FgHiBlack),
	}
}

// NoColorScheme returns a color scheme with all colors disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range []*color.Color{
		scheme.Title, scheme.Label, scheme.Value, scheme.Success,
		scheme.Warning, scheme.Error, scheme.Highlight, scheme.Muted,
	} {
		c.DisableColor()
	}
	return scheme
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
