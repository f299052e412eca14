package cli

import (
	"io"
	"os"

	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/aretw0/canopy/pkg/render"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of w, or DefaultWidth.
func TerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}

// RenderOptions picks terminal renderer settings for w. Colours and markdown
// are only used on a real terminal unless plain is set.
func RenderOptions(w io.Writer, markdown, plain bool) []render.Option {
	width := TerminalWidth(w)
	opts := []render.Option{render.WithWidth(width)}
	if plain || !IsTerminal(w) {
		return opts
	}
	opts = append(opts, render.WithProfile(termenv.NewOutput(w).EnvColorProfile()))
	if markdown {
		opts = append(opts, render.WithContentRenderer(tui.NewRenderer(width)))
	}
	return opts
}
