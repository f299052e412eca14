package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Canopy banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Greens from canopy floor to crown.
	lines := []struct{ text, color string }{
		{"   ___ __ _ _ __   ___  _ __  _   _", "#14532d"},
		{"  / __/ _` | '_ \\ / _ \\| '_ \\| | | |", "#166534"},
		{" | (_| (_| | | | | (_) | |_) | |_| |", "#15803d"},
		{"  \\___\\__,_|_| |_|\\___/| .__/ \\__, |", "#22c55e"},
		{"                       |_|    |___/", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
