package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cohort banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Teal to indigo, one step per line
	lines := []struct{ text, color string }{
		{"   ___     _                _   ", "#2dd4bf"},
		{"  / __|___| |_  ___ _ _| |_ ", "#38bdf8"},
		{" | (__/ _ \\ ' \\/ _ \\ '_|  _|", "#60a5fa"},
		{"  \\___\\___/_||_\\___/_|  \\__|", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
