package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the typomata ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to blue, one shade per line
	lines := []struct {
		text  string
		color string
	}{
		{" _                                    _", "#2dd4bf"},
		{"| |_ _   _ _ __   ___  _ __ ___   __ _| |_ __ _", "#22d3ee"},
		{"| __| | | | '_ \\ / _ \\| '_ ` _ \\ / _` | __/ _` |", "#38bdf8"},
		{"| |_| |_| | |_) | (_) | | | | | | (_| | || (_| |", "#60a5fa"},
		{" \\__|\\__, | .__/ \\___/|_| |_| |_|\\__,_|\\__\\__,_|", "#818cf8"},
		{"     |___/|_|", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
