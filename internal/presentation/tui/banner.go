package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                                          _          `, "#34d399"},
	{`  ___ _   _ _ __ ___  _ __ ___   __ _ _ __(_)_______ `, "#2dd4bf"},
	{` / __| | | | '_ ' _ \| '_ ' _ \ / _' | '__| |_  / _ \`, "#22d3ee"},
	{` \__ \ |_| | | | | | | | | | | | (_| | |  | |/ /  __/`, "#38bdf8"},
	{` |___/\__,_|_| |_| |_|_| |_| |_|\__,_|_|  |_/___\___|`, "#60a5fa"},
}

// PrintBanner writes the ASCII art banner to w, colored when the terminal supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  version "+version).Faint())
	fmt.Fprintln(w)
}
