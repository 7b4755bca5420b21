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
	{"       _       _", "#818cf8"},
	{"    __| | ___ (_)_ __   __ _", "#a78bfa"},
	{"   / _` |/ _ \\| | '_ \\ / _` |", "#c084fc"},
	{"  | (_| | (_) | | | | | (_| |", "#e879f9"},
	{"   \\__,_|\\___/|_|_| |_|\\__, |", "#f472b6"},
	{"                       |___/", "#fb7185"},
}

// PrintBanner writes the doing banner to w, colored when the terminal allows it.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
