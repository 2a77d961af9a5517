package cli

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

func printBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _                       _   ", "#818cf8"},
		{" ___| | ___  ___ _ __   __ _| |_ ", "#a78bfa"},
		{"/ __| |/ _ \\/ _ \\ '_ \\ / _` | __|", "#c084fc"},
		{"\\__ \\ |  __/  __/ |_) | (_| | |_ ", "#e879f9"},
		{"|___/_|\\___|\\___| .__/ \\__,_|\\__|", "#f472b6"},
		{"                |_|              ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  version %s\n\n", Version)
}
