package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Courier banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`   ___                 _`, "#34d399"},
		{`  / __|___ _  _ _ _ __(_)___ _ _`, "#2dd4bf"},
		{` | (__/ _ \ || | '_/ _| / -_) '_|`, "#22d3ee"},
		{`  \___\___/\_,_|_| \__|_\___|_|`, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  package tracking assistant "+version).Faint())
	fmt.Fprintln(w)
}
