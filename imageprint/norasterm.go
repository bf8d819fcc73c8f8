//go:build !go1.13 || windows
// +build !go1.13 windows

package imageprint

import (
	"flag"
	"fmt"
	"image"
	"io"
)

var (
	forceITerm = flag.Bool("force_iterm", false, "treat the terminal as iTerm2 (build without rasterm detection)")
)

func isTermItermWez() bool {
	return *forceITerm
}

func PrintRasTerm(w io.Writer, img image.Image) {
	fmt.Fprintf(w, "terminal graphics protocols need Go 1.13+ on a non-Windows platform\n")
}
