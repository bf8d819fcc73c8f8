//go:build go1.13 && !windows
// +build go1.13,!windows

package imageprint

import (
	"fmt"
	"image"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
)

func isTermItermWez() bool {
	return rasterm.IsTermItermWez()
}

// PrintRasTerm draws img using whichever graphics protocol the
// terminal speaks: Kitty, iTerm2, or sixel after median-cut
// quantization. Terminals with none of the three get no output.
func PrintRasTerm(w io.Writer, img image.Image) {
	switch {
	case rasterm.IsTermKitty():
		rasterm.Settings{}.KittyWriteImage(w, img)
		fmt.Fprintf(w, "\n")
	case rasterm.IsTermItermWez():
		rasterm.Settings{}.ItermWriteImage(w, img)
		fmt.Fprintf(w, "\n")
	default:
		if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
			paletted := image.NewPaletted(img.Bounds(), nil)
			quantizer := gogif.MedianCutQuantizer{NumColor: 64}
			quantizer.Quantize(paletted, img.Bounds(), img, image.ZP)

			rasterm.Settings{}.SixelWriteImage(w, paletted)
			fmt.Fprintf(w, "\n")
		}
	}
}
