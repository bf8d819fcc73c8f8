// Package imageprint renders images on a terminal. UNSUPPORTED debug
// package.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
)

// Mode selects the escape-sequence flavour used for pixel cells.
type Mode int

const (
	// ModeNoColor prints the luminance ramp with no escape
	// sequences at all.
	ModeNoColor Mode = iota
	// Mode256Color colours cells through the terminal palette.
	Mode256Color
	// Mode24Bit emits truecolor background escapes directly.
	Mode24Bit
)

// Print draws img as two-character cells, one row per scanline. With
// blanks, cells are solid background blocks; otherwise a luminance
// ramp of ASCII shades is printed over the colour. Fully transparent
// pixels always print as plain blanks.
func Print(w io.Writer, img image.Image, mode Mode, blanks bool) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cell(w, img.At(x, y), mode, blanks)
		}
		if mode != ModeNoColor {
			fmt.Fprintf(w, "\x1b[0m")
		}
		fmt.Fprintf(w, "\n")
	}
}

func cell(w io.Writer, col ic.Color, mode Mode, blanks bool) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if mode != ModeNoColor {
			fmt.Fprintf(w, "\x1b[0m")
		}
		fmt.Fprintf(w, "  ")
		return
	}

	glyph := "  "
	if !blanks {
		lum := ((cR + cG + cB) / 3) >> 8
		switch {
		case lum < 32:
			glyph = ".."
		case lum < 64:
			glyph = "--"
		case lum < 128:
			glyph = "=="
		default:
			glyph = "##"
		}
	}

	r8, g8, b8 := uint8(cR>>8), uint8(cG>>8), uint8(cB>>8)
	switch mode {
	case Mode24Bit:
		fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm%s", r8, g8, b8, glyph)
	case Mode256Color:
		fmt.Fprint(w, color.RGB(r8, g8, b8, true).Sprint(glyph))
	default:
		fmt.Fprintf(w, "%s", glyph)
	}
}

// PrintITerm draws an image using iTerm2's inline image protocol.
//
// https://www.iterm2.com/documentation-images.html
func PrintITerm(w io.Writer, img image.Image, name string) {
	if !isTermItermWez() {
		return
	}
	encName := base64.StdEncoding.EncodeToString([]byte(name))
	var b bytes.Buffer
	bEnc := base64.NewEncoder(base64.StdEncoding, &b)
	png.Encode(bEnc, img)
	bEnc.Close()
	fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n",
		encName, b.Len(), img.Bounds().Dx(), img.Bounds().Dy(), b.String())
}
