package main

import (
	"flag"
	"image"
	"os"

	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-aseprite/imageprint"
)

var (
	col      = flag.Bool("col", true, "whether to use color at all")
	col256   = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm    = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm  = flag.Bool("rasterm", false, "whether to print with rasterm (kitty, iterm, sixel)")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize = flag.Bool("downsize", false, "downsize large frames to the terminal size")
)

func out(img image.Image) {
	if *downsize {
		if termSize, err := GetTermSize(); err == nil {
			if (termSize.WSXPixel != 0 && termSize.WSYPixel != 0) && (*rasterm || *iterm) {
				// Image-protocol renderers get pixel budgets; the
				// cell renderers get the row/column grid instead.
				img = resize.Thumbnail(termSize.WSXPixel/2, termSize.WSYPixel/2, img, resize.Lanczos3)
			} else {
				img = resize.Thumbnail(termSize.WSRow/2, termSize.WSCol/2, img, resize.Lanczos3)
			}
		}
	}

	switch {
	case *rasterm:
		imageprint.PrintRasTerm(os.Stdout, img)
	case *iterm:
		imageprint.PrintITerm(os.Stdout, img, "frame.png")
	case !*col:
		imageprint.Print(os.Stdout, img, imageprint.ModeNoColor, *blanks)
	case *col256:
		imageprint.Print(os.Stdout, img, imageprint.Mode256Color, *blanks)
	default:
		imageprint.Print(os.Stdout, img, imageprint.Mode24Bit, *blanks)
	}
}
