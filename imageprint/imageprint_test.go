package imageprint

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
	// (0,1) and (1,1) stay fully transparent.
	return img
}

func TestPrintNoColorRamp(t *testing.T) {
	var b bytes.Buffer
	Print(&b, testImage(), ModeNoColor, false)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines; want 2", len(lines))
	}
	if lines[0] != "##.." {
		t.Errorf("row 0 = %q; want %q", lines[0], "##..")
	}
	if lines[1] != "    " {
		t.Errorf("row 1 = %q; want blanks", lines[1])
	}
}

func TestPrint24BitEscapes(t *testing.T) {
	var b bytes.Buffer
	Print(&b, testImage(), Mode24Bit, true)

	out := b.String()
	if !strings.Contains(out, "\x1b[48;2;255;255;255m") {
		t.Errorf("missing truecolor background escape in %q", out)
	}
	if !strings.HasSuffix(out, "\x1b[0m\n") {
		t.Errorf("rows do not reset attributes: %q", out)
	}
}
