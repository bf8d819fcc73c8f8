package compositor

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"badc0de.net/pkg/go-aseprite/ase"
)

func init() {
	// The header magic 0xA5E0 sits at byte offset 4, little endian.
	image.RegisterFormat("aseprite", "????\xe0\xa5", Decode, DecodeConfig)
}

// Decode reads an Aseprite document from r and returns its first
// frame, flattened. It exists to satisfy image.RegisterFormat; use
// ase.Decode plus Frame for anything beyond the first frame.
func Decode(r io.Reader) (image.Image, error) {
	rs, err := readSeeker(r)
	if err != nil {
		return nil, err
	}
	doc, err := ase.Decode(rs)
	if err != nil {
		return nil, err
	}
	return Frame(doc, 0)
}

// DecodeConfig reads only the file header and reports the canvas
// geometry without decoding any frame.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := ase.DecodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// readSeeker returns r as an io.ReadSeeker, slurping it into memory
// when it does not already support seeking.
func readSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
