package ase

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

// CelType is the kind of a cel's payload. Wire values outside the
// enumeration wrap via CelTypeFromWire.
type CelType uint16

const (
	CelTypeRaw CelType = iota
	CelTypeLinked
	CelTypeCompressedImage
	CelTypeCompressedTilemap

	celTypeCount = 4
)

// CelTypeFromWire converts a wire value to a CelType. It is total:
// out-of-range values wrap by modulo, which is lossy.
func CelTypeFromWire(v uint16) CelType {
	return CelType(v % celTypeCount)
}

func (t CelType) String() string {
	switch t {
	case CelTypeRaw:
		return "Raw"
	case CelTypeLinked:
		return "Linked"
	case CelTypeCompressedImage:
		return "CompressedImage"
	case CelTypeCompressedTilemap:
		return "CompressedTilemap"
	}
	return "Unknown"
}

// CelChunk holds the pixel (or pixel-reference) payload for one layer
// within one frame.
//
// Compressed image cels are inflated eagerly at decode time, so
// Pixels holds the same uncompressed representation for both
// CelTypeRaw and CelTypeCompressedImage and consumers never need to
// distinguish the two.
type CelChunk struct {
	LayerIndex uint16 // position in the flat layer list
	X, Y       int16
	Opacity    uint8
	Type       CelType
	ZIndex     int16

	// Raw and CompressedImage cels.
	Width, Height uint16
	Pixels        []byte // uncompressed pixel bytes

	// CompressedData retains the original zlib payload of a
	// CompressedImage cel; Pixels holds its inflated form.
	CompressedData []byte

	// LinkedFrame is the frame index whose pixel data a
	// CelTypeLinked cel reuses.
	LinkedFrame uint16
}

func (c *CelChunk) Kind() string { return "cel" }

// decodeCelChunk decodes a 0x2005 chunk. Offsets index the full
// chunk span, 6-byte chunk header included.
func decodeCelChunk(doc *Document, data []byte) (*CelChunk, error) {
	typeWire := leU16(data, 13)

	c := &CelChunk{
		LayerIndex: leU16(data, 6),
		X:          leI16(data, 8),
		Y:          leI16(data, 10),
		Opacity:    byteAt(data, 12),
		Type:       CelTypeFromWire(typeWire),
		ZIndex:     leI16(data, 15),
	}
	if typeWire >= celTypeCount {
		doc.warnf("cel type %d out of range; wrapped to %s", typeWire, c.Type)
	}

	switch c.Type {
	case CelTypeRaw:
		c.Width = leU16(data, 22)
		c.Height = leU16(data, 24)
		c.Pixels = span(data, 26, len(data))
		doc.checkCelPixels(c)

	case CelTypeLinked:
		c.LinkedFrame = leU16(data, 22)

	case CelTypeCompressedImage:
		c.Width = leU16(data, 22)
		c.Height = leU16(data, 24)
		c.CompressedData = span(data, 26, len(data))

		pixels, err := inflate(c.CompressedData)
		if err != nil {
			return nil, errors.Wrapf(ErrDecompressionFailed, "cel on layer %d: %v", c.LayerIndex, err)
		}
		c.Pixels = pixels
		doc.checkCelPixels(c)

	case CelTypeCompressedTilemap:
		return nil, errors.Wrapf(ErrUnsupportedFeature, "compressed tilemap cel on layer %d", c.LayerIndex)
	}

	return c, nil
}

// checkCelPixels warns when a cel's pixel byte count disagrees with
// its dimensions and the document's colour depth. Advisory only.
func (d *Document) checkCelPixels(c *CelChunk) {
	bpp := d.Header.BytesPerPixel()
	if bpp == 0 {
		return
	}
	want := int(c.Width) * int(c.Height) * bpp
	if len(c.Pixels) != want {
		d.warnf("cel on layer %d: %d pixel bytes for %dx%d at %d bpp (want %d)",
			c.LayerIndex, len(c.Pixels), c.Width, c.Height, d.Header.ColorDepth, want)
	}
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
