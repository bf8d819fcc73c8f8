// Package compositor flattens decoded Aseprite documents into
// standard image.Image values.
//
// Cels are drawn bottom to top in layer order, with a cel's z-index
// reordering it within its frame. Invisible layers, and layers inside
// an invisible group, are skipped. Layer and cel opacities multiply.
//
// Importing this package registers the "aseprite" format with the
// standard image package; see Decode.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-aseprite/ase"
)

// ErrNoSuchFrame is returned when a frame index is out of range for
// the document.
var ErrNoSuchFrame = errors.New("compositor: no such frame")

// Frame flattens one frame of doc into an image of the canvas size.
func Frame(doc *ase.Document, index int) (image.Image, error) {
	return FrameWithLayers(doc, index, Layers(doc))
}

// FrameWithLayers is Frame with a precomputed layer view, for callers
// flattening many frames of the same document.
func FrameWithLayers(doc *ase.Document, index int, layers []LayerView) (image.Image, error) {
	if index < 0 || index >= len(doc.Frames) {
		return nil, errors.Wrapf(ErrNoSuchFrame, "frame %d of %d", index, len(doc.Frames))
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, int(doc.Header.Width), int(doc.Header.Height)))

	cels := frameCels(doc, index)
	sort.SliceStable(cels, func(i, j int) bool {
		oi := int(cels[i].LayerIndex) + int(cels[i].ZIndex)
		oj := int(cels[j].LayerIndex) + int(cels[j].ZIndex)
		if oi != oj {
			return oi < oj
		}
		return cels[i].LayerIndex < cels[j].LayerIndex
	})

	for _, cel := range cels {
		li := int(cel.LayerIndex)
		if li >= len(layers) {
			glog.Errorf("cel references layer %d, but only %d layers are declared; skipping", li, len(layers))
			continue
		}
		layer := layers[li]
		if layer.Type == ase.LayerTypeGroup || !Visible(layers, li) {
			continue
		}

		// A linked cel carries its own position and opacity and
		// borrows only the pixel payload of the cel it points at.
		src := cel
		if cel.Type == ase.CelTypeLinked {
			src = linkedCel(doc, cel, index)
			if src == nil {
				continue
			}
		}

		img := celImage(doc.Header, src)
		if img == nil {
			continue
		}

		opacity := mulOpacity(layer.Opacity, cel.Opacity)
		r := image.Rect(int(cel.X), int(cel.Y),
			int(cel.X)+int(src.Width), int(cel.Y)+int(src.Height))
		draw.DrawMask(canvas, r, img, image.Point{},
			image.NewUniform(color.Alpha{A: opacity}), image.Point{}, draw.Over)
	}

	return canvas, nil
}

func frameCels(doc *ase.Document, index int) []*ase.CelChunk {
	var cels []*ase.CelChunk
	for _, ch := range doc.Frames[index].Chunks {
		if c, ok := ch.(*ase.CelChunk); ok {
			cels = append(cels, c)
		}
	}
	return cels
}

// linkedCel resolves a CelTypeLinked cel to the cel on the same layer
// in the frame it links to. Returns nil when the link cannot be
// followed; a link to another linked cel is not chased further.
func linkedCel(doc *ase.Document, cel *ase.CelChunk, index int) *ase.CelChunk {
	lf := int(cel.LinkedFrame)
	if lf >= len(doc.Frames) || lf == index {
		glog.Errorf("cel on layer %d links to frame %d, which cannot be resolved; skipping", cel.LayerIndex, lf)
		return nil
	}
	for _, src := range frameCels(doc, lf) {
		if src.LayerIndex != cel.LayerIndex {
			continue
		}
		if src.Type == ase.CelTypeLinked {
			glog.Errorf("cel on layer %d links to another linked cel in frame %d; skipping", cel.LayerIndex, lf)
			return nil
		}
		return src
	}
	glog.Errorf("cel on layer %d links to frame %d, which has no cel for that layer; skipping", cel.LayerIndex, lf)
	return nil
}

// celImage converts a cel's pixel bytes into a non-premultiplied RGBA
// image, according to the document's colour depth.
//
// Indexed documents have no palette chunk decoder yet, so palette
// indices map onto a grayscale ramp, with the header's transparent
// index rendered fully transparent.
func celImage(h ase.Header, c *ase.CelChunk) *image.NRGBA {
	w, ht := int(c.Width), int(c.Height)
	if w <= 0 || ht <= 0 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, ht))

	switch h.ColorDepth {
	case 32:
		copy(img.Pix, c.Pixels)
	case 16:
		// Grayscale with alpha, two bytes per pixel.
		for i := 0; i*2+1 < len(c.Pixels) && i < w*ht; i++ {
			v, a := c.Pixels[i*2], c.Pixels[i*2+1]
			img.Pix[i*4+0] = v
			img.Pix[i*4+1] = v
			img.Pix[i*4+2] = v
			img.Pix[i*4+3] = a
		}
	case 8:
		for i := 0; i < len(c.Pixels) && i < w*ht; i++ {
			v := c.Pixels[i]
			a := uint8(255)
			if v == h.TransparentIndex {
				a = 0
			}
			img.Pix[i*4+0] = v
			img.Pix[i*4+1] = v
			img.Pix[i*4+2] = v
			img.Pix[i*4+3] = a
		}
	default:
		glog.Errorf("cannot render %d bpp pixel data", h.ColorDepth)
		return nil
	}
	return img
}

func mulOpacity(layer, cel uint8) uint8 {
	return uint8(int(layer) * int(cel) / 255)
}
