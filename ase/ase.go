// Package ase implements a reader for Aseprite (.ase / .aseprite)
// sprite container files.
//
// The decoder produces an immutable Document: a file header plus the
// ordered frames, each frame carrying its decoded chunks (layers,
// cels, tags). Chunk types the decoder does not understand are kept
// as opaque byte spans so callers can still account for them.
//
// Rendering decoded frames to images is a higher level concern; see
// the compositor package.
package ase

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	headerSize      = 128
	frameHeaderSize = 16
	chunkHeaderSize = 6
)

// Magic numbers identifying the file header and each frame header.
const (
	MagicHeader uint16 = 0xA5E0
	MagicFrame  uint16 = 0xF1FA
)

// Wire type tags of the chunk kinds this package decodes. Any other
// tag is preserved as an UnknownChunk.
const (
	ChunkTypeLayer uint16 = 0x2004
	ChunkTypeCel   uint16 = 0x2005
	ChunkTypeTags  uint16 = 0x2018
)

// Document is a fully decoded Aseprite file. It is not modified by
// this package after Decode returns.
type Document struct {
	Header Header
	Frames []Frame

	// Warnings collects structural leniencies encountered while
	// decoding (frame count mismatches, chunks spilling past a
	// frame's declared size, out-of-range enumeration values).
	// They are diagnostic only; a Document with warnings decoded
	// successfully.
	Warnings []string
}

// Header is the fixed 128-byte file header.
type Header struct {
	FileSize   uint32
	Magic      uint16 // must be MagicHeader
	Frames     uint16 // declared frame count; advisory, see Decode
	Width      uint16
	Height     uint16
	ColorDepth uint16 // bits per pixel: 8, 16 or 32
	Flags      uint32
	Speed      uint16 // legacy; per-frame durations supersede it

	TransparentIndex uint8  // palette index treated as transparent
	ColorCount       uint16 // declared palette size

	PixelWidth  uint8
	PixelHeight uint8

	GridX      int16
	GridY      int16
	GridWidth  uint16
	GridHeight uint16
}

// BytesPerPixel derives the pixel stride from the colour depth.
// Returns 0 for a depth that is not a whole number of bytes.
func (h Header) BytesPerPixel() int {
	return int(h.ColorDepth) / 8
}

// Frame is one animation frame: its fixed 16-byte header fields and
// the decoded chunk sequence.
type Frame struct {
	Size          uint32 // declared byte size, including this header; advisory
	Magic         uint16 // must be MagicFrame
	OldChunkCount uint16 // legacy 16-bit chunk count, ignored
	Duration      uint16 // milliseconds
	ChunkCount    uint32

	Chunks []Chunk
}

// Chunk is one type-tagged sub-record of a frame. The concrete types
// are *LayerChunk, *CelChunk, *TagsChunk and *UnknownChunk.
type Chunk interface {
	// Kind returns a short lowercase name for the chunk kind.
	Kind() string
}

// UnknownChunk preserves a chunk the decoder has no specific decoder
// for. Data holds the full chunk span, including the 6-byte chunk
// header, exactly as read from the stream.
type UnknownChunk struct {
	Size uint32
	Type uint16
	Data []byte
}

func (c *UnknownChunk) Kind() string { return "unknown" }

func (d *Document) warnf(format string, args ...interface{}) {
	w := fmt.Sprintf(format, args...)
	d.Warnings = append(d.Warnings, w)
	glog.Warning(w)
}

// Decode reads an entire Aseprite document from r.
//
// Decoding is all-or-nothing: any fatal condition (bad magic,
// truncated header, decompression failure, unsupported cel kind)
// aborts the whole decode. Minor structural drift, such as more
// frames than the header declares or chunk data extending past a
// frame's declared size, is tolerated and recorded in
// Document.Warnings instead.
func Decode(r io.ReadSeeker) (*Document, error) {
	return DecodeContext(context.Background(), r)
}

// DecodeHeader reads and validates only the 128-byte file header,
// leaving r positioned at the first frame.
func DecodeHeader(r io.Reader) (Header, error) {
	var hb [headerSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return Header{}, errors.Wrapf(ErrTruncatedHeader, "want %d bytes: %v", headerSize, err)
	}
	h := decodeHeader(hb[:])
	if h.Magic != MagicHeader {
		return Header{}, errors.Wrapf(ErrBadMagic, "got %#04x, want %#04x", h.Magic, MagicHeader)
	}
	return h, nil
}

// DecodeContext is Decode with cancellation. The context is polled
// between frames; no partial frame escapes across that boundary.
func DecodeContext(ctx context.Context, r io.ReadSeeker) (*Document, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	doc := &Document{Header: h}

	for frameIndex := 0; ; frameIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var fb [frameHeaderSize]byte
		n, err := io.ReadFull(r, fb[:])
		if err == io.EOF {
			// Normal end of document: frames are located purely
			// by sequential consumption, never by seeking.
			break
		}
		if err == io.ErrUnexpectedEOF {
			// A short tail decodes as zeros, like any other
			// truncated field; the magic check below rejects it.
			for i := n; i < len(fb); i++ {
				fb[i] = 0
			}
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading frame %d header", frameIndex)
		}

		frame := Frame{
			Size:          leU32(fb[:], 0),
			Magic:         leU16(fb[:], 4),
			OldChunkCount: leU16(fb[:], 6),
			Duration:      leU16(fb[:], 8),
			ChunkCount:    leU32(fb[:], 12),
		}
		if frame.Magic != MagicFrame {
			// Fatal: there is no reliable way to resynchronize to
			// the next frame boundary.
			return nil, errors.Wrapf(ErrBadFrameMagic, "frame %d: got %#04x, want %#04x", frameIndex, frame.Magic, MagicFrame)
		}
		if frameIndex > int(doc.Header.Frames) {
			doc.warnf("decoding frame %d although the header declares only %d frames; trusting the stream", frameIndex, doc.Header.Frames)
		}

		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, errors.Wrapf(err, "locating frame %d", frameIndex)
		}
		frameEnd := pos + int64(frame.Size) // diagnostic only
		glog.V(2).Infof("frame %d at offset %d: %d chunks, %dms", frameIndex, pos-frameHeaderSize, frame.ChunkCount, frame.Duration)

		for ci := uint32(0); ci < frame.ChunkCount; ci++ {
			chunk, err := decodeChunk(doc, r, frameIndex, frameEnd)
			if err != nil {
				return nil, err
			}
			frame.Chunks = append(frame.Chunks, chunk)
		}

		doc.Frames = append(doc.Frames, frame)
	}

	return doc, nil
}

func decodeHeader(b []byte) Header {
	return Header{
		FileSize:   leU32(b, 0),
		Magic:      leU16(b, 4),
		Frames:     leU16(b, 6),
		Width:      leU16(b, 8),
		Height:     leU16(b, 10),
		ColorDepth: leU16(b, 12),
		Flags:      leU32(b, 14),
		Speed:      leU16(b, 18),

		TransparentIndex: byteAt(b, 28),
		ColorCount:       leU16(b, 32),

		PixelWidth:  byteAt(b, 34),
		PixelHeight: byteAt(b, 35),

		GridX:      leI16(b, 36),
		GridY:      leI16(b, 38),
		GridWidth:  leU16(b, 40),
		GridHeight: leU16(b, 42),
	}
}

// decodeChunk reads the next chunk at the current stream position.
// The 6-byte chunk header is peeked first, then the position is
// rewound so the full declared span, header included, lands in one
// buffer; all payload offsets are relative to that span.
func decodeChunk(doc *Document, r io.ReadSeeker, frameIndex int, frameEnd int64) (Chunk, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrapf(err, "locating chunk in frame %d", frameIndex)
	}
	if pos >= frameEnd {
		doc.warnf("frame %d: chunk at offset %d spills past the frame's declared end %d; continuing", frameIndex, pos, frameEnd)
	}

	var ch [chunkHeaderSize]byte
	if _, err := io.ReadFull(r, ch[:]); err != nil {
		return nil, errors.Wrapf(err, "reading chunk header in frame %d", frameIndex)
	}
	size := leU32(ch[:], 0)
	typ := leU16(ch[:], 4)

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "rewinding to chunk start in frame %d", frameIndex)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		if err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, errors.Wrapf(err, "reading %d-byte chunk span in frame %d", size, frameIndex)
		}
		// Short spans keep their zeroed tail; the field readers
		// decode missing ranges as zeros.
	}

	switch typ {
	case ChunkTypeLayer:
		return decodeLayerChunk(doc, data)
	case ChunkTypeCel:
		return decodeCelChunk(doc, data)
	case ChunkTypeTags:
		return decodeTagsChunk(doc, data)
	default:
		return &UnknownChunk{Size: size, Type: typ, Data: data}, nil
	}
}
