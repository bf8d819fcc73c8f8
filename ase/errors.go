package ase

import (
	"github.com/pkg/errors"
)

// Decode failure classes. Fatal conditions abort the whole document
// decode; callers classify with errors.Is.
var (
	// ErrTruncatedHeader means fewer than 128 header bytes were
	// available. Fatal.
	ErrTruncatedHeader = errors.New("ase: truncated file header")

	// ErrBadMagic means the file header magic was not MagicHeader.
	// Fatal.
	ErrBadMagic = errors.New("ase: bad file header magic")

	// ErrBadFrameMagic means a frame header magic was not
	// MagicFrame. Fatal: frame boundaries cannot be resynchronized.
	ErrBadFrameMagic = errors.New("ase: bad frame header magic")

	// ErrDecompressionFailed means a compressed cel's zlib stream
	// could not be inflated. Fatal: pixel data is mandatory once
	// declared compressed.
	ErrDecompressionFailed = errors.New("ase: cel decompression failed")

	// ErrUnsupportedFeature means the file uses a feature this
	// decoder does not implement (compressed tilemap cels). Fatal
	// for the decode, but a distinct, catchable kind so callers can
	// report it instead of terminating.
	ErrUnsupportedFeature = errors.New("ase: unsupported file feature")

	// ErrInvalidText means a name field was not valid UTF-8. Never
	// fatal; the caller may substitute a placeholder.
	ErrInvalidText = errors.New("ase: text field is not valid UTF-8")
)
