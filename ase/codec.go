package ase

// Field readers used by the chunk decoders. A range that falls
// outside the buffer decodes as zero: a truncated or corrupt tail
// degrades to zero values rather than aborting the whole decode.

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"
)

func leU16(b []byte, off int) uint16 {
	if off < 0 || off+2 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint16(b[off:])
}

func leU32(b []byte, off int) uint32 {
	if off < 0 || off+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off:])
}

func leI16(b []byte, off int) int16 {
	return int16(leU16(b, off))
}

func byteAt(b []byte, off int) uint8 {
	if off < 0 || off >= len(b) {
		return 0
	}
	return b[off]
}

// span clips [from, to) to the buffer. Missing ranges come back nil,
// so downstream field readers see zeros.
func span(b []byte, from, to int) []byte {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	if from >= to {
		return nil
	}
	return b[from:to]
}

// String is a length-prefixed text field: a 2-byte length followed
// by that many bytes of UTF-8.
type String struct {
	Length uint16
	Data   []byte
}

func decodeString(b []byte) String {
	s := String{Length: leU16(b, 0)}
	n := int(s.Length)
	if n > len(b)-2 {
		n = len(b) - 2
	}
	if n > 0 {
		s.Data = b[2 : 2+n]
	}
	return s
}

// Text returns the field as a Go string. Invalid UTF-8 is reported
// as ErrInvalidText; this is never fatal to a decode, and callers may
// substitute a placeholder name.
func (s String) Text() (string, error) {
	if !utf8.Valid(s.Data) {
		return "", errors.Wrapf(ErrInvalidText, "%q", s.Data)
	}
	return string(s.Data), nil
}

// String implements fmt.Stringer, substituting a placeholder when the
// field is not valid UTF-8.
func (s String) String() string {
	t, err := s.Text()
	if err != nil {
		return "<invalid utf-8>"
	}
	return t
}
