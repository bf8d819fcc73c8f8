package ase

// TagDirection is a tag's playback direction. Wire values outside the
// enumeration wrap via TagDirectionFromWire.
type TagDirection uint8

const (
	TagDirectionForward TagDirection = iota
	TagDirectionReverse
	TagDirectionPingPong
	TagDirectionPingPongReverse

	tagDirectionCount = 4
)

// TagDirectionFromWire converts a wire value to a TagDirection. It is
// total: out-of-range values wrap by modulo, which is lossy.
func TagDirectionFromWire(v uint8) TagDirection {
	return TagDirection(v % tagDirectionCount)
}

func (d TagDirection) String() string {
	switch d {
	case TagDirectionForward:
		return "Forward"
	case TagDirectionReverse:
		return "Reverse"
	case TagDirectionPingPong:
		return "PingPong"
	case TagDirectionPingPongReverse:
		return "PingPongReverse"
	}
	return "Unknown"
}

// Tag is a named, directional playback range over a contiguous span
// of frame indices.
type Tag struct {
	From      uint16
	To        uint16
	Direction TagDirection
	Repeat    uint16
	Color     [3]uint8 // legacy tag colour; carried, not interpreted
	Name      String
}

// TagsChunk carries all the tags declared in one 0x2018 chunk.
type TagsChunk struct {
	Count uint16
	Tags  []Tag
}

func (t *TagsChunk) Kind() string { return "tag" }

// decodeTagsChunk decodes a 0x2018 chunk. Offsets index the full
// chunk span, 6-byte chunk header included.
//
// Records are packed back to back and each record's length depends on
// its own name, so the walk advances a running offset of
// 19+len(name) per record; there is no fixed stride.
func decodeTagsChunk(doc *Document, data []byte) (*TagsChunk, error) {
	tc := &TagsChunk{Count: leU16(data, 6)}

	offset := 16
	for i := 0; i < int(tc.Count); i++ {
		dirWire := byteAt(data, offset+4)
		nameLen := int(leU16(data, offset+17))

		t := Tag{
			From:      leU16(data, offset),
			To:        leU16(data, offset+2),
			Direction: TagDirectionFromWire(dirWire),
			Repeat:    leU16(data, offset+5),
			Name:      decodeString(span(data, offset+17, offset+19+nameLen)),
		}
		copy(t.Color[:], span(data, offset+13, offset+16))
		if dirWire >= tagDirectionCount {
			doc.warnf("tag %d direction %d out of range; wrapped to %s", i, dirWire, t.Direction)
		}
		tc.Tags = append(tc.Tags, t)

		offset += 19 + nameLen
	}

	return tc, nil
}
