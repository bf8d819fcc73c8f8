package compositor

import (
	"time"

	"badc0de.net/pkg/go-aseprite/ase"
)

// Sequence expands a tag's frame range into the playback order its
// direction dictates. Ping-pong sequences omit the repeated endpoint
// of the return leg, so looping the result plays seamlessly.
func Sequence(tag ase.Tag) []int {
	from, to := int(tag.From), int(tag.To)
	if to < from {
		from, to = to, from
	}

	forward := func(s []int) []int {
		for i := from; i <= to; i++ {
			s = append(s, i)
		}
		return s
	}
	reverse := func(s []int) []int {
		for i := to; i >= from; i-- {
			s = append(s, i)
		}
		return s
	}

	var seq []int
	switch tag.Direction {
	case ase.TagDirectionForward:
		seq = forward(seq)
	case ase.TagDirectionReverse:
		seq = reverse(seq)
	case ase.TagDirectionPingPong:
		seq = forward(seq)
		for i := to - 1; i > from; i-- {
			seq = append(seq, i)
		}
	case ase.TagDirectionPingPongReverse:
		seq = reverse(seq)
		for i := from + 1; i < to; i++ {
			seq = append(seq, i)
		}
	}
	return seq
}

// Duration returns how long frame index should stay on screen. A zero
// per-frame duration falls back to the header's legacy speed field.
func Duration(doc *ase.Document, index int) time.Duration {
	if index < 0 || index >= len(doc.Frames) {
		return 0
	}
	ms := doc.Frames[index].Duration
	if ms == 0 {
		ms = doc.Header.Speed
	}
	return time.Duration(ms) * time.Millisecond
}

// Tags collects all tags declared anywhere in the document, in
// declaration order.
func Tags(doc *ase.Document) []ase.Tag {
	var tags []ase.Tag
	for _, frame := range doc.Frames {
		for _, ch := range frame.Chunks {
			if tc, ok := ch.(*ase.TagsChunk); ok {
				tags = append(tags, tc.Tags...)
			}
		}
	}
	return tags
}
