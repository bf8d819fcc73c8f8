package compositor

import (
	"fmt"

	"badc0de.net/pkg/go-aseprite/ase"
)

// NoParent marks a top-level layer in a LayerView.
const NoParent = -1

// maxDepth caps ancestor walks so a malformed child-level sequence
// cannot send visibility or naming into an unbounded loop.
const maxDepth = 16

// LayerView is one layer as the renderer sees it: the decoded chunk
// plus its position in the resolved group tree.
type LayerView struct {
	*ase.LayerChunk

	// Index is the layer's position in the flat, insertion-ordered
	// layer list. Cels reference layers by this index.
	Index int

	// Parent is the Index of the enclosing group layer, or NoParent.
	Parent int

	// FullName is the layer's name qualified with its ancestor group
	// names, child first, dot separated.
	FullName string
}

// Layers collects every layer chunk of the document in insertion
// order and resolves each layer's parent group.
//
// The wire format carries nesting only as a per-layer child level: a
// layer's parent is the most recent preceding layer one level up. A
// level-N layer with no preceding level-N-1 layer is treated as
// top-level.
func Layers(doc *ase.Document) []LayerView {
	var out []LayerView
	lastAtLevel := map[int]int{}

	for _, frame := range doc.Frames {
		for _, ch := range frame.Chunks {
			l, ok := ch.(*ase.LayerChunk)
			if !ok {
				continue
			}
			idx := len(out)
			level := int(l.ChildLevel)

			parent := NoParent
			if level > 0 {
				if p, ok := lastAtLevel[level-1]; ok {
					parent = p
				}
			}
			lastAtLevel[level] = idx

			out = append(out, LayerView{
				LayerChunk: l,
				Index:      idx,
				Parent:     parent,
			})
		}
	}

	for i := range out {
		out[i].FullName = fullName(out, i)
	}
	return out
}

func fullName(layers []LayerView, i int) string {
	name := layers[i].Name.String()
	parent := layers[i].Parent
	for depth := 0; parent != NoParent && depth < maxDepth; depth++ {
		name = fmt.Sprintf("%s.%s", name, layers[parent].Name.String())
		parent = layers[parent].Parent
	}
	return name
}

// Visible reports whether layer i should be drawn: the layer itself
// and every ancestor group must carry the visible flag.
func Visible(layers []LayerView, i int) bool {
	for depth := 0; i != NoParent && depth < maxDepth; depth++ {
		if !layers[i].LayerChunk.Visible() {
			return false
		}
		i = layers[i].Parent
	}
	return true
}
