package ase

// LayerType is the kind of a layer. Wire values outside the
// enumeration wrap via LayerTypeFromWire.
type LayerType uint16

const (
	LayerTypeNormal LayerType = iota
	LayerTypeGroup
	LayerTypeTilemap

	layerTypeCount = 3
)

// LayerTypeFromWire converts a wire value to a LayerType. It is
// total: out-of-range values wrap by modulo, which is lossy.
func LayerTypeFromWire(v uint16) LayerType {
	return LayerType(v % layerTypeCount)
}

func (t LayerType) String() string {
	switch t {
	case LayerTypeNormal:
		return "Normal"
	case LayerTypeGroup:
		return "Group"
	case LayerTypeTilemap:
		return "Tilemap"
	}
	return "Unknown"
}

// BlendMode is a layer's blend mode. Wire values outside the
// enumeration wrap via BlendModeFromWire.
type BlendMode uint16

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAddition
	BlendSubtract
	BlendDivide

	blendModeCount = 19
)

// BlendModeFromWire converts a wire value to a BlendMode. It is
// total: out-of-range values wrap by modulo, which is lossy.
func BlendModeFromWire(v uint16) BlendMode {
	return BlendMode(v % blendModeCount)
}

var blendModeNames = [blendModeCount]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten",
	"Color Dodge", "Color Burn", "Hard Light", "Soft Light",
	"Difference", "Exclusion", "Hue", "Saturation", "Color",
	"Luminosity", "Addition", "Subtract", "Divide",
}

func (m BlendMode) String() string {
	if int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return "Unknown"
}

// Layer flag bits.
const (
	LayerFlagVisible uint16 = 1 << iota
	LayerFlagEditable
	LayerFlagLockMovement
	LayerFlagBackground
	LayerFlagPreferLinkingCels
	LayerFlagIsCollapsed
	LayerFlagIsReference
)

// LayerChunk describes one layer. Layers arrive in a flat,
// insertion-ordered sequence; nesting is encoded only by ChildLevel,
// and reconstructing the group tree from it is the consumer's job
// (see the compositor package).
type LayerChunk struct {
	Flags      uint16
	Type       LayerType
	ChildLevel uint16
	BlendMode  BlendMode
	Opacity    uint8
	Name       String

	// TilesetIndex is meaningful only when Type is
	// LayerTypeTilemap; its 4 bytes trail the name field.
	TilesetIndex uint32
}

func (l *LayerChunk) Kind() string { return "layer" }

func (l *LayerChunk) Visible() bool     { return l.Flags&LayerFlagVisible != 0 }
func (l *LayerChunk) Background() bool  { return l.Flags&LayerFlagBackground != 0 }
func (l *LayerChunk) IsReference() bool { return l.Flags&LayerFlagIsReference != 0 }

// decodeLayerChunk decodes a 0x2004 chunk. Offsets index the full
// chunk span, 6-byte chunk header included.
func decodeLayerChunk(doc *Document, data []byte) (*LayerChunk, error) {
	typeWire := leU16(data, 8)
	blendWire := leU16(data, 16)

	l := &LayerChunk{
		Flags:      leU16(data, 6),
		Type:       LayerTypeFromWire(typeWire),
		ChildLevel: leU16(data, 10),
		BlendMode:  BlendModeFromWire(blendWire),
		Opacity:    byteAt(data, 18),
	}
	if typeWire >= layerTypeCount {
		doc.warnf("layer type %d out of range; wrapped to %s", typeWire, l.Type)
	}
	if blendWire >= blendModeCount {
		doc.warnf("layer blend mode %d out of range; wrapped to %s", blendWire, l.BlendMode)
	}

	// A tilemap layer appends a 4-byte tileset index after the name,
	// shortening the name field's range.
	nameEnd := len(data)
	if l.Type == LayerTypeTilemap {
		nameEnd -= 4
		l.TilesetIndex = leU32(data, nameEnd)
	}
	l.Name = decodeString(span(data, 22, nameEnd))

	return l, nil
}
