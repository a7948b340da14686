package geometry

// WritingMode mirrors the CSS writing-mode values the engine distinguishes.
type WritingMode string

const (
	HorizontalTB WritingMode = "horizontal-tb"
	VerticalRL   WritingMode = "vertical-rl"
	VerticalLR   WritingMode = "vertical-lr"
	SidewaysRL   WritingMode = "sideways-rl"
	SidewaysLR   WritingMode = "sideways-lr"
)

// Direction mirrors the CSS direction property.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// IsHorizontal reports whether the mode's block axis runs vertically, i.e.
// lines of content flow horizontally.
func (m WritingMode) IsHorizontal() bool {
	return m == HorizontalTB || m == ""
}

// encodesRTL reports whether the writing-mode name itself implies a
// right-to-left inline progression regardless of the direction property.
func (m WritingMode) encodesRTL() bool {
	return m == VerticalRL || m == SidewaysRL
}

// DerivedDirection computes the effective reading direction of an element.
// An element reads right-to-left when its writing mode is horizontal and its
// direction is rtl, or when the writing-mode name itself encodes an RTL
// vertical mode.
func DerivedDirection(mode WritingMode, dir Direction) Direction {
	if mode.IsHorizontal() && dir == RTL {
		return RTL
	}
	if mode.encodesRTL() {
		return RTL
	}
	return LTR
}
