package geometry

// ChildPosition locates one rendered child in logical coordinates. It is
// produced by a layout strategy for every index in range and consumed by the
// styling sink after the engine resolves it to physical coordinates.
// Optional fields are nil when the layout leaves them to the child.
type ChildPosition struct {
	Block      float64
	Inline     float64
	BlockSize  *float64
	InlineSize *float64
	XOffset    *float64
	YOffset    *float64
}

// Dimension is one axis of the total scrollable content extent: either an
// absolute pixel value, or a pair clamped CSS min()-style.
type Dimension struct {
	Px    float64
	MinOf *float64 // when set, the effective extent is min(Px, *MinOf)
}

// Resolve returns the effective pixel extent.
func (d Dimension) Resolve() float64 {
	if d.MinOf != nil && *d.MinOf < d.Px {
		return *d.MinOf
	}
	return d.Px
}

// VirtualizerSize is the total scrollable content extent reported by a
// layout strategy.
type VirtualizerSize struct {
	InlineSize Dimension
	BlockSize  Dimension
}

// ScrollError is a correction delta a layout strategy asks the engine to
// apply to the current scroll offset, typically after estimated sizes were
// revised by measurement.
type ScrollError struct {
	Left float64
	Top  float64
}

// Px returns a pointer to v, for optional pixel fields.
func Px(v float64) *float64 { return &v }
