package geometry

// EdgeSizes holds physical margin extents as read off a rendered box.
type EdgeSizes struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Margins holds margin extents normalized to logical block/inline axes.
type Margins struct {
	BlockStart  float64
	BlockEnd    float64
	InlineStart float64
	InlineEnd   float64
}

// ItemBox is the measurement of one rendered child: its border-box extent
// plus logical margins, expressed relative to the host's writing mode.
type ItemBox struct {
	Width  float64
	Height float64
	Margins
}

// Logical maps physical margins onto logical axes using the element's own
// writing mode and derived direction.
func Logical(phys EdgeSizes, mode WritingMode, dir Direction) Margins {
	var m Margins
	switch mode {
	case VerticalRL, SidewaysRL:
		m = Margins{BlockStart: phys.Right, BlockEnd: phys.Left, InlineStart: phys.Top, InlineEnd: phys.Bottom}
	case VerticalLR:
		m = Margins{BlockStart: phys.Left, BlockEnd: phys.Right, InlineStart: phys.Top, InlineEnd: phys.Bottom}
	case SidewaysLR:
		m = Margins{BlockStart: phys.Left, BlockEnd: phys.Right, InlineStart: phys.Bottom, InlineEnd: phys.Top}
	default: // horizontal-tb
		m = Margins{BlockStart: phys.Top, BlockEnd: phys.Bottom, InlineStart: phys.Left, InlineEnd: phys.Right}
	}
	if mode.IsHorizontal() && DerivedDirection(mode, dir) == RTL {
		m.InlineStart, m.InlineEnd = m.InlineEnd, m.InlineStart
	}
	return m
}

// Transpose swaps the block and inline margin pairs. Applied when a child's
// writing mode runs along the opposite primary axis from its host's.
func Transpose(m Margins) Margins {
	return Margins{
		BlockStart:  m.InlineStart,
		BlockEnd:    m.InlineEnd,
		InlineStart: m.BlockStart,
		InlineEnd:   m.BlockEnd,
	}
}

// MirrorEnds swaps start and end within each axis pair. Applied when a
// child's derived reading direction differs from its host's.
func MirrorEnds(m Margins) Margins {
	return Margins{
		BlockStart:  m.BlockEnd,
		BlockEnd:    m.BlockStart,
		InlineStart: m.InlineEnd,
		InlineEnd:   m.InlineStart,
	}
}

// NormalizeToHost re-expresses a child's own logical margins in the host's
// logical axes. Axis transposition and direction mirroring are independent:
// both may apply, either, or neither.
func NormalizeToHost(m Margins, childMode WritingMode, childDir Direction, hostMode WritingMode, hostDir Direction) Margins {
	if childMode.IsHorizontal() != hostMode.IsHorizontal() {
		m = Transpose(m)
	}
	if DerivedDirection(childMode, childDir) != DerivedDirection(hostMode, hostDir) {
		m = MirrorEnds(m)
	}
	return m
}
