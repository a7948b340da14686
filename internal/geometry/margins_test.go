package geometry

import "testing"

func TestLogicalHorizontalLTR(t *testing.T) {
	phys := EdgeSizes{Top: 1, Right: 2, Bottom: 3, Left: 4}
	got := Logical(phys, HorizontalTB, LTR)
	want := Margins{BlockStart: 1, BlockEnd: 3, InlineStart: 4, InlineEnd: 2}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestLogicalHorizontalRTL(t *testing.T) {
	phys := EdgeSizes{Top: 1, Right: 2, Bottom: 3, Left: 4}
	got := Logical(phys, HorizontalTB, RTL)
	want := Margins{BlockStart: 1, BlockEnd: 3, InlineStart: 2, InlineEnd: 4}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestLogicalVerticalRL(t *testing.T) {
	phys := EdgeSizes{Top: 1, Right: 2, Bottom: 3, Left: 4}
	got := Logical(phys, VerticalRL, LTR)
	want := Margins{BlockStart: 2, BlockEnd: 4, InlineStart: 1, InlineEnd: 3}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestDerivedDirection(t *testing.T) {
	tests := []struct {
		name string
		mode WritingMode
		dir  Direction
		want Direction
	}{
		{"horizontal ltr", HorizontalTB, LTR, LTR},
		{"horizontal rtl", HorizontalTB, RTL, RTL},
		{"vertical-rl ignores ltr", VerticalRL, LTR, RTL},
		{"sideways-rl ignores ltr", SidewaysRL, LTR, RTL},
		{"vertical-lr stays ltr", VerticalLR, RTL, LTR},
		{"empty mode defaults horizontal", "", RTL, RTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivedDirection(tt.mode, tt.dir); got != tt.want {
				t.Errorf("DerivedDirection(%q, %q) = %q, want %q", tt.mode, tt.dir, got, tt.want)
			}
		})
	}
}

func TestNormalizeToHostTransposesOnAxisMismatch(t *testing.T) {
	m := Margins{BlockStart: 1, BlockEnd: 2, InlineStart: 3, InlineEnd: 4}

	got := NormalizeToHost(m, VerticalRL, LTR, HorizontalTB, LTR)
	// Axis differs and derived direction differs (vertical-rl is RTL), so
	// both transpose and mirror apply.
	want := MirrorEnds(Transpose(m))
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestNormalizeToHostMirrorsOnDirectionMismatch(t *testing.T) {
	m := Margins{BlockStart: 1, BlockEnd: 2, InlineStart: 3, InlineEnd: 4}

	got := NormalizeToHost(m, HorizontalTB, RTL, HorizontalTB, LTR)
	want := Margins{BlockStart: 2, BlockEnd: 1, InlineStart: 4, InlineEnd: 3}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestNormalizeToHostIdentity(t *testing.T) {
	m := Margins{BlockStart: 1, BlockEnd: 2, InlineStart: 3, InlineEnd: 4}
	if got := NormalizeToHost(m, HorizontalTB, LTR, HorizontalTB, LTR); got != m {
		t.Errorf("Expected identity, got %+v", got)
	}
}

// Flipping axis then direction then applying both inverses must return the
// original labeling, and composing both flips must be the 180-degree label
// permutation.
func TestMarginFlipRoundTrip(t *testing.T) {
	m := Margins{BlockStart: 1, BlockEnd: 2, InlineStart: 3, InlineEnd: 4}

	flipped := MirrorEnds(Transpose(m))
	want180 := Margins{BlockStart: 4, BlockEnd: 3, InlineStart: 2, InlineEnd: 1}
	if flipped != want180 {
		t.Errorf("Expected 180-degree permutation %+v, got %+v", want180, flipped)
	}

	back := Transpose(MirrorEnds(flipped))
	if back != m {
		t.Errorf("Round trip did not restore original: got %+v", back)
	}

	// Both flips are involutions.
	if Transpose(Transpose(m)) != m {
		t.Error("Transpose is not an involution")
	}
	if MirrorEnds(MirrorEnds(m)) != m {
		t.Error("MirrorEnds is not an involution")
	}
}
