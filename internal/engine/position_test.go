package engine

import (
	"testing"

	"github.com/HamStudy/vscroll/internal/geometry"
)

func TestPhysicalPosition(t *testing.T) {
	container := geometry.Size{Width: 400, Height: 600}
	pos := geometry.ChildPosition{
		Block:      120,
		Inline:     10,
		BlockSize:  geometry.Px(40),
		InlineSize: geometry.Px(300),
	}

	tests := []struct {
		name      string
		mode      geometry.WritingMode
		dir       geometry.Direction
		wantLeft  float64
		wantTop   float64
		wantWide  float64
		wantTall  float64
	}{
		{"horizontal ltr", geometry.HorizontalTB, geometry.LTR, 10, 120, 300, 40},
		{"horizontal rtl", geometry.HorizontalTB, geometry.RTL, 90, 120, 300, 40},
		{"vertical-lr", geometry.VerticalLR, geometry.LTR, 120, 10, 40, 300},
		{"vertical-rl", geometry.VerticalRL, geometry.LTR, 240, 10, 40, 300},
		{"sideways-rl", geometry.SidewaysRL, geometry.LTR, 240, 10, 40, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := physicalPosition(pos, tt.mode, tt.dir, container)
			if ps.Left != tt.wantLeft || ps.Top != tt.wantTop {
				t.Errorf("got (%g,%g), want (%g,%g)", ps.Left, ps.Top, tt.wantLeft, tt.wantTop)
			}
			if ps.Width == nil || *ps.Width != tt.wantWide {
				t.Errorf("width = %v, want %g", ps.Width, tt.wantWide)
			}
			if ps.Height == nil || *ps.Height != tt.wantTall {
				t.Errorf("height = %v, want %g", ps.Height, tt.wantTall)
			}
		})
	}
}

func TestPhysicalPositionOffsets(t *testing.T) {
	pos := geometry.ChildPosition{
		Block:   100,
		Inline:  20,
		XOffset: geometry.Px(5),
		YOffset: geometry.Px(-3),
	}
	ps := physicalPosition(pos, geometry.HorizontalTB, geometry.LTR, geometry.Size{Width: 400, Height: 600})
	if ps.Left != 25 {
		t.Errorf("Left = %g, want 25", ps.Left)
	}
	if ps.Top != 97 {
		t.Errorf("Top = %g, want 97", ps.Top)
	}
}
