// Package geometry provides the pure geometric primitives used by the
// virtualizer: pixel rectangles, logical (block/inline) margins, writing
// modes, and the clipping math that derives the true visible rectangle of a
// host element.
package geometry

// Rect represents a rectangle in viewport coordinates. Width and Height are
// always non-negative for rectangles produced by this package.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Size represents a two-dimensional extent in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Point represents a scroll coordinate pair.
type Point struct {
	Left float64
	Top  float64
}

// Left returns the left edge of the rectangle.
func (r Rect) Left() float64 { return r.X }

// Top returns the top edge of the rectangle.
func (r Rect) Top() float64 { return r.Y }

// Right returns the right edge of the rectangle.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge of the rectangle.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size returns the extent of the rectangle.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the intersection of two rectangles. A disjoint pair
// yields a zero-area rectangle positioned at the nearer edge.
func (r Rect) Intersect(o Rect) Rect {
	left := max(r.Left(), o.Left())
	top := max(r.Top(), o.Top())
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())

	out := Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Translate returns the rectangle shifted by dx and dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// VisibleRect intersects the host rectangle with every clipping rectangle and
// the window rectangle, then clamps the result to a minimum of 1px in each
// axis so downstream layout queries never see a degenerate viewport.
func VisibleRect(host Rect, clips []Rect, window Rect) Rect {
	out := host.Intersect(window)
	for _, c := range clips {
		out = out.Intersect(c)
	}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}
