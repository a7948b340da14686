package host

import "github.com/HamStudy/vscroll/internal/geometry"

// ClippingAncestors walks from el's parent to the top of the tree and
// collects every ancestor whose computed overflow is not visible. The host
// element itself is never its own clipping ancestor.
func ClippingAncestors(el Element) []Element {
	var out []Element
	for p := el.Parent(); p != nil; p = p.Parent() {
		s := p.Style()
		if s.OverflowX.Clips() || s.OverflowY.Clips() {
			out = append(out, p)
		}
	}
	return out
}

// ClipRects returns the bounding rectangles of the given elements.
func ClipRects(els []Element) []geometry.Rect {
	if len(els) == 0 {
		return nil
	}
	out := make([]geometry.Rect, len(els))
	for i, el := range els {
		out[i] = el.BoundingRect()
	}
	return out
}

// NearestScroller returns the closest ancestor of el (including el itself)
// that scrolls its own content, or nil when scrolling is owned by the window.
func NearestScroller(el Element) Scroller {
	for e := el; e != nil; e = e.Parent() {
		s := e.Style()
		if !s.OverflowX.Scrollable() && !s.OverflowY.Scrollable() {
			continue
		}
		if sc, ok := e.(Scroller); ok {
			return sc
		}
	}
	return nil
}

// OffsetWithinScroller returns el's position relative to the scroll origin
// of the given scroller: the element's viewport position minus the
// scroller's, plus the scroller's current scroll offset.
func OffsetWithinScroller(el Element, sc Scroller) geometry.Point {
	r := el.BoundingRect()
	sr := sc.BoundingRect()
	off := sc.ScrollOffset()
	return geometry.Point{
		Left: r.X - sr.X + off.Left,
		Top:  r.Y - sr.Y + off.Top,
	}
}
