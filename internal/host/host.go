// Package host defines the boundary between the virtualizer engine and
// whatever actually renders elements: a browser-like DOM, a terminal cell
// grid, or the in-memory fake used by tests. The engine never reaches past
// these interfaces.
package host

import "github.com/HamStudy/vscroll/internal/geometry"

// Overflow mirrors the CSS overflow values the engine distinguishes.
type Overflow string

const (
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
	OverflowScroll  Overflow = "scroll"
	OverflowAuto    Overflow = "auto"
	OverflowClip    Overflow = "clip"
)

// Clips reports whether content overflowing an element with this setting is
// hidden, making the element a clipping ancestor.
func (o Overflow) Clips() bool {
	return o != "" && o != OverflowVisible
}

// Scrollable reports whether the element can scroll its own content.
func (o Overflow) Scrollable() bool {
	return o == OverflowScroll || o == OverflowAuto
}

// Style is the subset of computed style the engine reads off an element.
type Style struct {
	OverflowX   Overflow
	OverflowY   Overflow
	WritingMode geometry.WritingMode
	Direction   geometry.Direction
}

// PositionStyle is the physical placement the engine writes back to a child
// after resolving the layout's logical coordinates. Nil size fields leave the
// child's intrinsic size untouched.
type PositionStyle struct {
	Left   float64
	Top    float64
	Width  *float64
	Height *float64
}

// ScrollIntoViewOptions mirrors the DOM scrollIntoView option bag.
type ScrollIntoViewOptions struct {
	Behavior string // "smooth" or "auto"/"instant"
	Block    string // "start", "center", "end", "nearest"
	Inline   string
}

// Element is one rendered node the engine can measure and position.
type Element interface {
	// BoundingRect returns the border box in viewport coordinates,
	// accounting for visual transforms.
	BoundingRect() geometry.Rect

	// Margins returns the computed physical margins.
	Margins() geometry.EdgeSizes

	// Style returns the subset of computed style the engine reads.
	Style() Style

	// Parent returns the parent element, or nil at the top of the tree.
	Parent() Element

	// Children returns the element's current direct children in order.
	Children() []Element

	// ApplyPosition writes the computed placement to the element.
	ApplyPosition(PositionStyle)

	// ScrollIntoView delegates to the element's own native behavior.
	ScrollIntoView(ScrollIntoViewOptions)
}

// Scroller is an element that owns scrollable content.
type Scroller interface {
	Element

	// ScrollOffset returns the current scroll position.
	ScrollOffset() geometry.Point

	// ScrollTo jumps to the given scroll position immediately.
	ScrollTo(geometry.Point)

	// ScrollSize returns the total extent of the scrollable content.
	ScrollSize() geometry.Size

	// ViewportSize returns the visible client extent.
	ViewportSize() geometry.Size

	// ApplyContentSize writes the virtualizer's total content extent,
	// so the scrollbar reflects the full logical collection.
	ApplyContentSize(geometry.VirtualizerSize)
}

// Window is the outermost viewport bounding all visibility computations.
type Window interface {
	Rect() geometry.Rect
}

// CancelFunc tears down an observer registration. Safe to call twice.
type CancelFunc func()

// Host wires observer-driven event sources to the engine. Callbacks fire on
// the host's event thread; the engine re-posts them onto its own loop.
type Host interface {
	// Element returns the host element the virtualizer is attached to.
	Element() Element

	// Window returns the outermost viewport.
	Window() Window

	// ObserveResize fires when the element's box changes size.
	ObserveResize(el Element, fn func()) CancelFunc

	// ObserveMutations fires when the element's child list changes.
	ObserveMutations(el Element, fn func()) CancelFunc

	// ObserveScroll fires on scroll of el, or of the window when el is nil.
	ObserveScroll(el Element, fn func()) CancelFunc

	// ObserveChildLoad fires when content loads inside el's subtree.
	// Only wired when the layout strategy asks for load signals.
	ObserveChildLoad(el Element, fn func()) CancelFunc
}
