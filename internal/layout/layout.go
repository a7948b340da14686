// Package layout defines the boundary between the virtualizer engine and a
// pluggable layout strategy: the strategy decides which indices are in range
// and where they sit; the engine feeds it geometry and measurements and
// applies whatever it reports back.
package layout

import (
	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
)

// Range is the window of item indices a strategy has materialized.
// First..Last is the rendered window; FirstVisible..LastVisible is the
// subset actually intersecting the viewport. All four are -1 when empty.
type Range struct {
	First        int
	Last         int
	FirstVisible int
	LastVisible  int
}

// EmptyRange returns the canonical empty range.
func EmptyRange() Range {
	return Range{First: -1, Last: -1, FirstVisible: -1, LastVisible: -1}
}

// IsEmpty reports whether the range holds no indices.
func (r Range) IsEmpty() bool { return r.First < 0 }

// Contains reports whether index lies within the rendered window.
func (r Range) Contains(index int) bool {
	return !r.IsEmpty() && index >= r.First && index <= r.Last
}

// Valid reports whether the range satisfies
// first <= firstVisible <= lastVisible <= last, or is empty.
func (r Range) Valid() bool {
	if r.IsEmpty() {
		return r.First == -1 && r.Last == -1 && r.FirstVisible == -1 && r.LastVisible == -1
	}
	return r.First <= r.FirstVisible && r.FirstVisible <= r.LastVisible && r.LastVisible <= r.Last
}

// Viewport is the geometry snapshot the engine pushes into a strategy each
// update cycle.
type Viewport struct {
	// Size is the clipped visible rectangle's extent.
	Size geometry.Size
	// Scroll is the scroll offset within the nearest scrolling ancestor.
	Scroll geometry.Point
	// ScrollSize is the total extent of the scrollable content.
	ScrollSize geometry.Size
	// Offset is the host's position within the scroller's content.
	Offset geometry.Point
	// WritingMode and Direction describe the host element.
	WritingMode geometry.WritingMode
	Direction   geometry.Direction
}

// BlockExtent returns the viewport extent along the block axis.
func (v Viewport) BlockExtent() float64 {
	if v.WritingMode.IsHorizontal() {
		return v.Size.Height
	}
	return v.Size.Width
}

// InlineExtent returns the viewport extent along the inline axis.
func (v Viewport) InlineExtent() float64 {
	if v.WritingMode.IsHorizontal() {
		return v.Size.Width
	}
	return v.Size.Height
}

// BlockScroll returns the scroll position along the block axis, relative to
// the host's origin within the scroller.
func (v Viewport) BlockScroll() float64 {
	if v.WritingMode.IsHorizontal() {
		return v.Scroll.Top - v.Offset.Top
	}
	return v.Scroll.Left - v.Offset.Left
}

// Pin requests that a strategy place the given index at the viewport edge on
// its next reflow, producing an instant non-animated jump.
type Pin struct {
	Index  int
	Block  string // "start", "center", "end"; empty means start
	Inline string
}

// MeasureFunc produces a custom measurement for one rendered child. The
// item is the collection value at the child's index.
type MeasureFunc func(el host.Element, item any) geometry.ItemBox

// Capabilities declares what a strategy needs from the engine, replacing ad
// hoc property probing with an explicit descriptor.
type Capabilities struct {
	// MeasureChildren asks the engine to measure rendered children and
	// feed the results back through UpdateItemSizes.
	MeasureChildren bool
	// MeasureChild, when non-nil, replaces the engine's default box
	// measurement entirely.
	MeasureChild MeasureFunc
	// NeedsLoadEvents asks the engine to wire a load-event listener and
	// treat loads as remeasure triggers.
	NeedsLoadEvents bool
}

// Config carries strategy-specific options. Type identifies the strategy;
// reconfiguring an engine with a config of a different type is rejected.
type Config interface {
	Type() string
}

// Message is the tagged union a strategy emits toward the engine. A newer
// StateChanged entirely supersedes an older one; messages never merge.
type Message interface {
	layoutMessage()
}

// StateChanged carries a complete layout state: range, child positions,
// total size, and an optional scroll-error correction.
type StateChanged struct {
	Range       Range
	Positions   map[int]geometry.ChildPosition
	Size        geometry.VirtualizerSize
	ScrollError *geometry.ScrollError
}

// VisibilityChanged reports a change in the visible index window only.
type VisibilityChanged struct {
	First int
	Last  int
}

// Unpinned reports that the strategy released its pinned target, e.g.
// because a user scroll took over.
type Unpinned struct{}

func (StateChanged) layoutMessage()      {}
func (VisibilityChanged) layoutMessage() {}
func (Unpinned) layoutMessage()          {}

// Layouter is the strategy interface the engine consumes.
type Layouter interface {
	// Type identifies the strategy for config compatibility checks.
	Type() string

	// ApplyConfig applies options from a config of this strategy's type.
	ApplyConfig(Config)

	// SetItems replaces the item collection.
	SetItems(items []any)

	// SetViewport pushes a fresh geometry snapshot.
	SetViewport(vp Viewport)

	// ReflowIfNeeded recomputes layout state if any input changed since
	// the last reflow, emitting messages through the sink. Idempotent;
	// the engine invokes it once per update cycle.
	ReflowIfNeeded()

	// SetPin requests an instant jump placing the index at the viewport
	// edge on the next reflow.
	SetPin(p Pin)

	// Unpin releases any pinned target, typically on user scroll.
	Unpin()

	// ScrollIntoViewCoordinates returns the scroll position that brings
	// index into view with the requested alignment.
	ScrollIntoViewCoordinates(index int, opts host.ScrollIntoViewOptions) geometry.Point

	// UpdateItemSizes feeds child measurements back into the strategy.
	UpdateItemSizes(sizes map[int]geometry.ItemBox)

	// Capabilities returns the strategy's capability descriptor.
	Capabilities() Capabilities

	// SetSink registers the message channel toward the engine. The
	// strategy may emit synchronously during ReflowIfNeeded or defer.
	SetSink(fn func(Message))
}
