package host

import (
	"sync"

	"github.com/HamStudy/vscroll/internal/geometry"
)

// FakeElement is an in-memory Element for tests and headless use. It records
// applied positions and counts only the applications that actually changed
// observable state, so idempotence is checkable.
type FakeElement struct {
	mu sync.Mutex

	rect    geometry.Rect
	margins geometry.EdgeSizes
	style   Style
	parent  Element
	kids    []Element

	pos         PositionStyle
	hasPos      bool
	PosWrites   int // total ApplyPosition calls
	PosChanges  int // calls that changed observable state
	ScrollCalls []ScrollIntoViewOptions
}

// NewFakeElement creates a detached fake element with the given rect.
func NewFakeElement(rect geometry.Rect) *FakeElement {
	return &FakeElement{rect: rect, style: Style{
		OverflowX:   OverflowVisible,
		OverflowY:   OverflowVisible,
		WritingMode: geometry.HorizontalTB,
		Direction:   geometry.LTR,
	}}
}

// BoundingRect implements Element.
func (e *FakeElement) BoundingRect() geometry.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

// SetRect replaces the element's rect. Observers are not notified; use
// FakeHost.FireResize for that.
func (e *FakeElement) SetRect(r geometry.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rect = r
}

// Margins implements Element.
func (e *FakeElement) Margins() geometry.EdgeSizes {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.margins
}

// SetMargins sets the element's physical margins.
func (e *FakeElement) SetMargins(m geometry.EdgeSizes) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.margins = m
}

// Style implements Element.
func (e *FakeElement) Style() Style {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style
}

// SetStyle replaces the element's computed style subset.
func (e *FakeElement) SetStyle(s Style) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style = s
}

// Parent implements Element.
func (e *FakeElement) Parent() Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent
}

// Children implements Element.
func (e *FakeElement) Children() []Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Element, len(e.kids))
	copy(out, e.kids)
	return out
}

// SetChildren replaces the child list and reparents the children. Observers
// are not notified; use FakeHost.FireMutation for that.
func (e *FakeElement) SetChildren(kids []Element) {
	e.mu.Lock()
	e.kids = kids
	e.mu.Unlock()
	reparent(e, kids)
}

// reparent points each child at the outer parent value. A scroller's children
// must see the Scroller-implementing parent, not its embedded element.
func reparent(parent Element, kids []Element) {
	for _, k := range kids {
		switch el := k.(type) {
		case *FakeScroller:
			el.mu.Lock()
			el.parent = parent
			el.mu.Unlock()
		case *FakeElement:
			el.mu.Lock()
			el.parent = parent
			el.mu.Unlock()
		}
	}
}

// ApplyPosition implements Element.
func (e *FakeElement) ApplyPosition(p PositionStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.PosWrites++
	if !e.hasPos || !samePosition(e.pos, p) {
		e.PosChanges++
		e.pos = p
		e.hasPos = true
	}
}

// AppliedPosition returns the last applied position and whether one exists.
func (e *FakeElement) AppliedPosition() (PositionStyle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos, e.hasPos
}

// ScrollIntoView implements Element.
func (e *FakeElement) ScrollIntoView(opts ScrollIntoViewOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ScrollCalls = append(e.ScrollCalls, opts)
}

func samePosition(a, b PositionStyle) bool {
	return a.Left == b.Left && a.Top == b.Top &&
		samePtr(a.Width, b.Width) && samePtr(a.Height, b.Height)
}

func samePtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FakeScroller is a FakeElement that owns scrollable content.
type FakeScroller struct {
	FakeElement

	offset      geometry.Point
	scrollSize  geometry.Size
	contentSize geometry.VirtualizerSize
	hasContent  bool
	SizeWrites  int
	SizeChanges int
}

// NewFakeScroller creates a scroller with the given rect. Its overflow
// defaults to auto in both axes.
func NewFakeScroller(rect geometry.Rect) *FakeScroller {
	s := &FakeScroller{}
	s.rect = rect
	s.style = Style{
		OverflowX:   OverflowAuto,
		OverflowY:   OverflowAuto,
		WritingMode: geometry.HorizontalTB,
		Direction:   geometry.LTR,
	}
	return s
}

// SetChildren replaces the child list, reparenting the children to the
// scroller value itself so ancestor walks find the Scroller.
func (s *FakeScroller) SetChildren(kids []Element) {
	s.mu.Lock()
	s.kids = kids
	s.mu.Unlock()
	reparent(s, kids)
}

// ScrollOffset implements Scroller.
func (s *FakeScroller) ScrollOffset() geometry.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// ScrollTo implements Scroller. The offset clamps to the scrollable extent
// when one is known, and the children's rects shift in viewport coordinates
// the way a real layout would. Observers are not notified; use
// FakeHost.FireScroll for that.
func (s *FakeScroller) ScrollTo(p geometry.Point) {
	s.mu.Lock()
	extent := s.scrollSize
	if s.hasContent {
		extent = geometry.Size{
			Width:  s.contentSize.InlineSize.Resolve(),
			Height: s.contentSize.BlockSize.Resolve(),
		}
	}
	p.Left = clampOffset(p.Left, extent.Width, s.rect.Width)
	p.Top = clampOffset(p.Top, extent.Height, s.rect.Height)
	dx := p.Left - s.offset.Left
	dy := p.Top - s.offset.Top
	s.offset = p
	kids := append([]Element(nil), s.kids...)
	s.mu.Unlock()

	for _, k := range kids {
		switch el := k.(type) {
		case *FakeScroller:
			el.mu.Lock()
			el.rect = el.rect.Translate(-dx, -dy)
			el.mu.Unlock()
		case *FakeElement:
			el.mu.Lock()
			el.rect = el.rect.Translate(-dx, -dy)
			el.mu.Unlock()
		}
	}
}

func clampOffset(v, extent, viewport float64) float64 {
	if extent > 0 {
		if max := extent - viewport; v > max {
			v = max
		}
	}
	if v < 0 {
		v = 0
	}
	return v
}

// ScrollSize implements Scroller.
func (s *FakeScroller) ScrollSize() geometry.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasContent {
		return geometry.Size{
			Width:  s.contentSize.InlineSize.Resolve(),
			Height: s.contentSize.BlockSize.Resolve(),
		}
	}
	return s.scrollSize
}

// SetScrollSize sets the intrinsic scroll content size used before any
// virtualizer size has been applied.
func (s *FakeScroller) SetScrollSize(sz geometry.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollSize = sz
}

// ViewportSize implements Scroller.
func (s *FakeScroller) ViewportSize() geometry.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rect.Size()
}

// ApplyContentSize implements Scroller.
func (s *FakeScroller) ApplyContentSize(sz geometry.VirtualizerSize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SizeWrites++
	if !s.hasContent || !sameSize(s.contentSize, sz) {
		s.SizeChanges++
		s.contentSize = sz
		s.hasContent = true
	}
}

// AppliedContentSize returns the last applied virtualizer size.
func (s *FakeScroller) AppliedContentSize() (geometry.VirtualizerSize, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentSize, s.hasContent
}

func sameSize(a, b geometry.VirtualizerSize) bool {
	return sameDim(a.InlineSize, b.InlineSize) && sameDim(a.BlockSize, b.BlockSize)
}

func sameDim(a, b geometry.Dimension) bool {
	return a.Px == b.Px && samePtr(a.MinOf, b.MinOf)
}

// FakeWindow is a fixed-size window viewport.
type FakeWindow struct {
	mu   sync.Mutex
	rect geometry.Rect
}

// NewFakeWindow creates a window with the given rect.
func NewFakeWindow(rect geometry.Rect) *FakeWindow {
	return &FakeWindow{rect: rect}
}

// Rect implements Window.
func (w *FakeWindow) Rect() geometry.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rect
}

// SetRect resizes the window.
func (w *FakeWindow) SetRect(r geometry.Rect) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rect = r
}

// FakeHost is an in-memory Host. Tests mutate the element tree directly and
// call the Fire* methods to deliver observer events synchronously.
type FakeHost struct {
	mu sync.Mutex

	root   Element
	window *FakeWindow

	resize   map[Element][]*registration
	mutation map[Element][]*registration
	scroll   map[Element][]*registration
	load     map[Element][]*registration
}

type registration struct {
	fn      func()
	removed bool
}

// NewFakeHost creates a host around the given root element and window.
func NewFakeHost(root Element, window *FakeWindow) *FakeHost {
	return &FakeHost{
		root:     root,
		window:   window,
		resize:   make(map[Element][]*registration),
		mutation: make(map[Element][]*registration),
		scroll:   make(map[Element][]*registration),
		load:     make(map[Element][]*registration),
	}
}

// Element implements Host.
func (h *FakeHost) Element() Element { return h.root }

// Window implements Host.
func (h *FakeHost) Window() Window { return h.window }

// ObserveResize implements Host.
func (h *FakeHost) ObserveResize(el Element, fn func()) CancelFunc {
	return h.register(h.resize, el, fn)
}

// ObserveMutations implements Host.
func (h *FakeHost) ObserveMutations(el Element, fn func()) CancelFunc {
	return h.register(h.mutation, el, fn)
}

// ObserveScroll implements Host.
func (h *FakeHost) ObserveScroll(el Element, fn func()) CancelFunc {
	return h.register(h.scroll, el, fn)
}

// ObserveChildLoad implements Host.
func (h *FakeHost) ObserveChildLoad(el Element, fn func()) CancelFunc {
	return h.register(h.load, el, fn)
}

func (h *FakeHost) register(m map[Element][]*registration, el Element, fn func()) CancelFunc {
	h.mu.Lock()
	defer h.mu.Unlock()
	reg := &registration{fn: fn}
	m[el] = append(m[el], reg)
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		reg.removed = true
	}
}

func (h *FakeHost) fire(m map[Element][]*registration, el Element) {
	h.mu.Lock()
	regs := append([]*registration(nil), m[el]...)
	h.mu.Unlock()
	for _, reg := range regs {
		if !reg.removed {
			reg.fn()
		}
	}
}

// FireResize delivers a resize observation for el.
func (h *FakeHost) FireResize(el Element) { h.fire(h.resize, el) }

// FireMutation delivers a child-list mutation observation for el.
func (h *FakeHost) FireMutation(el Element) { h.fire(h.mutation, el) }

// FireScroll delivers a scroll event for el (nil for the window).
func (h *FakeHost) FireScroll(el Element) { h.fire(h.scroll, el) }

// FireChildLoad delivers a load event for el's subtree.
func (h *FakeHost) FireChildLoad(el Element) { h.fire(h.load, el) }

// ObserverCount returns how many live registrations exist across all maps.
// Used to verify disconnect tears everything down.
func (h *FakeHost) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range []map[Element][]*registration{h.resize, h.mutation, h.scroll, h.load} {
		for _, regs := range m {
			for _, reg := range regs {
				if !reg.removed {
					n++
				}
			}
		}
	}
	return n
}
