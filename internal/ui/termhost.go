package ui

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
)

// TermHost projects the engine's host boundary onto a terminal cell grid:
// one cell is one pixel, one text row is one unit of block extent. The tree
// is fixed at scroller -> content -> row elements; the app replaces the row
// children as the rendered range moves.
type TermHost struct {
	mu sync.Mutex

	win     *termWindow
	scroll  *termScroller
	content *termElement

	regs struct {
		resize   map[host.Element][]*observerReg
		mutation map[host.Element][]*observerReg
		scroll   map[host.Element][]*observerReg
		load     map[host.Element][]*observerReg
	}
}

type observerReg struct {
	fn      func()
	removed bool
}

// Row is one rendered row as the app renders it: its item index, its text
// lines, and its engine-applied top in content coordinates.
type Row struct {
	Index int
	Lines []string
	Top   float64
}

// NewTermHost creates a host for a zero-sized grid; SetSize grows it once
// the terminal dimensions are known.
func NewTermHost() *TermHost {
	th := &TermHost{}
	th.regs.resize = make(map[host.Element][]*observerReg)
	th.regs.mutation = make(map[host.Element][]*observerReg)
	th.regs.scroll = make(map[host.Element][]*observerReg)
	th.regs.load = make(map[host.Element][]*observerReg)

	th.win = &termWindow{}
	th.scroll = &termScroller{th: th}
	th.scroll.style = host.Style{OverflowX: host.OverflowHidden, OverflowY: host.OverflowAuto}
	th.content = &termElement{th: th, parent: th.scroll}
	th.content.style = host.Style{OverflowX: host.OverflowVisible, OverflowY: host.OverflowVisible}
	return th
}

// Element implements host.Host.
func (t *TermHost) Element() host.Element { return t.content }

// Window implements host.Host.
func (t *TermHost) Window() host.Window { return t.win }

// ObserveResize implements host.Host.
func (t *TermHost) ObserveResize(el host.Element, fn func()) host.CancelFunc {
	return t.register(t.regs.resize, el, fn)
}

// ObserveMutations implements host.Host.
func (t *TermHost) ObserveMutations(el host.Element, fn func()) host.CancelFunc {
	return t.register(t.regs.mutation, el, fn)
}

// ObserveScroll implements host.Host.
func (t *TermHost) ObserveScroll(el host.Element, fn func()) host.CancelFunc {
	return t.register(t.regs.scroll, el, fn)
}

// ObserveChildLoad implements host.Host. Terminal rows have no async
// content, so these observers never fire.
func (t *TermHost) ObserveChildLoad(el host.Element, fn func()) host.CancelFunc {
	return t.register(t.regs.load, el, fn)
}

// SetSize resizes the grid to width columns by height rows and notifies
// resize observers.
func (t *TermHost) SetSize(width, height int) {
	t.mu.Lock()
	r := geometry.Rect{Width: float64(width), Height: float64(height)}
	t.win.rect = r
	t.scroll.rect = r
	t.content.rect.Width = r.Width
	t.mu.Unlock()

	t.fire(t.regs.resize, t.scroll)
	t.fire(t.regs.resize, t.content)
}

// SetRows replaces the rendered row children. Each row's intrinsic extent is
// its line count tall and its widest line wide.
func (t *TermHost) SetRows(rows []Row) {
	t.mu.Lock()
	kids := make([]host.Element, len(rows))
	for i, row := range rows {
		w := 0.0
		for _, line := range row.Lines {
			if lw := float64(runewidth.StringWidth(line)); lw > w {
				w = lw
			}
		}
		kids[i] = &termElement{
			th:     t,
			parent: t.content,
			index:  row.Index,
			lines:  row.Lines,
			rect:   geometry.Rect{Width: w, Height: float64(len(row.Lines))},
		}
	}
	t.content.kids = kids
	t.mu.Unlock()

	t.fire(t.regs.mutation, t.content)
}

// RenderedRows returns the current rows with their applied positions.
func (t *TermHost) RenderedRows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, 0, len(t.content.kids))
	for _, k := range t.content.kids {
		el := k.(*termElement)
		if !el.hasPos {
			continue
		}
		out = append(out, Row{Index: el.index, Lines: el.lines, Top: el.top})
	}
	return out
}

// ScrollBy scrolls the viewport by dy rows, as a user would.
func (t *TermHost) ScrollBy(dy float64) {
	t.scroll.ScrollTo(geometry.Point{Top: t.scroll.ScrollOffset().Top + dy})
}

// ScrollTop returns the current scroll offset in rows.
func (t *TermHost) ScrollTop() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scroll.offset.Top
}

// ContentHeight returns the engine-applied total content extent.
func (t *TermHost) ContentHeight() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scroll.contentSize.BlockSize.Resolve()
}

func (t *TermHost) register(m map[host.Element][]*observerReg, el host.Element, fn func()) host.CancelFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	reg := &observerReg{fn: fn}
	m[el] = append(m[el], reg)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		reg.removed = true
	}
}

func (t *TermHost) fire(m map[host.Element][]*observerReg, el host.Element) {
	t.mu.Lock()
	live := m[el][:0]
	for _, reg := range m[el] {
		if !reg.removed {
			live = append(live, reg)
		}
	}
	m[el] = live
	regs := append([]*observerReg(nil), live...)
	t.mu.Unlock()
	for _, reg := range regs {
		if !reg.removed {
			reg.fn()
		}
	}
}

// reveal scrolls so that the rect [top, top+height) in content coordinates
// honors the requested block alignment.
func (t *TermHost) reveal(top, height float64, opts host.ScrollIntoViewOptions) {
	t.mu.Lock()
	view := t.scroll.rect.Height
	cur := t.scroll.offset.Top
	t.mu.Unlock()

	var target float64
	switch opts.Block {
	case "center":
		target = top - (view-height)/2
	case "end":
		target = top - view + height
	case "nearest":
		switch {
		case top >= cur && top+height <= cur+view:
			target = cur
		case top < cur:
			target = top
		default:
			target = top - view + height
		}
	default:
		target = top
	}
	t.scroll.ScrollTo(geometry.Point{Top: target})
}

// termWindow is the whole terminal.
type termWindow struct {
	rect geometry.Rect
}

func (w *termWindow) Rect() geometry.Rect { return w.rect }

// termElement is a cell-grid element: the content element or one row.
type termElement struct {
	th     *TermHost
	parent host.Element
	style  host.Style
	rect   geometry.Rect
	kids   []host.Element

	index  int
	lines  []string
	top    float64
	hasPos bool
}

func (e *termElement) BoundingRect() geometry.Rect {
	e.th.mu.Lock()
	defer e.th.mu.Unlock()
	r := e.rect
	if e.parent == e.th.scroll {
		// The content element rides the scroll: its viewport-space top is
		// the negated scroll offset, its extent the applied content size.
		r.Y = -e.th.scroll.offset.Top
		r.Height = e.th.scroll.contentSize.BlockSize.Resolve()
	}
	return r
}

func (e *termElement) Margins() geometry.EdgeSizes { return geometry.EdgeSizes{} }

func (e *termElement) Style() host.Style { return e.style }

func (e *termElement) Parent() host.Element { return e.parent }

func (e *termElement) Children() []host.Element {
	e.th.mu.Lock()
	defer e.th.mu.Unlock()
	return append([]host.Element(nil), e.kids...)
}

func (e *termElement) ApplyPosition(p host.PositionStyle) {
	e.th.mu.Lock()
	e.top = p.Top
	e.hasPos = true
	if p.Width != nil {
		e.rect.Width = *p.Width
	}
	e.th.mu.Unlock()
}

func (e *termElement) ScrollIntoView(opts host.ScrollIntoViewOptions) {
	e.th.mu.Lock()
	top, h := e.top, e.rect.Height
	e.th.mu.Unlock()
	e.th.reveal(top, h, opts)
}

// termScroller is the widget viewport owning the scroll offset.
type termScroller struct {
	th          *TermHost
	style       host.Style
	rect        geometry.Rect
	offset      geometry.Point
	contentSize geometry.VirtualizerSize
	hasContent  bool
}

func (s *termScroller) BoundingRect() geometry.Rect {
	s.th.mu.Lock()
	defer s.th.mu.Unlock()
	return s.rect
}

func (s *termScroller) Margins() geometry.EdgeSizes { return geometry.EdgeSizes{} }

func (s *termScroller) Style() host.Style { return s.style }

func (s *termScroller) Parent() host.Element { return nil }

func (s *termScroller) Children() []host.Element { return []host.Element{s.th.content} }

func (s *termScroller) ApplyPosition(host.PositionStyle) {}

func (s *termScroller) ScrollIntoView(host.ScrollIntoViewOptions) {}

func (s *termScroller) ScrollOffset() geometry.Point {
	s.th.mu.Lock()
	defer s.th.mu.Unlock()
	return s.offset
}

// ScrollTo clamps the offset to the scrollable extent and delivers the
// scroll event synchronously, programmatic and user scrolls alike.
func (s *termScroller) ScrollTo(p geometry.Point) {
	s.th.mu.Lock()
	max := s.contentSize.BlockSize.Resolve() - s.rect.Height
	if max < 0 {
		max = 0
	}
	if p.Top > max {
		p.Top = max
	}
	if p.Top < 0 {
		p.Top = 0
	}
	p.Left = 0
	moved := p != s.offset
	s.offset = p
	s.th.mu.Unlock()

	if moved {
		s.th.fire(s.th.regs.scroll, s)
	}
}

func (s *termScroller) ScrollSize() geometry.Size {
	s.th.mu.Lock()
	defer s.th.mu.Unlock()
	if s.hasContent {
		return geometry.Size{
			Width:  s.contentSize.InlineSize.Resolve(),
			Height: s.contentSize.BlockSize.Resolve(),
		}
	}
	return s.rect.Size()
}

func (s *termScroller) ViewportSize() geometry.Size {
	s.th.mu.Lock()
	defer s.th.mu.Unlock()
	return s.rect.Size()
}

func (s *termScroller) ApplyContentSize(sz geometry.VirtualizerSize) {
	s.th.mu.Lock()
	s.contentSize = sz
	s.hasContent = true
	// Shrinking content can strand the offset past the end.
	max := sz.BlockSize.Resolve() - s.rect.Height
	if max < 0 {
		max = 0
	}
	clamped := s.offset.Top > max
	if clamped {
		s.offset.Top = max
	}
	s.th.mu.Unlock()

	if clamped {
		s.th.fire(s.th.regs.scroll, s)
	}
}

// SplitLines breaks item text into rows the way SetRows expects.
func SplitLines(s string) []string {
	return strings.Split(s, "\n")
}
