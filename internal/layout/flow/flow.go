// Package flow implements a single-axis flow layout strategy: items stack
// along the block axis, each with an estimated extent that measurement
// refines over time.
package flow

import (
	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/layout"
)

// DefaultEstimate is the block extent assumed for an unmeasured item.
const DefaultEstimate = 100.0

// Config configures a flow layout.
type Config struct {
	// Estimate overrides the initial per-item block extent estimate.
	Estimate float64
	// Overhang is the render-ahead distance in pixels on each side of the
	// viewport. Zero means one viewport's worth.
	Overhang float64
}

// Type implements layout.Config.
func (Config) Type() string { return "flow" }

// Layout is a flow layout strategy. Not safe for concurrent use; the engine
// drives it from a single loop.
type Layout struct {
	cfg  Config
	vp   layout.Viewport
	sink func(layout.Message)

	itemCount int
	measured  map[int]float64 // block extent including block margins
	sumExtent float64
	estimate  float64

	pin    *layout.Pin
	errSum float64 // pending block-axis scroll error, current-minus-desired

	dirty     bool
	lastRange layout.Range
}

// New creates a flow layout with the given config.
func New(cfg Config) *Layout {
	est := cfg.Estimate
	if est <= 0 {
		est = DefaultEstimate
	}
	return &Layout{
		cfg:       cfg,
		measured:  make(map[int]float64),
		estimate:  est,
		lastRange: layout.EmptyRange(),
	}
}

// Type implements layout.Layouter.
func (l *Layout) Type() string { return "flow" }

// ApplyConfig implements layout.Layouter.
func (l *Layout) ApplyConfig(cfg layout.Config) {
	fc, ok := cfg.(Config)
	if !ok {
		return
	}
	l.cfg = fc
	if fc.Estimate > 0 && len(l.measured) == 0 {
		l.estimate = fc.Estimate
	}
	l.dirty = true
}

// SetItems implements layout.Layouter. Only the count matters to a flow
// layout; item content is opaque.
func (l *Layout) SetItems(items []any) {
	if len(items) != l.itemCount {
		l.itemCount = len(items)
		l.pruneMeasurements()
	}
	l.dirty = true
}

// SetViewport implements layout.Layouter.
func (l *Layout) SetViewport(vp layout.Viewport) {
	if vp != l.vp {
		l.vp = vp
		l.dirty = true
	}
}

// SetPin implements layout.Layouter.
func (l *Layout) SetPin(p layout.Pin) {
	if p.Index < 0 {
		p.Index = 0
	}
	if p.Index >= l.itemCount && l.itemCount > 0 {
		p.Index = l.itemCount - 1
	}
	l.pin = &p
	l.dirty = true
}

// Unpin implements layout.Layouter.
func (l *Layout) Unpin() {
	if l.pin == nil {
		return
	}
	l.pin = nil
	l.dirty = true
	l.emit(layout.Unpinned{})
}

// Capabilities implements layout.Layouter.
func (l *Layout) Capabilities() layout.Capabilities {
	return layout.Capabilities{MeasureChildren: true}
}

// SetSink implements layout.Layouter.
func (l *Layout) SetSink(fn func(layout.Message)) {
	l.sink = fn
}

// UpdateItemSizes implements layout.Layouter. Revisions to items above the
// first rendered index accumulate a scroll error so the content under the
// viewport does not appear to jump.
func (l *Layout) UpdateItemSizes(sizes map[int]geometry.ItemBox) {
	anchor := l.lastRange.First
	changed := false
	for idx, box := range sizes {
		if idx < 0 || idx >= l.itemCount {
			continue
		}
		extent := l.blockExtent(box)
		old, had := l.measured[idx]
		if had && old == extent {
			continue
		}
		if had {
			l.sumExtent += extent - old
		} else {
			l.sumExtent += extent
		}
		l.measured[idx] = extent
		if anchor >= 0 && idx < anchor {
			prev := old
			if !had {
				prev = l.estimate
			}
			l.errSum += prev - extent
		}
		changed = true
	}
	if changed {
		if len(l.measured) > 0 {
			l.estimate = l.sumExtent / float64(len(l.measured))
		}
		l.dirty = true
	}
}

// ReflowIfNeeded implements layout.Layouter.
func (l *Layout) ReflowIfNeeded() {
	if !l.dirty {
		return
	}
	l.dirty = false
	l.reflow()
}

// ScrollIntoViewCoordinates implements layout.Layouter.
func (l *Layout) ScrollIntoViewCoordinates(index int, opts host.ScrollIntoViewOptions) geometry.Point {
	if l.itemCount == 0 {
		return l.vp.Scroll
	}
	index = clampIndex(index, l.itemCount)
	desired := l.alignedScroll(index, opts.Block)
	return l.toScrollPoint(desired)
}

func (l *Layout) reflow() {
	if l.itemCount == 0 {
		l.publish(layout.EmptyRange(), nil, 0)
		return
	}

	viewBlock := l.vp.BlockExtent()
	total := l.total()

	blockScroll := l.vp.BlockScroll()
	if l.pin != nil {
		blockScroll = l.alignedScroll(l.pin.Index, l.pin.Block)
		cur := l.vp.BlockScroll()
		if cur != blockScroll {
			l.errSum += cur - blockScroll
		}
	}
	blockScroll = clampScroll(blockScroll, total, viewBlock)

	overhang := l.cfg.Overhang
	if overhang <= 0 {
		overhang = viewBlock
	}

	r := layout.Range{First: -1, Last: -1, FirstVisible: -1, LastVisible: -1}
	positions := make(map[int]geometry.ChildPosition)

	pos := 0.0
	renderLo := blockScroll - overhang
	renderHi := blockScroll + viewBlock + overhang
	for i := 0; i < l.itemCount; i++ {
		ext := l.extent(i)
		top, bottom := pos, pos+ext
		if bottom > renderLo && top < renderHi {
			if r.First < 0 {
				r.First = i
			}
			r.Last = i
			positions[i] = geometry.ChildPosition{
				Block:      top,
				Inline:     0,
				InlineSize: geometry.Px(l.vp.InlineExtent()),
			}
		}
		if bottom > blockScroll && top < blockScroll+viewBlock {
			if r.FirstVisible < 0 {
				r.FirstVisible = i
			}
			r.LastVisible = i
		}
		pos = bottom
		if top >= renderHi {
			break
		}
	}
	if r.First >= 0 && r.FirstVisible < 0 {
		// Rendered overhang exists but nothing intersects the viewport;
		// pin visibility to the nearest rendered edge.
		r.FirstVisible = r.First
		r.LastVisible = r.First
	}

	l.publish(r, positions, total)
}

func (l *Layout) publish(r layout.Range, positions map[int]geometry.ChildPosition, total float64) {
	var errOut *geometry.ScrollError
	if l.errSum != 0 {
		e := geometry.ScrollError{}
		if l.vp.WritingMode.IsHorizontal() {
			e.Top = l.errSum
		} else {
			e.Left = l.errSum
		}
		l.errSum = 0
		errOut = &e
	}

	size := geometry.VirtualizerSize{
		BlockSize:  geometry.Dimension{Px: total},
		InlineSize: geometry.Dimension{Px: l.vp.InlineExtent()},
	}

	visibleChanged := r.FirstVisible != l.lastRange.FirstVisible || r.LastVisible != l.lastRange.LastVisible
	l.lastRange = r

	l.emit(layout.StateChanged{
		Range:       r,
		Positions:   positions,
		Size:        size,
		ScrollError: errOut,
	})
	if visibleChanged {
		l.emit(layout.VisibilityChanged{First: r.FirstVisible, Last: r.LastVisible})
	}
}

func (l *Layout) emit(m layout.Message) {
	if l.sink != nil {
		l.sink(m)
	}
}

func (l *Layout) extent(i int) float64 {
	if e, ok := l.measured[i]; ok {
		return e
	}
	return l.estimate
}

func (l *Layout) position(index int) float64 {
	pos := 0.0
	for i := 0; i < index && i < l.itemCount; i++ {
		pos += l.extent(i)
	}
	return pos
}

func (l *Layout) total() float64 {
	measuredCount := 0
	sum := 0.0
	for i, e := range l.measured {
		if i < l.itemCount {
			sum += e
			measuredCount++
		}
	}
	return sum + float64(l.itemCount-measuredCount)*l.estimate
}

func (l *Layout) blockExtent(box geometry.ItemBox) float64 {
	if l.vp.WritingMode.IsHorizontal() {
		return box.Height + box.BlockStart + box.BlockEnd
	}
	return box.Width + box.BlockStart + box.BlockEnd
}

// alignedScroll returns the block scroll position that places index at the
// requested viewport alignment.
func (l *Layout) alignedScroll(index int, align string) float64 {
	viewBlock := l.vp.BlockExtent()
	pos := l.position(index)
	ext := l.extent(index)

	var desired float64
	switch align {
	case "center":
		desired = pos - (viewBlock-ext)/2
	case "end":
		desired = pos - viewBlock + ext
	case "nearest":
		cur := l.vp.BlockScroll()
		switch {
		case pos >= cur && pos+ext <= cur+viewBlock:
			desired = cur
		case pos < cur:
			desired = pos
		default:
			desired = pos - viewBlock + ext
		}
	default: // "start"
		desired = pos
	}
	return clampScroll(desired, l.total(), viewBlock)
}

// toScrollPoint converts a block-axis scroll position into scroller
// coordinates, preserving the cross-axis position.
func (l *Layout) toScrollPoint(blockScroll float64) geometry.Point {
	if l.vp.WritingMode.IsHorizontal() {
		return geometry.Point{Left: l.vp.Scroll.Left, Top: blockScroll + l.vp.Offset.Top}
	}
	return geometry.Point{Left: blockScroll + l.vp.Offset.Left, Top: l.vp.Scroll.Top}
}

func (l *Layout) pruneMeasurements() {
	for i, e := range l.measured {
		if i >= l.itemCount {
			l.sumExtent -= e
			delete(l.measured, i)
		}
	}
	if len(l.measured) == 0 {
		l.sumExtent = 0
		if l.cfg.Estimate > 0 {
			l.estimate = l.cfg.Estimate
		} else {
			l.estimate = DefaultEstimate
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clampScroll(v, total, view float64) float64 {
	maxScroll := total - view
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v > maxScroll {
		v = maxScroll
	}
	if v < 0 {
		v = 0
	}
	return v
}
