package engine

import (
	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/layout"
)

// update runs one GeometryComputed -> LayoutQueried transition: it derives
// viewport geometry and pushes items, pending measurements, and geometry
// into the layout strategy. The strategy answers through the message sink,
// possibly synchronously.
func (v *Virtualizer) update() {
	c := v.conn
	if c == nil {
		return
	}
	stop := v.benchTimer("update")
	defer stop()

	vp := v.viewportGeometry(c)

	v.layouter.SetItems(v.items)
	v.layouter.SetViewport(vp)
	v.layouter.ReflowIfNeeded()
}

// viewportGeometry derives the per-cycle geometry snapshot: the host rect
// clipped by every clipping ancestor and the window, the scroll offset
// within the nearest scrolling ancestor, and the host's writing mode and
// derived direction.
func (v *Virtualizer) viewportGeometry(c *connected) layout.Viewport {
	hostRect := c.el.BoundingRect()
	clips := host.ClipRects(host.ClippingAncestors(c.el))
	window := c.host.Window().Rect()
	visible := geometry.VisibleRect(hostRect, clips, window)

	style := c.el.Style()
	scEl := c.sc.Element()

	vp := layout.Viewport{
		Size:        visible.Size(),
		Scroll:      scEl.ScrollOffset(),
		ScrollSize:  scEl.ScrollSize(),
		Offset:      host.OffsetWithinScroller(c.el, scEl),
		WritingMode: style.WritingMode,
		Direction:   geometry.DerivedDirection(style.WritingMode, style.Direction),
	}
	if v.verbose {
		v.logger.Printf("engine: viewport size=%gx%g scroll=%+v writing-mode=%s direction=%s",
			vp.Size.Width, vp.Size.Height, vp.Scroll, vp.WritingMode, vp.Direction)
	}
	return vp
}

// onLayoutMessage is the sink registered with the layout strategy. Each
// message kind schedules its own idempotent unit; a newer state message
// entirely supersedes an older, unprocessed one.
func (v *Virtualizer) onLayoutMessage(m layout.Message) {
	switch m := m.(type) {
	case layout.StateChanged:
		st := m
		v.current = &st
		v.schedule.Schedule(unitApply, v.apply)
	case layout.VisibilityChanged:
		v.visFirst, v.visLast = m.First, m.Last
		v.schedule.Schedule(unitVisibility, v.emitVisibility)
	case layout.Unpinned:
		v.schedule.Schedule(unitUnpinned, v.emitUnpinned)
	default:
		v.logger.Printf("engine: unrecognized layout message %T", m)
	}
}

// apply runs the Measuring and Applying states for the latest layout state:
// measure children that need it, write positions and total size to the
// host, reconcile any scroll error, emit change events, and arm the
// completion settler.
func (v *Virtualizer) apply() {
	c := v.conn
	if c == nil || v.current == nil {
		return
	}
	stop := v.benchTimer("apply")
	defer stop()

	st := *v.current
	children := c.el.Children()

	if v.measureChildren(c, children) {
		// Measurements changed the layout inputs; run another cycle
		// once the strategy has absorbed them.
		v.scheduleUpdate()
	}

	v.applyPositions(c, st, children)
	c.sc.Element().ApplyContentSize(st.Size)

	if st.ScrollError != nil {
		errVal := *st.ScrollError
		v.current.ScrollError = nil
		c.sc.CorrectScrollError(errVal)
	}

	rangeChanged := st.Range != v.emittedRange || (v.itemsChanged && !st.Range.IsEmpty())
	v.appliedRange = st.Range
	v.itemsChanged = false
	v.syncChildObservers(c, v.renderedRange, children)

	if rangeChanged {
		v.emittedRange = st.Range
		if v.onRangeChanged != nil {
			v.onRangeChanged(RangeChangedEvent{First: st.Range.First, Last: st.Range.Last})
		}
	}

	v.settler.Arm(v.settle)
}

func (v *Virtualizer) settle() {
	if v.signal != nil {
		v.signal.Resolve()
	}
}

func (v *Virtualizer) emitVisibility() {
	if v.conn == nil {
		return
	}
	if v.onVisibilityChanged != nil {
		v.onVisibilityChanged(VisibilityChangedEvent{First: v.visFirst, Last: v.visLast})
	}
}

func (v *Virtualizer) emitUnpinned() {
	if v.conn == nil {
		return
	}
	if v.onUnpinned != nil {
		v.onUnpinned()
	}
}

// measureChildren measures children that are new to the range or flagged by
// a resize observation. Children are attributed to indices through
// renderedRange, not the latest computed range: until the consumer
// re-renders, the children on the host still belong to the previously
// emitted window. Results feed back into the layout strategy. Returns
// whether any measurement changed.
func (v *Virtualizer) measureChildren(c *connected, children []host.Element) bool {
	caps := v.layouter.Capabilities()
	rr := v.renderedRange
	if !caps.MeasureChildren || rr.IsEmpty() {
		return false
	}

	hostStyle := c.el.Style()
	changed := make(map[int]geometry.ItemBox)
	for i, child := range children {
		idx := rr.First + i
		if idx > rr.Last {
			break
		}
		_, have := v.measured[idx]
		if have && !v.pendingMeasure[idx] {
			continue
		}
		box := v.measureChild(caps, child, hostStyle, idx)
		delete(v.pendingMeasure, idx)
		if prev, ok := v.measured[idx]; ok && prev == box {
			continue
		}
		v.measured[idx] = box
		changed[idx] = box
	}

	if len(changed) == 0 {
		return false
	}
	v.layouter.UpdateItemSizes(changed)
	return true
}

// measureChild produces one child's ItemBox, through the strategy's custom
// measure function when it has one, or the default box measurement. A
// panicking custom measurer is contained and logged; the child keeps its
// previous measurement.
func (v *Virtualizer) measureChild(caps layout.Capabilities, child host.Element, hostStyle host.Style, idx int) (box geometry.ItemBox) {
	if caps.MeasureChild != nil {
		defer func() {
			if r := recover(); r != nil {
				v.logger.Printf("engine: custom measure for index %d panicked: %v", idx, r)
				box = v.measured[idx]
			}
		}()
		var item any
		if idx >= 0 && idx < len(v.items) {
			item = v.items[idx]
		}
		return caps.MeasureChild(child, item)
	}
	return defaultMeasure(child, hostStyle)
}

// defaultMeasure reads the child's post-layout box and normalizes its
// margins into the host's logical axes, transposing on a writing-axis
// mismatch and mirroring start/end on a derived-direction mismatch.
func defaultMeasure(child host.Element, hostStyle host.Style) geometry.ItemBox {
	rect := child.BoundingRect()
	cs := child.Style()

	margins := geometry.Logical(child.Margins(), cs.WritingMode, cs.Direction)
	margins = geometry.NormalizeToHost(margins,
		cs.WritingMode, cs.Direction,
		hostStyle.WritingMode, hostStyle.Direction)

	return geometry.ItemBox{
		Width:   rect.Width,
		Height:  rect.Height,
		Margins: margins,
	}
}

// applyPositions resolves each rendered child's logical position to
// physical coordinates and writes it to the host. Children map to indices
// through renderedRange; a child whose index fell out of the computed range
// has no position and is left alone until the consumer re-renders.
func (v *Virtualizer) applyPositions(c *connected, st layout.StateChanged, children []host.Element) {
	rr := v.renderedRange
	if rr.IsEmpty() || len(st.Positions) == 0 {
		return
	}
	style := c.el.Style()
	hostSize := c.el.BoundingRect().Size()

	for i, child := range children {
		idx := rr.First + i
		if idx > rr.Last {
			break
		}
		pos, ok := st.Positions[idx]
		if !ok {
			continue
		}
		child.ApplyPosition(physicalPosition(pos, style.WritingMode, style.Direction, hostSize))
	}
}

// physicalPosition maps a logical child position onto physical placement
// for the host's writing mode and direction.
func physicalPosition(pos geometry.ChildPosition, mode geometry.WritingMode, dir geometry.Direction, container geometry.Size) host.PositionStyle {
	inlineSize := deref(pos.InlineSize)
	blockSize := deref(pos.BlockSize)

	var ps host.PositionStyle
	if mode.IsHorizontal() {
		ps.Top = pos.Block
		if geometry.DerivedDirection(mode, dir) == geometry.RTL {
			ps.Left = container.Width - pos.Inline - inlineSize
		} else {
			ps.Left = pos.Inline
		}
		ps.Width = pos.InlineSize
		ps.Height = pos.BlockSize
	} else {
		ps.Top = pos.Inline
		switch mode {
		case geometry.VerticalRL, geometry.SidewaysRL:
			ps.Left = container.Width - pos.Block - blockSize
		default:
			ps.Left = pos.Block
		}
		ps.Width = pos.BlockSize
		ps.Height = pos.InlineSize
	}
	if pos.XOffset != nil {
		ps.Left += *pos.XOffset
	}
	if pos.YOffset != nil {
		ps.Top += *pos.YOffset
	}
	return ps
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// syncChildObservers re-registers per-child resize observation for the
// children currently rendered.
func (v *Virtualizer) syncChildObservers(c *connected, r layout.Range, children []host.Element) {
	v.dropChildObservers(c)
	if r.IsEmpty() {
		return
	}
	for i, child := range children {
		idx := r.First + i
		if idx > r.Last {
			break
		}
		index := idx
		c.childCancels = append(c.childCancels,
			c.host.ObserveResize(child, func() { v.onChildResize(index) }))
	}
}
