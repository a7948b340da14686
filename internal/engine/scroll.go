package engine

import (
	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/layout"
)

// scrollTarget is an in-flight smooth scroll-into-view request, retained
// until the managed scroll settles or is superseded.
type scrollTarget struct {
	index int
	opts  host.ScrollIntoViewOptions
}

// ScrollToIndex brings the item at index into view.
//
// An index already inside the rendered range delegates to the child's own
// scroll-into-view behavior and retains no engine state. Otherwise the index
// is clamped to the collection; smooth behavior starts a managed scroll
// whose target coordinates are re-derived every frame as estimates shift,
// while any other behavior pins the index to the viewport edge on the next
// cycle for an instant jump.
func (v *Virtualizer) ScrollToIndex(index int, opts host.ScrollIntoViewOptions) error {
	c := v.conn
	if c == nil {
		return ErrNotConnected
	}

	if v.appliedRange.Contains(index) {
		children := c.el.Children()
		if i := index - v.appliedRange.First; i >= 0 && i < len(children) {
			children[i].ScrollIntoView(opts)
			return nil
		}
	}

	if len(v.items) == 0 {
		return nil
	}
	if index < 0 {
		index = 0
	}
	if index >= len(v.items) {
		index = len(v.items) - 1
	}

	if opts.Behavior == "smooth" {
		t := &scrollTarget{index: index, opts: opts}
		v.target = t
		coords := v.layouter.ScrollIntoViewCoordinates(index, opts)
		err := c.sc.ManagedScrollTo(coords,
			func() *geometry.Point {
				p := v.layouter.ScrollIntoViewCoordinates(t.index, t.opts)
				return &p
			},
			func(completed bool) {
				if v.target == t {
					v.target = nil
				}
			})
		if err != nil {
			v.target = nil
			return err
		}
		v.scheduleUpdate()
		return nil
	}

	v.layouter.SetPin(layout.Pin{Index: index, Block: opts.Block, Inline: opts.Inline})
	v.scheduleUpdate()
	return nil
}

// ScrollTargetIndex returns the pending smooth-scroll target, if any.
func (v *Virtualizer) ScrollTargetIndex() (int, bool) {
	if v.target == nil {
		return 0, false
	}
	return v.target.index, true
}

func (v *Virtualizer) clearScrollTarget(completed bool) {
	v.target = nil
	if !completed && v.conn != nil {
		v.conn.sc.CancelManagedScroll()
	}
}

// ScrollProxy lets a consumer hold a scroll handle for one index without
// holding the engine.
type ScrollProxy struct {
	v     *Virtualizer
	index int
}

// ScrollProxy returns a proxy whose ScrollIntoView targets index.
func (v *Virtualizer) ScrollProxy(index int) *ScrollProxy {
	return &ScrollProxy{v: v, index: index}
}

// ScrollIntoView scrolls the proxied index into view.
func (p *ScrollProxy) ScrollIntoView(opts host.ScrollIntoViewOptions) error {
	return p.v.ScrollToIndex(p.index, opts)
}
