// Package scroller owns the actual scrolling element on behalf of the
// virtualizer engine: it applies scroll-error corrections and drives managed
// (animated) programmatic scrolls, keeping both distinguishable from
// user-driven scrolling.
package scroller

import (
	"errors"
	"math"

	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/scheduler"
)

// ErrDetached is returned by operations on a detached controller.
var ErrDetached = errors.New("scroller: controller is detached")

// settleThreshold is the remaining distance, in pixels, below which a
// managed scroll snaps to its target and completes.
const settleThreshold = 0.5

// stepFraction is the share of the remaining distance a managed scroll
// covers per frame.
const stepFraction = 0.3

// minStep is the minimum per-frame movement of a managed scroll, so long
// animations still terminate.
const minStep = 4.0

// RecomputeFunc re-derives the target coordinates of a managed scroll. It
// runs once per frame; returning nil keeps the current target.
type RecomputeFunc func() *geometry.Point

// DoneFunc observes the end of a managed scroll. completed is false when the
// scroll was canceled before reaching its target.
type DoneFunc func(completed bool)

// Controller owns a scrolling element and performs programmatic scrolls
// that the engine must not misattribute to the user.
type Controller struct {
	sc   host.Scroller
	loop *scheduler.Loop

	correcting bool
	managed    *managedScroll
}

type managedScroll struct {
	target      geometry.Point
	recompute   RecomputeFunc
	onDone      DoneFunc
	cancelFrame func()
}

// New creates a controller around the given scrolling element.
func New(sc host.Scroller, loop *scheduler.Loop) *Controller {
	return &Controller{sc: sc, loop: loop}
}

// Element returns the scrolling element, or nil after Detach.
func (c *Controller) Element() host.Scroller { return c.sc }

// ScrollTop returns the current vertical scroll offset.
func (c *Controller) ScrollTop() float64 {
	if c.sc == nil {
		return 0
	}
	return c.sc.ScrollOffset().Top
}

// ScrollLeft returns the current horizontal scroll offset.
func (c *Controller) ScrollLeft() float64 {
	if c.sc == nil {
		return 0
	}
	return c.sc.ScrollOffset().Left
}

// CorrectScrollError applies a one-shot scroll adjustment. The resulting
// scroll event is flagged so the engine does not treat it as a user scroll.
// The new offset is the current offset minus the error delta.
func (c *Controller) CorrectScrollError(err geometry.ScrollError) {
	if c.sc == nil {
		return
	}
	cur := c.sc.ScrollOffset()
	c.correcting = true
	c.sc.ScrollTo(geometry.Point{
		Left: cur.Left - err.Left,
		Top:  cur.Top - err.Top,
	})
}

// ConsumeCorrectionFlag reports whether the most recent scroll movement was
// a programmatic correction, clearing the flag. The engine calls this from
// its scroll-event handler to classify the event.
func (c *Controller) ConsumeCorrectionFlag() bool {
	was := c.correcting
	c.correcting = false
	return was
}

// ManagedScrollTo starts an animated scroll toward coords. Each frame the
// recompute function may revise the target (estimated positions shift as new
// items render and measure). onDone fires exactly once, with completed=true
// when the target was reached and false on cancellation. A managed scroll
// already in flight is canceled first.
func (c *Controller) ManagedScrollTo(coords geometry.Point, recompute RecomputeFunc, onDone DoneFunc) error {
	if c.sc == nil {
		return ErrDetached
	}
	c.CancelManagedScroll()

	m := &managedScroll{target: coords, recompute: recompute, onDone: onDone}
	c.managed = m
	m.cancelFrame = c.loop.OnFrame(func() { c.step(m) })
	return nil
}

// ManagedScrollInFlight reports whether a managed scroll is active.
func (c *Controller) ManagedScrollInFlight() bool { return c.managed != nil }

// CancelManagedScroll aborts any in-flight managed scroll, reporting
// cancellation to its DoneFunc.
func (c *Controller) CancelManagedScroll() {
	m := c.managed
	if m == nil {
		return
	}
	c.finish(m, false)
}

// Detach releases the scrolling element. Any in-flight managed scroll is
// canceled.
func (c *Controller) Detach() {
	c.CancelManagedScroll()
	c.sc = nil
}

func (c *Controller) step(m *managedScroll) {
	if c.managed != m || c.sc == nil {
		return
	}
	if m.recompute != nil {
		if t := m.recompute(); t != nil {
			m.target = *t
		}
	}

	cur := c.sc.ScrollOffset()
	dl := m.target.Left - cur.Left
	dt := m.target.Top - cur.Top
	if math.Abs(dl) <= settleThreshold && math.Abs(dt) <= settleThreshold {
		c.correcting = true
		c.sc.ScrollTo(m.target)
		c.finish(m, true)
		return
	}

	c.correcting = true
	c.sc.ScrollTo(geometry.Point{
		Left: cur.Left + stepToward(dl),
		Top:  cur.Top + stepToward(dt),
	})
}

func (c *Controller) finish(m *managedScroll, completed bool) {
	if m.cancelFrame != nil {
		m.cancelFrame()
	}
	if c.managed == m {
		c.managed = nil
	}
	if m.onDone != nil {
		m.onDone(completed)
	}
}

func stepToward(remaining float64) float64 {
	step := remaining * stepFraction
	if math.Abs(step) < minStep {
		step = math.Copysign(math.Min(minStep, math.Abs(remaining)), remaining)
	}
	return step
}
