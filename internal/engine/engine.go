// Package engine implements the virtualizer: the orchestration core that
// measures viewport and ancestor geometry, delegates range and position
// computation to a pluggable layout strategy, measures rendered children,
// applies computed positions back to the host, reconciles scroll position
// against layout-requested corrections, and tracks range and visibility
// transitions.
//
// The engine is single-threaded and cooperative: every entry point runs on,
// or schedules onto, the scheduler.Loop it was configured with. Correctness
// rests on ordering and idempotent scheduling, not mutual exclusion.
package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/layout"
	"github.com/HamStudy/vscroll/internal/scheduler"
	"github.com/HamStudy/vscroll/internal/scroller"
)

var (
	// ErrDisconnected rejects a pending layout-completion signal when the
	// engine is disconnected from its host.
	ErrDisconnected = errors.New("engine: disconnected from host")

	// ErrNotConnected is returned by operations that require a connected
	// host.
	ErrNotConnected = errors.New("engine: not connected")
)

// Scheduling unit identities. Repeated schedules of one unit coalesce into a
// single run per microtask turn.
const (
	unitUpdate     = "update"
	unitApply      = "apply"
	unitVisibility = "visibility"
	unitUnpinned   = "unpinned"
)

// stableFrames is how many consecutive frames must pass with no structural
// change before the layout-completion signal resolves.
const stableFrames = 2

// Config configures a Virtualizer.
type Config struct {
	// Host provides the element tree and observer wiring. Required.
	Host host.Host

	// Layout is the layout strategy. Required.
	Layout layout.Layouter

	// Loop is the cooperative loop the engine runs on. Required.
	Loop *scheduler.Loop

	// Scroller overrides the scroll controller. When nil the engine
	// builds one around the host's nearest scrolling ancestor.
	Scroller *scroller.Controller

	// Logger receives warnings and, with Verbose, geometry diagnostics.
	// Defaults to log.Default().
	Logger *log.Logger

	// Verbose enables per-cycle viewport/direction diagnostics.
	Verbose bool
}

// RangeChangedEvent reports a change of the rendered index window.
type RangeChangedEvent struct {
	First int
	Last  int
}

// VisibilityChangedEvent reports a change of the visible index window.
type VisibilityChangedEvent struct {
	First int
	Last  int
}

// connected holds the state that exists only while the engine is attached
// to a host. Geometry and measurement paths are reachable only through it,
// so their non-nil assumptions hold by construction.
type connected struct {
	host    host.Host
	el      host.Element
	sc      *scroller.Controller
	ownsSC  bool
	cancels []host.CancelFunc

	// childCancels tracks per-child resize observation for the current
	// rendered range.
	childCancels []host.CancelFunc
}

// Virtualizer coordinates resize, mutation, scroll, and frame events into a
// single coherent, idempotent update cycle.
type Virtualizer struct {
	loop     *scheduler.Loop
	schedule *scheduler.Coalescer
	layouter layout.Layouter
	logger   *log.Logger
	verbose  bool

	// conn is nil while disconnected.
	conn *connected

	items        []any
	itemsChanged bool

	// current is the latest layout state; a newer message supersedes an
	// older one entirely.
	current *layout.StateChanged

	appliedRange layout.Range
	emittedRange layout.Range

	// renderedRange is the range the host's current children correspond
	// to. It trails emittedRange: the consumer re-renders in response to a
	// range event, and only the resulting mutation proves the children
	// match. Measurement and per-child observation index children by this
	// range, never by the latest computed one.
	renderedRange layout.Range

	visFirst int
	visLast  int

	measured       map[int]geometry.ItemBox
	pendingMeasure map[int]bool

	target *scrollTarget

	settler *scheduler.Settler
	signal  *scheduler.Signal

	onRangeChanged      func(RangeChangedEvent)
	onVisibilityChanged func(VisibilityChangedEvent)
	onUnpinned          func()

	bench *benchState

	// cfg retains connection inputs so Connect can re-derive everything
	// after a disconnect.
	cfg Config
}

// New creates a disconnected Virtualizer. A missing host, layout, or loop
// is a configuration error.
func New(cfg Config) (*Virtualizer, error) {
	if cfg.Host == nil {
		return nil, fmt.Errorf("engine: config requires a host")
	}
	if cfg.Layout == nil {
		return nil, fmt.Errorf("engine: config requires a layout strategy")
	}
	if cfg.Loop == nil {
		return nil, fmt.Errorf("engine: config requires a loop")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	v := &Virtualizer{
		loop:           cfg.Loop,
		schedule:       scheduler.NewCoalescer(cfg.Loop),
		layouter:       cfg.Layout,
		logger:         logger,
		verbose:        cfg.Verbose,
		appliedRange:   layout.EmptyRange(),
		emittedRange:   layout.EmptyRange(),
		renderedRange:  layout.EmptyRange(),
		visFirst:       -1,
		visLast:        -1,
		measured:       make(map[int]geometry.ItemBox),
		pendingMeasure: make(map[int]bool),
		settler:        scheduler.NewSettler(cfg.Loop, stableFrames),
		cfg:            cfg,
	}
	return v, nil
}

// Connect attaches the engine to its host: observers are registered, the
// layout sink is wired, and an initial update cycle is scheduled.
// Reconnecting after a disconnect re-derives all ancestor and observer
// state from scratch.
func (v *Virtualizer) Connect() error {
	if v.conn != nil {
		return nil
	}
	cfg := v.cfg
	h := cfg.Host
	el := h.Element()

	sc := cfg.Scroller
	owns := false
	if sc == nil {
		nearest := host.NearestScroller(el)
		if nearest == nil {
			return fmt.Errorf("engine: host has no scrolling ancestor")
		}
		sc = scroller.New(nearest, v.loop)
		owns = true
	}

	c := &connected{host: h, el: el, sc: sc, ownsSC: owns}
	v.conn = c

	c.cancels = append(c.cancels, h.ObserveResize(el, v.onHostResize))
	for _, anc := range host.ClippingAncestors(el) {
		c.cancels = append(c.cancels, h.ObserveResize(anc, v.onHostResize))
		c.cancels = append(c.cancels, h.ObserveScroll(anc, v.onScroll))
	}
	c.cancels = append(c.cancels, h.ObserveMutations(el, v.onMutation))
	c.cancels = append(c.cancels, h.ObserveScroll(nil, v.onScroll))
	if v.layouter.Capabilities().NeedsLoadEvents {
		c.cancels = append(c.cancels, h.ObserveChildLoad(el, v.onChildLoad))
	}

	v.layouter.SetSink(v.onLayoutMessage)
	v.scheduleUpdate()
	return nil
}

// Disconnect detaches the engine: observers are canceled, in-flight managed
// scrolls abort, and a pending layout-completion signal rejects with
// ErrDisconnected. The engine can be reconnected later with Connect.
func (v *Virtualizer) Disconnect() {
	c := v.conn
	if c == nil {
		return
	}
	v.conn = nil

	for _, cancel := range c.cancels {
		cancel()
	}
	v.dropChildObservers(c)
	c.sc.CancelManagedScroll()
	if c.ownsSC {
		c.sc.Detach()
	}
	v.layouter.SetSink(nil)
	v.target = nil
	v.settler.Cancel()
	if v.signal != nil {
		v.signal.Reject(ErrDisconnected)
	}
	v.current = nil
	v.appliedRange = layout.EmptyRange()
	v.emittedRange = layout.EmptyRange()
}

// Connected reports whether the engine is attached to its host.
func (v *Virtualizer) Connected() bool { return v.conn != nil }

// SetItems replaces the item collection. All measurements are invalidated
// and every rendered child will be remeasured. A pending scroll-into-view
// target whose index no longer exists is canceled.
func (v *Virtualizer) SetItems(items []any) {
	v.items = items
	v.itemsChanged = true
	v.measured = make(map[int]geometry.ItemBox)
	v.pendingMeasure = make(map[int]bool)
	v.renderedRange = layout.EmptyRange()
	if v.target != nil && v.target.index >= len(items) {
		v.clearScrollTarget(false)
	}
	v.layouter.SetItems(items)
	v.scheduleUpdate()
}

// Items returns the current item collection.
func (v *Virtualizer) Items() []any { return v.items }

// UpdateLayoutConfig applies new options to the active layout strategy.
// It returns false, with no side effects, when the config's type differs
// from the active strategy: swapping strategies at runtime is unsupported
// and the caller must construct a new engine.
func (v *Virtualizer) UpdateLayoutConfig(cfg layout.Config) bool {
	if cfg == nil || cfg.Type() != v.layouter.Type() {
		return false
	}
	v.layouter.ApplyConfig(cfg)
	v.scheduleUpdate()
	return true
}

// Range returns the most recently applied rendered range.
func (v *Virtualizer) Range() layout.Range { return v.appliedRange }

// SetOnRangeChanged registers the rendered-range change callback.
func (v *Virtualizer) SetOnRangeChanged(fn func(RangeChangedEvent)) {
	v.onRangeChanged = fn
}

// SetOnVisibilityChanged registers the visible-range change callback.
func (v *Virtualizer) SetOnVisibilityChanged(fn func(VisibilityChangedEvent)) {
	v.onVisibilityChanged = fn
}

// SetOnUnpinned registers the callback fired when the layout releases a
// pinned target, e.g. because of a user scroll.
func (v *Virtualizer) SetOnUnpinned(fn func()) {
	v.onUnpinned = fn
}

// LayoutComplete returns a one-shot signal that resolves once the rendered
// output has been stable for two consecutive frames, or rejects with
// ErrDisconnected. After it settles, the next access creates a fresh signal
// for the next cycle.
func (v *Virtualizer) LayoutComplete() *scheduler.Signal {
	if v.signal == nil || v.signal.Settled() {
		v.signal = scheduler.NewSignal()
	}
	return v.signal
}

// Observer callbacks. These may fire on the host's event thread; they only
// touch the coalescer, which is safe to call from anywhere.

func (v *Virtualizer) onHostResize() {
	v.scheduleUpdate()
}

func (v *Virtualizer) onMutation() {
	// The child list changed, so the children now reflect the most
	// recently emitted range.
	v.renderedRange = v.emittedRange
	v.scheduleUpdate()
}

func (v *Virtualizer) onChildLoad() {
	v.scheduleUpdate()
}

func (v *Virtualizer) onScroll() {
	c := v.conn
	if c == nil {
		return
	}
	if !c.sc.ConsumeCorrectionFlag() {
		// A user-driven scroll releases any pinned target and takes
		// over from an in-flight managed scroll.
		v.layouter.Unpin()
		c.sc.CancelManagedScroll()
	}
	v.scheduleUpdate()
}

func (v *Virtualizer) onChildResize(index int) {
	v.pendingMeasure[index] = true
	v.scheduleUpdate()
}

func (v *Virtualizer) scheduleUpdate() {
	v.schedule.Schedule(unitUpdate, v.update)
}

func (v *Virtualizer) dropChildObservers(c *connected) {
	for _, cancel := range c.childCancels {
		cancel()
	}
	c.childCancels = nil
}
