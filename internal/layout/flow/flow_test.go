package flow

import (
	"testing"

	"github.com/HamStudy/vscroll/internal/geometry"
	"github.com/HamStudy/vscroll/internal/host"
	"github.com/HamStudy/vscroll/internal/layout"
)

func makeItems(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = i
	}
	return items
}

type capture struct {
	states     []layout.StateChanged
	visibility []layout.VisibilityChanged
	unpinned   int
}

func (c *capture) sink(m layout.Message) {
	switch m := m.(type) {
	case layout.StateChanged:
		c.states = append(c.states, m)
	case layout.VisibilityChanged:
		c.visibility = append(c.visibility, m)
	case layout.Unpinned:
		c.unpinned++
	}
}

func (c *capture) lastState(t *testing.T) layout.StateChanged {
	t.Helper()
	if len(c.states) == 0 {
		t.Fatal("Expected at least one state message")
	}
	return c.states[len(c.states)-1]
}

func newLayout(n int, scrollTop float64) (*Layout, *capture) {
	l := New(Config{})
	c := &capture{}
	l.SetSink(c.sink)
	l.SetItems(makeItems(n))
	l.SetViewport(layout.Viewport{
		Size:        geometry.Size{Width: 400, Height: 600},
		Scroll:      geometry.Point{Top: scrollTop},
		WritingMode: geometry.HorizontalTB,
		Direction:   geometry.LTR,
	})
	return l, c
}

func TestReflowProducesValidRange(t *testing.T) {
	for _, scroll := range []float64{0, 50, 999, 5000, 99400} {
		l, c := newLayout(1000, scroll)
		l.ReflowIfNeeded()

		st := c.lastState(t)
		if !st.Range.Valid() {
			t.Errorf("scroll=%g: invalid range %+v", scroll, st.Range)
		}
		if st.Range.IsEmpty() {
			t.Errorf("scroll=%g: expected non-empty range", scroll)
		}
		for i := st.Range.First; i <= st.Range.Last; i++ {
			if _, ok := st.Positions[i]; !ok {
				t.Errorf("scroll=%g: missing position for in-range index %d", scroll, i)
			}
		}
		if st.Size.BlockSize.Resolve() != 1000*DefaultEstimate {
			t.Errorf("scroll=%g: expected total %g, got %g",
				scroll, 1000*DefaultEstimate, st.Size.BlockSize.Resolve())
		}
	}
}

func TestReflowIsIdempotent(t *testing.T) {
	l, c := newLayout(100, 0)
	l.ReflowIfNeeded()
	n := len(c.states)
	l.ReflowIfNeeded()
	if len(c.states) != n {
		t.Errorf("Expected no new messages from a clean reflow, got %d extra", len(c.states)-n)
	}
}

func TestEmptyItems(t *testing.T) {
	l, c := newLayout(0, 0)
	l.ReflowIfNeeded()

	st := c.lastState(t)
	if !st.Range.IsEmpty() {
		t.Errorf("Expected empty range, got %+v", st.Range)
	}
	if !st.Range.Valid() {
		t.Errorf("Expected canonical empty range, got %+v", st.Range)
	}
	if st.Size.BlockSize.Resolve() != 0 {
		t.Errorf("Expected zero total size, got %g", st.Size.BlockSize.Resolve())
	}
}

func TestVisibleRangeTracksScroll(t *testing.T) {
	l, c := newLayout(1000, 1000)
	l.ReflowIfNeeded()

	st := c.lastState(t)
	// Items of extent 100 with viewport [1000, 1600): indices 10..15.
	if st.Range.FirstVisible != 10 || st.Range.LastVisible != 15 {
		t.Errorf("Expected visible [10, 15], got [%d, %d]", st.Range.FirstVisible, st.Range.LastVisible)
	}
	// Overhang of one viewport (600px) renders 4..21.
	if st.Range.First != 4 || st.Range.Last != 21 {
		t.Errorf("Expected rendered [4, 21], got [%d, %d]", st.Range.First, st.Range.Last)
	}
	if len(c.visibility) == 0 {
		t.Fatal("Expected a visibility message")
	}
	v := c.visibility[len(c.visibility)-1]
	if v.First != 10 || v.Last != 15 {
		t.Errorf("Expected visibility message [10, 15], got [%d, %d]", v.First, v.Last)
	}
}

func TestPinJumpsAndReportsScrollError(t *testing.T) {
	l, c := newLayout(1000, 0)
	l.ReflowIfNeeded()

	l.SetPin(layout.Pin{Index: 500})
	l.ReflowIfNeeded()

	st := c.lastState(t)
	if st.Range.FirstVisible != 500 {
		t.Errorf("Expected index 500 pinned to viewport start, got firstVisible=%d", st.Range.FirstVisible)
	}
	if st.ScrollError == nil {
		t.Fatal("Expected a scroll error moving the real scroll position")
	}
	// current(0) - desired(50000) = -50000; the engine subtracts the error.
	if st.ScrollError.Top != -50000 {
		t.Errorf("Expected scroll error -50000, got %g", st.ScrollError.Top)
	}
}

func TestPinClampsIndex(t *testing.T) {
	l, c := newLayout(10, 0)
	l.SetPin(layout.Pin{Index: 999})
	l.ReflowIfNeeded()

	st := c.lastState(t)
	if st.Range.LastVisible != 9 {
		t.Errorf("Expected clamped pin to land on last item, got %+v", st.Range)
	}
}

func TestUnpinEmitsMessage(t *testing.T) {
	l, c := newLayout(100, 0)
	l.SetPin(layout.Pin{Index: 50})
	l.ReflowIfNeeded()

	l.Unpin()
	if c.unpinned != 1 {
		t.Errorf("Expected 1 unpinned message, got %d", c.unpinned)
	}
	l.Unpin() // already released
	if c.unpinned != 1 {
		t.Errorf("Expected unpin to be idempotent, got %d messages", c.unpinned)
	}
}

func TestMeasurementAboveAnchorEmitsScrollErrorOnce(t *testing.T) {
	l, c := newLayout(1000, 5000)
	l.ReflowIfNeeded()
	first := c.lastState(t).Range.First

	// An item above the rendered window measures 150 instead of the
	// estimated 100: content under the viewport shifted down by 50.
	l.UpdateItemSizes(map[int]geometry.ItemBox{
		first - 2: {Width: 400, Height: 150},
	})
	l.ReflowIfNeeded()

	st := c.lastState(t)
	if st.ScrollError == nil {
		t.Fatal("Expected scroll error after remeasurement above anchor")
	}
	if st.ScrollError.Top != -50 {
		t.Errorf("Expected scroll error -50, got %g", st.ScrollError.Top)
	}

	// The error is reported once, not on every subsequent reflow.
	l.SetViewport(layout.Viewport{
		Size:        geometry.Size{Width: 400, Height: 600},
		Scroll:      geometry.Point{Top: 5050},
		WritingMode: geometry.HorizontalTB,
	})
	l.ReflowIfNeeded()
	if st := c.lastState(t); st.ScrollError != nil {
		t.Errorf("Expected no repeated scroll error, got %+v", st.ScrollError)
	}
}

func TestScrollIntoViewCoordinates(t *testing.T) {
	l, _ := newLayout(1000, 0)
	l.ReflowIfNeeded()

	got := l.ScrollIntoViewCoordinates(500, host.ScrollIntoViewOptions{})
	if got.Top != 50000 {
		t.Errorf("Expected start alignment at 50000, got %g", got.Top)
	}

	got = l.ScrollIntoViewCoordinates(500, host.ScrollIntoViewOptions{Block: "end"})
	if got.Top != 50000-600+100 {
		t.Errorf("Expected end alignment at %g, got %g", 50000.0-600+100, got.Top)
	}

	// Beyond the last item clamps.
	got = l.ScrollIntoViewCoordinates(5000, host.ScrollIntoViewOptions{})
	max := 1000*DefaultEstimate - 600
	if got.Top != max {
		t.Errorf("Expected clamped coordinate %g, got %g", max, got.Top)
	}
}

func TestMeasurementRefinesEstimate(t *testing.T) {
	l, c := newLayout(100, 0)
	l.ReflowIfNeeded()

	l.UpdateItemSizes(map[int]geometry.ItemBox{
		0: {Height: 40},
		1: {Height: 60},
	})
	l.ReflowIfNeeded()

	st := c.lastState(t)
	// Two measured at 40+60, 98 estimated at mean 50.
	want := 40.0 + 60.0 + 98*50.0
	if st.Size.BlockSize.Resolve() != want {
		t.Errorf("Expected total %g, got %g", want, st.Size.BlockSize.Resolve())
	}
}
