package host

import (
	"testing"

	"github.com/HamStudy/vscroll/internal/geometry"
)

func buildTree() (*FakeElement, *FakeScroller, *FakeElement) {
	root := NewFakeElement(geometry.Rect{Width: 1024, Height: 768})
	scroller := NewFakeScroller(geometry.Rect{X: 0, Y: 100, Width: 400, Height: 600})
	hostEl := NewFakeElement(geometry.Rect{X: 0, Y: 100, Width: 400, Height: 4000})
	root.SetChildren([]Element{scroller})
	scroller.SetChildren([]Element{hostEl})
	return root, scroller, hostEl
}

func TestClippingAncestors(t *testing.T) {
	root, scroller, hostEl := buildTree()

	clips := ClippingAncestors(hostEl)
	if len(clips) != 1 {
		t.Fatalf("Expected 1 clipping ancestor, got %d", len(clips))
	}
	if clips[0] != Element(scroller) {
		t.Error("Expected the scroller to be the clipping ancestor")
	}

	// An overflow:hidden root joins the chain.
	root.SetStyle(Style{OverflowX: OverflowHidden, OverflowY: OverflowHidden})
	clips = ClippingAncestors(hostEl)
	if len(clips) != 2 {
		t.Fatalf("Expected 2 clipping ancestors, got %d", len(clips))
	}
}

func TestNearestScroller(t *testing.T) {
	_, scroller, hostEl := buildTree()

	got := NearestScroller(hostEl)
	if got != Scroller(scroller) {
		t.Error("Expected nearest scroller to be the ancestor scroller")
	}

	detached := NewFakeElement(geometry.Rect{Width: 10, Height: 10})
	if NearestScroller(detached) != nil {
		t.Error("Expected nil scroller for detached element")
	}
}

func TestScrollerParentsChildrenToItself(t *testing.T) {
	_, scroller, hostEl := buildTree()

	if hostEl.Parent() != Element(scroller) {
		t.Fatal("Expected child's parent to be the scroller value")
	}
	if _, ok := hostEl.Parent().(Scroller); !ok {
		t.Error("Expected the parent to implement Scroller")
	}
}

func TestOffsetWithinScroller(t *testing.T) {
	_, scroller, hostEl := buildTree()
	scroller.ScrollTo(geometry.Point{Top: 250})

	// The host element moves up in viewport coordinates as content scrolls.
	if y := hostEl.BoundingRect().Y; y != -150 {
		t.Fatalf("Expected host rect at -150 after scrolling, got %g", y)
	}

	off := OffsetWithinScroller(hostEl, scroller)
	if off.Top != 0 {
		t.Errorf("Expected top offset 0, got %g", off.Top)
	}
	if off.Left != 0 {
		t.Errorf("Expected left offset 0, got %g", off.Left)
	}
}

func TestScrollerClampsToContentExtent(t *testing.T) {
	sc := NewFakeScroller(geometry.Rect{Width: 400, Height: 600})
	sc.ApplyContentSize(geometry.VirtualizerSize{
		InlineSize: geometry.Dimension{Px: 400},
		BlockSize:  geometry.Dimension{Px: 1000},
	})

	sc.ScrollTo(geometry.Point{Top: 5000})
	if got := sc.ScrollOffset().Top; got != 400 {
		t.Errorf("Expected offset clamped to 400, got %g", got)
	}

	sc.ScrollTo(geometry.Point{Top: -20})
	if got := sc.ScrollOffset().Top; got != 0 {
		t.Errorf("Expected offset clamped to 0, got %g", got)
	}
}

func TestObserverCancellation(t *testing.T) {
	_, _, hostEl := buildTree()
	h := NewFakeHost(hostEl, NewFakeWindow(geometry.Rect{Width: 1024, Height: 768}))

	fired := 0
	cancel := h.ObserveResize(hostEl, func() { fired++ })
	h.FireResize(hostEl)
	cancel()
	h.FireResize(hostEl)

	if fired != 1 {
		t.Errorf("Expected 1 delivery, got %d", fired)
	}
	if h.ObserverCount() != 0 {
		t.Errorf("Expected 0 live observers, got %d", h.ObserverCount())
	}
}
