package geometry

import "testing"

func TestIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 25, Width: 100, Height: 100}

	got := a.Intersect(b)
	want := Rect{X: 50, Y: 25, Width: 50, Height: 75}
	if got != want {
		t.Errorf("Expected intersection %+v, got %+v", want, got)
	}
}

func TestIntersectDisjoint(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 50, Y: 50, Width: 10, Height: 10}

	got := a.Intersect(b)
	if !got.IsEmpty() {
		t.Errorf("Expected empty intersection for disjoint rects, got %+v", got)
	}
	if got.Width != 0 || got.Height != 0 {
		t.Errorf("Expected zero extent, got %gx%g", got.Width, got.Height)
	}
}

func TestVisibleRectClipsThroughAncestors(t *testing.T) {
	host := Rect{X: 0, Y: 0, Width: 400, Height: 4000}
	clips := []Rect{
		{X: 0, Y: 0, Width: 400, Height: 600},
		{X: 0, Y: 100, Width: 300, Height: 600},
	}
	window := Rect{X: 0, Y: 0, Width: 1024, Height: 768}

	got := VisibleRect(host, clips, window)
	want := Rect{X: 0, Y: 100, Width: 300, Height: 500}
	if got != want {
		t.Errorf("Expected visible rect %+v, got %+v", want, got)
	}
}

func TestVisibleRectClampsToOnePixel(t *testing.T) {
	// Host collapsed to zero height must still yield a usable viewport.
	host := Rect{X: 0, Y: 0, Width: 400, Height: 0}
	window := Rect{X: 0, Y: 0, Width: 1024, Height: 768}

	got := VisibleRect(host, nil, window)
	if got.Height != 1 {
		t.Errorf("Expected height clamped to 1, got %g", got.Height)
	}
	if got.Width != 400 {
		t.Errorf("Expected width 400, got %g", got.Width)
	}

	got = VisibleRect(Rect{}, nil, window)
	if got.Width != 1 || got.Height != 1 {
		t.Errorf("Expected 1x1 for fully degenerate host, got %gx%g", got.Width, got.Height)
	}
}

func TestTranslate(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 5, Height: 5}
	got := r.Translate(-10, 5)
	want := Rect{X: 0, Y: 25, Width: 5, Height: 5}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
