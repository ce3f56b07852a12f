package rect

import "testing"

func TestIsPointIsStrip(t *testing.T) {
	cases := []struct {
		r              Rect
		isPoint, strip bool
	}{
		{New(0, 0, 0, 0), true, false},
		{New(0, 0, 5, 0), false, true},
		{New(0, 0, 0, 5), false, true},
		{New(0, 0, 5, 5), false, false},
	}
	for _, c := range cases {
		if got := c.r.IsPoint(); got != c.isPoint {
			t.Errorf("%v.IsPoint() = %v, want %v", c.r, got, c.isPoint)
		}
		if got := c.r.IsStrip(); got != c.strip {
			t.Errorf("%v.IsStrip() = %v, want %v", c.r, got, c.strip)
		}
	}
}

func TestPointCount(t *testing.T) {
	if got := New(0, 0, 0, 0).PointCount(); got != 1 {
		t.Errorf("point PointCount() = %d, want 1", got)
	}
	if got := New(0, 0, 9, 9).PointCount(); got != 100 {
		t.Errorf("10x10 PointCount() = %d, want 100", got)
	}
}

func TestSplitFullPartition(t *testing.T) {
	root := New(0, 0, 360, 180)
	children, present := root.Split()
	var covered int64
	for i, c := range children {
		if !present[i] {
			continue
		}
		covered += c.PointCount()
	}
	if covered != root.PointCount() {
		t.Errorf("children cover %d points, root has %d", covered, root.PointCount())
	}
	// spot-check a couple of points land in exactly one child.
	for _, p := range [][2]int64{{0, 0}, {360, 180}, {180, 90}, {180, 91}} {
		ilon, ilat := p[0], p[1]
		hits := 0
		for i, c := range children {
			if present[i] && c.Contains(ilat, ilon) {
				hits++
			}
		}
		if hits != 1 {
			t.Errorf("point (ilat=%d,ilon=%d) hit by %d children, want 1", ilat, ilon, hits)
		}
	}
}

func TestSplitDegenerateX(t *testing.T) {
	r := New(5, 0, 5, 10)
	children, present := r.Split()
	if present[NE] || present[SE] {
		t.Fatalf("x-degenerate rect must not produce NE/SE, got present=%v", present)
	}
	if !present[NW] || !present[SW] {
		t.Fatalf("x-degenerate rect must produce NW and SW, got present=%v", present)
	}
	if children[NW].X0 != 5 || children[NW].X1 != 5 {
		t.Errorf("NW should keep the degenerate X, got %v", children[NW])
	}
	if children[SW].X0 != 5 || children[SW].X1 != 5 {
		t.Errorf("SW should keep the degenerate X, got %v", children[SW])
	}
}

func TestSplitDegenerateY(t *testing.T) {
	r := New(0, 7, 10, 7)
	children, present := r.Split()
	if present[NW] || present[NE] {
		t.Fatalf("y-degenerate rect must not produce NW/NE, got present=%v", present)
	}
	if !present[SW] || !present[SE] {
		t.Fatalf("y-degenerate rect must produce SW and SE, got present=%v", present)
	}
	if children[SW].Y0 != 7 || children[SW].Y1 != 7 {
		t.Errorf("SW should keep the degenerate Y, got %v", children[SW])
	}
	if children[SE].Y0 != 7 || children[SE].Y1 != 7 {
		t.Errorf("SE should keep the degenerate Y, got %v", children[SE])
	}
}

func TestSplitPanicsOnPoint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Split() on a point rectangle should panic")
		}
	}()
	New(3, 3, 3, 3).Split()
}

func TestNewInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New() with x0>x1 should panic")
		}
	}()
	New(5, 0, 1, 0)
}

func TestChildrenOrderNames(t *testing.T) {
	want := []string{"NW", "NE", "SW", "SE"}
	for i, c := range []Children{NW, NE, SW, SE} {
		if c.String() != want[i] {
			t.Errorf("Children(%d).String() = %s, want %s", i, c.String(), want[i])
		}
	}
}
