// Package rect implements the integer rectangle model and the subdivision
// geometry the quadtree builder splits along. Everything here is integer
// arithmetic on the lattice; no floats, no oracle, no I/O.
package rect

import "fmt"

// Rect is an axis-aligned integer box [X0,X1] x [Y0,Y1], inclusive on both
// ends, with 0 <= X0 <= X1 and 0 <= Y0 <= Y1.
type Rect struct {
	X0, Y0, X1, Y1 int64
}

// New returns the Rect (x0,y0,x1,y1), panicking if it violates the
// non-negative, ordered-coordinate invariant. Rectangles are constructed
// only by the builder and the decoder, both of which derive their
// coordinates from an already-validated root rectangle, so a panic here
// indicates a programming error, not bad input.
func New(x0, y0, x1, y1 int64) Rect {
	if x0 < 0 || y0 < 0 || x0 > x1 || y0 > y1 {
		panic(fmt.Sprintf("rect: invalid rectangle (%d,%d,%d,%d)", x0, y0, x1, y1))
	}
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// IsPoint reports whether r collapses to a single lattice point.
func (r Rect) IsPoint() bool {
	return r.X0 == r.X1 && r.Y0 == r.Y1
}

// IsStrip reports whether exactly one axis of r has zero width.
func (r Rect) IsStrip() bool {
	xZero := r.X0 == r.X1
	yZero := r.Y0 == r.Y1
	return xZero != yZero // exactly one, not both (that would be a point)
}

// PointCount returns the number of lattice points contained in r.
func (r Rect) PointCount() int64 {
	return (r.X1 - r.X0 + 1) * (r.Y1 - r.Y0 + 1)
}

// Contains reports whether the lattice point (ilat,ilon) falls within r.
func (r Rect) Contains(ilat, ilon int64) bool {
	return ilon >= r.X0 && ilon <= r.X1 && ilat >= r.Y0 && ilat <= r.Y1
}

// Corners returns the up-to-four distinct corners of r (deduplicated when r
// degenerates to a strip or a point).
func (r Rect) Corners() [][2]int64 {
	seen := make(map[[2]int64]bool, 4)
	out := make([][2]int64, 0, 4)
	add := func(x, y int64) {
		k := [2]int64{x, y}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(r.X0, r.Y0)
	add(r.X1, r.Y0)
	add(r.X0, r.Y1)
	add(r.X1, r.Y1)
	return out
}

// Children identifies the four logical quadrants in the fixed NW, NE, SW,
// SE order.
type Children int

const (
	NW Children = iota
	NE
	SW
	SE
)

func (c Children) String() string {
	switch c {
	case NW:
		return "NW"
	case NE:
		return "NE"
	case SW:
		return "SW"
	case SE:
		return "SE"
	default:
		return "?"
	}
}

// Split computes the (up to four) child rectangles of r per the fixed
// subdivision rule: xm = floor((x0+x1)/2), ym = floor((y0+y1)/2), with the
// west column owning xm and the south row owning ym.
//
// When r has zero width (X0==X1), the longitudinal split is suppressed:
// only SW and NW are produced (sharing the full X range), and present
// reports this. Symmetrically for zero height. r must not be a point
// (callers always special-case points as leaves before calling Split).
func (r Rect) Split() (children [4]Rect, present [4]bool) {
	if r.IsPoint() {
		panic("rect: Split called on a single-point rectangle")
	}
	xm := (r.X0 + r.X1) / 2
	ym := (r.Y0 + r.Y1) / 2

	// The four candidate rectangles, computed by the one fixed formula.
	// When an axis is degenerate (x0==x1 or y0==y1), xm==x1 or ym==y1 and
	// exactly the NE/SE (x-degenerate) or NW/NE (y-degenerate) candidates
	// come out with y0>y1 or x0>x1 — invalid, and simply omitted rather
	// than constructed.
	if r.Y0 <= ym && ym+1 <= r.Y1 {
		present[NW], present[NE] = true, true
		children[NW] = New(r.X0, ym+1, xm, r.Y1)
		if r.X0 <= xm && xm+1 <= r.X1 {
			children[NE] = New(xm+1, ym+1, r.X1, r.Y1)
		} else {
			present[NE] = false
		}
	}
	present[SW] = true
	children[SW] = New(r.X0, r.Y0, xm, ym)
	if r.X0 <= xm && xm+1 <= r.X1 {
		present[SE] = true
		children[SE] = New(xm+1, r.Y0, r.X1, ym)
	}
	return children, present
}
