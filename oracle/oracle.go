// Package oracle defines the Oracle abstraction the builder proves
// rectangles against, plus a handful of synthetic, deterministic oracles
// used by the CLI's --mock-oracle flag and by the test suite. A real oracle
// (backed by a polygon set / spatial database) is deliberately out of scope
// here; callers own its connection lifecycle, this package only describes
// the contract it must satisfy.
package oracle

import "fmt"

// Oracle answers "which country id owns this lattice point?". Implementations
// must be pure and safe for concurrent calls: the builder may call At from
// several goroutines at once while building disjoint subtrees.
type Oracle interface {
	At(ilat, ilon int64) (uint16, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ilat, ilon int64) (uint16, error)

// At implements Oracle.
func (f Func) At(ilat, ilon int64) (uint16, error) { return f(ilat, ilon) }

// Simple returns a fixed id for every lattice point. Grounds scenario S1.
type Simple struct {
	ID uint16
}

// At implements Oracle.
func (s Simple) At(ilat, ilon int64) (uint16, error) {
	return s.ID, nil
}

// Rectangle returns ID for every lattice point inside [X0,X1]x[Y0,Y1]
// (inclusive), and 0 (no country) elsewhere. Grounds S3, and S4 when the
// rectangle is a single point.
type Rectangle struct {
	X0, Y0, X1, Y1 int64
	ID             uint16
}

// At implements Oracle.
func (r Rectangle) At(ilat, ilon int64) (uint16, error) {
	if ilon >= r.X0 && ilon <= r.X1 && ilat >= r.Y0 && ilat <= r.Y1 {
		return r.ID, nil
	}
	return 0, nil
}

// Circle returns ID for every lattice point within Radius (in lattice
// units, compared by squared distance to avoid floats) of the center
// (CenterLat,CenterLon), and 0 elsewhere. Exists to give the builder a
// curved border, as opposed to the straight edges of the axis-aligned
// Rectangle oracle.
type Circle struct {
	CenterLat, CenterLon int64
	Radius               int64
	ID                   uint16
}

// At implements Oracle.
func (c Circle) At(ilat, ilon int64) (uint16, error) {
	dlat := ilat - c.CenterLat
	dlon := ilon - c.CenterLon
	if dlat*dlat+dlon*dlon <= c.Radius*c.Radius {
		return c.ID, nil
	}
	return 0, nil
}

// Composite layers several oracles, highest priority first: the first
// sub-oracle to report a nonzero id wins. It lets the CLI's `stats` command
// assemble a small synthetic "world" out of a few Rectangle/Circle oracles
// for benchmarking without a real shapefile-backed oracle.
type Composite struct {
	Layers []Oracle
}

// At implements Oracle.
func (c Composite) At(ilat, ilon int64) (uint16, error) {
	for _, layer := range c.Layers {
		id, err := layer.At(ilat, ilon)
		if err != nil {
			return 0, fmt.Errorf("composite: layer failed: %w", err)
		}
		if id != 0 {
			return id, nil
		}
	}
	return 0, nil
}
