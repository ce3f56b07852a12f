// Package quant implements the coordinate quantization contract: converting
// floating point <lat,lon> coordinates into integer lattice indices, and
// back. The lattice resolution is chosen at build time by a precision p.
package quant

import (
	"math"

	"github.com/sbma44/adm0-reverse/errs"
)

// Lattice describes the integer grid derived from a precision p.
// Q = 10^p, Xmax = 360*Q, Ymax = 180*Q. Indices run [0,Xmax] and [0,Ymax]
// inclusive on both ends.
type Lattice struct {
	P    int
	Q    int64
	Xmax int64
	Ymax int64
}

// NewLattice returns the Lattice for precision p.
func NewLattice(p int) Lattice {
	q := int64(1)
	for i := 0; i < p; i++ {
		q *= 10
	}
	return Lattice{P: p, Q: q, Xmax: 360 * q, Ymax: 180 * q}
}

// Quantize converts <lat,lon> to lattice indices <ilat,ilon>, clamping the
// input to the legal range first. Rounding is "round half away from zero",
// and must stay identical between the builder and the generated runtime
// (spec requirement).
func (l Lattice) Quantize(lat, lon float64) (ilat, ilon int64) {
	switch {
	case math.IsNaN(lat):
		lat = 0
	case math.IsInf(lat, 1):
		lat = 90
	case math.IsInf(lat, -1):
		lat = -90
	}
	switch {
	case math.IsNaN(lon):
		lon = 0
	case math.IsInf(lon, 1):
		lon = 180
	case math.IsInf(lon, -1):
		lon = -180
	}
	lat = clamp(lat, -90, 90)
	lon = clamp(lon, -180, 180)

	ilat = roundHalfAwayFromZero((lat + 90) * float64(l.Q))
	ilon = roundHalfAwayFromZero((lon + 180) * float64(l.Q))

	// Clamping again guards against float rounding pushing the result one
	// index past an endpoint (e.g. (90+90)*Q rounding up).
	if ilat < 0 {
		ilat = 0
	} else if ilat > l.Ymax {
		ilat = l.Ymax
	}
	if ilon < 0 {
		ilon = 0
	} else if ilon > l.Xmax {
		ilon = l.Xmax
	}
	return ilat, ilon
}

// QuantizeStrict is Quantize's builder-side counterpart: it rejects
// non-finite input with errs.ErrInvalidCoordinate instead of silently
// clamping NaN/Inf into a meaningless lattice point, per spec's
// InvalidCoordinate policy ("runtime: clamp; builder: reject").
func (l Lattice) QuantizeStrict(lat, lon float64) (ilat, ilon int64, err error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, errs.ErrInvalidCoordinate
	}
	ilat, ilon = l.Quantize(lat, lon)
	return ilat, ilon, nil
}

// ILatToLat returns the latitude of lattice row ilat. Useful for tests and
// for reconstructing a rectangle's corners as real-world coordinates.
func (l Lattice) ILatToLat(ilat int64) float64 {
	return float64(ilat)/float64(l.Q) - 90
}

// ILonToLon returns the longitude of lattice column ilon.
func (l Lattice) ILonToLon(ilon int64) float64 {
	return float64(ilon)/float64(l.Q) - 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfAwayFromZero rounds v to the nearest integer, with ties (x.5)
// rounding away from zero. All callers pass non-negative v (lat+90 and
// lon+180 are non-negative for legal coordinates), but the away-from-zero
// rule is spelled out for both signs since that's the contract spec.md
// pins down, not just the happy path.
func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}
