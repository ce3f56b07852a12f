// Package runtime implements the lookup traversal (spec §4.5) against an
// already-decoded stream: clamp/quantize the query coordinate, then walk the
// preorder node stream one tag at a time, skipping sibling subtrees by
// recursive descent rather than a precomputed byte-length index.
//
// This package has no dependency on oracle, logger, or the CLI: Codegen
// copies its text verbatim into the generated artifact so the builder's test
// harness and the emitted header execute the identical routine (property 7).
package runtime

import (
	"encoding/binary"
	"math"
)

const (
	magic   uint32 = 0x41523054
	version uint32 = 1

	tagLeaf     = 0
	tagInternal = 1
)

// Header describes the decoded stream header: precision and root rectangle
// needed to reproduce the subdivision geometry, plus the country code table.
type Header struct {
	Precision      int
	Q              int64
	X0, Y0, X1, Y1 int64
	Codes          []string
}

// ParseHeader reads the magic/version/precision/root-rect/country-table
// prefix of blob and returns the header plus the byte offset where the
// preorder node stream begins.
func ParseHeader(blob []byte) (Header, int, error) {
	pos := 0
	readUvarint := func() (uint64, error) {
		v, n := binary.Uvarint(blob[pos:])
		if n <= 0 {
			return 0, errDecode("truncated varint")
		}
		pos += n
		return v, nil
	}

	m, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	if uint32(m) != magic {
		return Header{}, 0, errDecode("bad magic")
	}
	v, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	if uint32(v) != version {
		return Header{}, 0, errDecode("unsupported version")
	}
	p, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	x0, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	y0, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	x1, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	y1, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	count, err := readUvarint()
	if err != nil {
		return Header{}, 0, err
	}
	codes := make([]string, count)
	for i := range codes {
		end := pos
		for end < len(blob) && blob[end] != 0 {
			end++
		}
		if end >= len(blob) {
			return Header{}, 0, errDecode("truncated country code")
		}
		codes[i] = string(blob[pos:end])
		pos = end + 1
	}

	q := int64(1)
	for i := uint64(0); i < p; i++ {
		q *= 10
	}

	return Header{
		Precision: int(p),
		Q:         q,
		X0:        int64(x0), Y0: int64(y0), X1: int64(x1), Y1: int64(y1),
		Codes: codes,
	}, pos, nil
}

// Quantize converts <lat,lon> into lattice indices, clamping out-of-range
// input and rounding ties away from zero (spec §4.1, identical rule on both
// sides of the builder/runtime boundary).
func Quantize(lat, lon float64, q int64) (ilat, ilon int64) {
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

	ilat = roundHalfAwayFromZero((lat + 90) * float64(q))
	ilon = roundHalfAwayFromZero((lon + 180) * float64(q))

	ymax := 180 * q
	xmax := 360 * q
	if ilat < 0 {
		ilat = 0
	} else if ilat > ymax {
		ilat = ymax
	}
	if ilon < 0 {
		ilon = 0
	} else if ilon > xmax {
		ilon = xmax
	}
	return ilat, ilon
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

func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}

// Lookup walks blob's node stream for the lattice point (ilat,ilon),
// returning the leaf country id it resolves to. body is the byte offset
// ParseHeader returned.
func Lookup(blob []byte, body int, hdr Header, ilat, ilon int64) (uint16, error) {
	id, _, err := lookup(blob, body, hdr.X0, hdr.Y0, hdr.X1, hdr.Y1, ilat, ilon)
	return id, err
}

// lookup returns the resolved id and the number of bytes consumed from
// blob[pos:], so callers (and this function, recursively) can skip sibling
// subtrees without a precomputed length index.
func lookup(blob []byte, pos int, x0, y0, x1, y1, ilat, ilon int64) (uint16, int, error) {
	start := pos
	tag, n := binary.Uvarint(blob[pos:])
	if n <= 0 {
		return 0, 0, errDecode("truncated node tag")
	}
	pos += n

	switch tag {
	case tagLeaf:
		id, n := binary.Uvarint(blob[pos:])
		if n <= 0 {
			return 0, 0, errDecode("truncated leaf id")
		}
		pos += n
		return uint16(id), pos - start, nil

	case tagInternal:
		if pos >= len(blob) {
			return 0, 0, errDecode("truncated presence mask")
		}
		mask := blob[pos]
		pos++

		xm := (x0 + x1) / 2
		ym := (y0 + y1) / 2

		// child order: NW=0, NE=1, SW=2, SE=3 (present bits in that order).
		type bounds struct{ x0, y0, x1, y1 int64 }
		childBounds := [4]bounds{
			{x0, ym + 1, xm, y1},     // NW
			{xm + 1, ym + 1, x1, y1}, // NE
			{x0, y0, xm, ym},         // SW
			{xm + 1, y0, x1, ym},     // SE
		}

		// Tie rule: xm belongs to the west column, ym belongs to the south
		// row.
		west := ilon <= xm
		south := ilat <= ym
		var want int
		switch {
		case !south && west:
			want = 0 // NW
		case !south && !west:
			want = 1 // NE
		case south && west:
			want = 2 // SW
		default:
			want = 3 // SE
		}

		for i := 0; i < 4; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			if i == want {
				id, consumed, err := lookup(blob, pos, childBounds[i].x0, childBounds[i].y0, childBounds[i].x1, childBounds[i].y1, ilat, ilon)
				if err != nil {
					return 0, 0, err
				}
				pos += consumed
				return id, pos - start, nil
			}
			consumed, err := skip(blob, pos)
			if err != nil {
				return 0, 0, err
			}
			pos += consumed
		}
		return 0, 0, errDecode("no child covers the query point")

	default:
		return 0, 0, errDecode("unknown node tag")
	}
}

// skip consumes one subtree starting at blob[pos:] without decoding it,
// returning the number of bytes consumed.
func skip(blob []byte, pos int) (int, error) {
	start := pos
	tag, n := binary.Uvarint(blob[pos:])
	if n <= 0 {
		return 0, errDecode("truncated node tag")
	}
	pos += n
	switch tag {
	case tagLeaf:
		_, n := binary.Uvarint(blob[pos:])
		if n <= 0 {
			return 0, errDecode("truncated leaf id")
		}
		pos += n
	case tagInternal:
		if pos >= len(blob) {
			return 0, errDecode("truncated presence mask")
		}
		mask := blob[pos]
		pos++
		for i := 0; i < 4; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			consumed, err := skip(blob, pos)
			if err != nil {
				return 0, err
			}
			pos += consumed
		}
	default:
		return 0, errDecode("unknown node tag")
	}
	return pos - start, nil
}

type decodeError string

func (e decodeError) Error() string { return "decode error: " + string(e) }

func errDecode(msg string) error { return decodeError(msg) }
