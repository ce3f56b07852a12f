// Package quadbits encodes which of a quadtree internal node's four logical
// children (NW, NE, SW, SE, in that fixed order) are physically present in
// the serialized stream. Degenerate-axis rectangles (rect.Rect.Split)
// always produce exactly two children; full rectangles produce four.
//
// Grounded on gaissmai-bart's internal/bitset package and its use of
// github.com/bits-and-blooms/bitset for small, statically-bounded presence
// bitmaps (there: strides of 256/512; here: 4 children). A universe of 4
// doesn't need that package's growable backing array, but using the same
// type keeps the encoder/decoder's bit-twiddling vocabulary (Set/Test/
// Count) consistent with the rest of the pack rather than hand-rolling a
// second, bespoke 4-bit mask type next to it.
package quadbits

import "github.com/bits-and-blooms/bitset"

// Mask packs the four presence flags (order: NW=0, NE=1, SW=2, SE=3) into a
// single byte for the wire format. It is backed by a *bitset.BitSet, which
// callers query through Has and Count.
type Mask struct {
	bits *bitset.BitSet
}

// FromPresent builds a Mask from the [4]bool produced by rect.Rect.Split.
func FromPresent(present [4]bool) Mask {
	b := bitset.New(4)
	for i, p := range present {
		if p {
			b.Set(uint(i))
		}
	}
	return Mask{bits: b}
}

// FromByte reconstructs a Mask from its single-byte wire encoding.
func FromByte(b byte) Mask {
	bs := bitset.New(4)
	for i := uint(0); i < 4; i++ {
		if b&(1<<i) != 0 {
			bs.Set(i)
		}
	}
	return Mask{bits: bs}
}

// Byte returns the single-byte wire encoding of m.
func (m Mask) Byte() byte {
	var b byte
	for i := uint(0); i < 4; i++ {
		if m.bits.Test(i) {
			b |= 1 << i
		}
	}
	return b
}

// Has reports whether child index i (NW=0, NE=1, SW=2, SE=3) is present.
func (m Mask) Has(i int) bool {
	return m.bits.Test(uint(i))
}

// Count returns how many of the four children are present (2 or 4 for any
// mask produced by FromPresent on a non-point rectangle).
func (m Mask) Count() int {
	return int(m.bits.Count())
}
