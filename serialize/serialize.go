// Package serialize encodes and decodes a quadtree.Node into the compact
// preorder byte stream described by the stream header + node-tag contract:
// magic, version, precision, root rectangle, country table, then a preorder
// stream of tag/payload pairs. Each internal node's tag is followed by a
// one-byte presence mask (internal/quadbits) naming which of NW/NE/SW/SE
// follow; the decoder reads child presence from that mask and does not
// re-derive it from the rectangle split.
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sbma44/adm0-reverse/country"
	"github.com/sbma44/adm0-reverse/errs"
	"github.com/sbma44/adm0-reverse/internal/quadbits"
	"github.com/sbma44/adm0-reverse/quadtree"
	"github.com/sbma44/adm0-reverse/rect"
)

// Magic identifies the blob format; Version guards against incompatible
// layout changes. Decoders reject anything else.
const (
	Magic   uint32 = 0x41523054 // "AR0T"
	Version uint32 = 1
)

const (
	tagLeaf     = 0
	tagInternal = 1
)

// Encode writes the stream header (magic, version, precision, root
// rectangle, country table) followed by the preorder node stream for root.
func Encode(w *bytes.Buffer, precision int, root rect.Rect, table *country.Table, node *quadtree.Node) error {
	putUvarint(w, uint64(Magic))
	putUvarint(w, uint64(Version))
	putUvarint(w, uint64(precision))
	putUvarint(w, uint64(root.X0))
	putUvarint(w, uint64(root.Y0))
	putUvarint(w, uint64(root.X1))
	putUvarint(w, uint64(root.Y1))

	codes := table.Codes()
	putUvarint(w, uint64(len(codes)))
	for _, code := range codes {
		w.WriteString(code)
		w.WriteByte(0) // NUL terminator; codes are short ISO alpha-3 strings.
	}

	encodeNode(w, node)
	return nil
}

func encodeNode(w *bytes.Buffer, n *quadtree.Node) {
	if n.IsLeaf() {
		putUvarint(w, tagLeaf)
		putUvarint(w, uint64(n.CountryID()))
		return
	}
	putUvarint(w, tagInternal)
	var present [4]bool
	for i := 0; i < 4; i++ {
		_, present[i] = n.Child(rect.Children(i))
	}
	w.WriteByte(quadbits.FromPresent(present).Byte())
	for i := 0; i < 4; i++ {
		if !present[i] {
			continue
		}
		child, _ := n.Child(rect.Children(i))
		encodeNode(w, child)
	}
}

// Decode reads a stream header and the preorder node stream, returning the
// precision, root rectangle, country table, and reconstructed tree.
func Decode(blob []byte) (precision int, root rect.Rect, table *country.Table, node *quadtree.Node, err error) {
	r := &byteReader{buf: blob}

	magic, ok := r.uvarint()
	if !ok || uint32(magic) != Magic {
		return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: bad magic", errs.ErrDecode)
	}
	version, ok := r.uvarint()
	if !ok || uint32(version) != Version {
		return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: unsupported version %d", errs.ErrDecode, version)
	}
	p, ok := r.uvarint()
	if !ok {
		return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: truncated precision", errs.ErrDecode)
	}
	x0, ok1 := r.uvarint()
	y0, ok2 := r.uvarint()
	x1, ok3 := r.uvarint()
	y1, ok4 := r.uvarint()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: truncated root rectangle", errs.ErrDecode)
	}
	root = rect.New(int64(x0), int64(y0), int64(x1), int64(y1))

	count, ok := r.uvarint()
	if !ok {
		return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: truncated country table", errs.ErrDecode)
	}
	codes := make([]string, count)
	for i := range codes {
		code, ok := r.cstring()
		if !ok {
			return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: truncated country code %d", errs.ErrDecode, i)
		}
		codes[i] = code
	}
	table = country.NewTable(codes)

	node, err = decodeNode(r)
	if err != nil {
		return 0, rect.Rect{}, nil, nil, err
	}
	if r.err {
		return 0, rect.Rect{}, nil, nil, fmt.Errorf("%w: truncated node stream", errs.ErrDecode)
	}
	return int(p), root, table, node, nil
}

func decodeNode(r *byteReader) (*quadtree.Node, error) {
	tag, ok := r.uvarint()
	if !ok {
		return nil, fmt.Errorf("%w: truncated node tag", errs.ErrDecode)
	}
	switch tag {
	case tagLeaf:
		id, ok := r.uvarint()
		if !ok {
			return nil, fmt.Errorf("%w: truncated leaf id", errs.ErrDecode)
		}
		return quadtree.NewLeaf(uint16(id)), nil
	case tagInternal:
		maskByte, ok := r.byte()
		if !ok {
			return nil, fmt.Errorf("%w: truncated presence mask", errs.ErrDecode)
		}
		mask := quadbits.FromByte(maskByte)
		var children [4]*quadtree.Node
		var present [4]bool
		for i := 0; i < 4; i++ {
			if !mask.Has(i) {
				continue
			}
			present[i] = true
			child, err := decodeNode(r)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return quadtree.NewInternal(children, present), nil
	default:
		return nil, fmt.Errorf("%w: unknown node tag %d", errs.ErrDecode, tag)
	}
}

func putUvarint(w *bytes.Buffer, v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	w.Write(buf[:n])
}

// byteReader is a minimal forward-only cursor over a decode buffer; it
// tracks a sticky error flag rather than returning an error from every call,
// matching the teacher's CheckErr-once style of not threading an error
// return through every small helper.
type byteReader struct {
	buf []byte
	pos int
	err bool
}

func (r *byteReader) uvarint() (uint64, bool) {
	if r.err {
		return 0, false
	}
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		r.err = true
		return 0, false
	}
	r.pos += n
	return v, true
}

func (r *byteReader) byte() (byte, bool) {
	if r.err || r.pos >= len(r.buf) {
		r.err = true
		return 0, false
	}
	b := r.buf[r.pos]
	r.pos++
	return b, true
}

func (r *byteReader) cstring() (string, bool) {
	if r.err {
		return "", false
	}
	i := bytes.IndexByte(r.buf[r.pos:], 0)
	if i < 0 {
		r.err = true
		return "", false
	}
	s := string(r.buf[r.pos : r.pos+i])
	r.pos += i + 1
	return s, true
}
