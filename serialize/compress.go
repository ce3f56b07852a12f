package serialize

// Compressor is an opaque post-processing seam for the serialized blob
// (spec.md keeps compression external to the core). NopCompressor is the
// default: the stream layout of Encode/Decode is unaffected either way, since
// the decoder always operates on a decompressed, contiguous buffer.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

// NopCompressor passes bytes through unchanged.
type NopCompressor struct{}

func (NopCompressor) Compress(b []byte) ([]byte, error)   { return b, nil }
func (NopCompressor) Decompress(b []byte) ([]byte, error) { return b, nil }
