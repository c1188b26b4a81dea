// Package codec implements the wire compression applied to a PlanFragment's
// fragmentBytes and optionsBytes (spec 3, 6): NONE (pass-through) or
// SNAPPY, selected per query by parallelizer.Params.FragmentCodec.
package codec

import (
	"fmt"

	"github.com/klauspost/compress/snappy"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// Encode compresses raw under codec, returning the bytes to embed in a
// PlanFragment.
func Encode(codec planmodel.Codec, raw []byte) ([]byte, error) {
	switch codec {
	case planmodel.CodecNone:
		return raw, nil
	case planmodel.CodecSnappy:
		return snappy.Encode(nil, raw), nil
	default:
		return nil, fmt.Errorf("codec: unknown codec tag %d", codec)
	}
}

// Decode reverses Encode, given the codec tag carried alongside the bytes.
func Decode(codec planmodel.Codec, encoded []byte) ([]byte, error) {
	switch codec {
	case planmodel.CodecNone:
		return encoded, nil
	case planmodel.CodecSnappy:
		return snappy.Decode(nil, encoded)
	default:
		return nil, fmt.Errorf("codec: unknown codec tag %d", codec)
	}
}
