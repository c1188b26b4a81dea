package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distquery/parallelizer/internal/planmodel"
)

func TestEncodeDecode_None_IsPassThrough(t *testing.T) {
	raw := []byte("fragment bytes")

	encoded, err := Encode(planmodel.CodecNone, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, encoded)

	decoded, err := Decode(planmodel.CodecNone, encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestEncodeDecode_Snappy_RoundTrips(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")

	encoded, err := Encode(planmodel.CodecSnappy, raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, encoded)

	decoded, err := Decode(planmodel.CodecSnappy, encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestEncode_UnknownCodec_Errors(t *testing.T) {
	_, err := Encode(planmodel.Codec(99), []byte("x"))
	assert.Error(t, err)
}

func TestDecode_UnknownCodec_Errors(t *testing.T) {
	_, err := Decode(planmodel.Codec(99), []byte("x"))
	assert.Error(t, err)
}
