package tstorage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BytesAdapter is a PayloadAdapter[[]byte] that copies the payload
// verbatim, with no interpretation. Useful for opaque blobs and for the
// CSV loader, which carries hex-decoded bytes straight through.
type BytesAdapter struct{}

// Encode copies value into out if it fits and always returns len(value).
func (BytesAdapter) Encode(value []byte, out []byte) int {
	copy(out, value)
	return len(value)
}

// Decode copies in into a freshly allocated slice, since in is reused by
// the caller across records.
func (BytesAdapter) Decode(in []byte) ([]byte, error) {
	out := make([]byte, len(in))
	copy(out, in)
	return out, nil
}

// Float64Adapter is a PayloadAdapter[float64] encoding an IEEE-754 double
// as 8 little-endian bytes, matching the reference client's fixed-width
// numeric payload convention.
type Float64Adapter struct{}

// Float64PayloadSize is the fixed wire size of a Float64Adapter payload.
const Float64PayloadSize = 8

// Encode writes value's bit pattern into out if it fits and always returns
// Float64PayloadSize.
func (Float64Adapter) Encode(value float64, out []byte) int {
	if len(out) >= Float64PayloadSize {
		binary.LittleEndian.PutUint64(out, math.Float64bits(value))
	}
	return Float64PayloadSize
}

// Decode reads an IEEE-754 double from in, which must be at least
// Float64PayloadSize bytes.
func (Float64Adapter) Decode(in []byte) (float64, error) {
	if len(in) < Float64PayloadSize {
		return 0, fmt.Errorf("%w: float64 payload too short (%d bytes)", ErrDeserializationError, len(in))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(in)), nil
}
