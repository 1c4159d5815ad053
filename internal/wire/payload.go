package wire

import "math"

// PayloadSizeMax is the largest payload a record frame can carry:
// INT32_MAX minus the two-i32/three-i64 PUTA fixed-header size, matching
// the reference client's TSCLIENT_PAYLOAD_SIZE_MAX
// (2,147,483,647 − 32 = 2,147,483,615).
const PayloadSizeMax = math.MaxInt32 - 2*4 - 3*8

// PayloadAdapter is the user-supplied capability set for serializing and
// deserializing a payload of type T. Implementations are chosen by the
// caller and owned by the channel; Go generics stand in for the source's
// function-pointer / virtual-method polymorphism.
type PayloadAdapter[T any] interface {
	// Encode writes the serialized form of v into out if it fits, and
	// always returns the total number of bytes the full serialization
	// requires, even when out is too small to hold it. Two calls with the
	// same logical value must return the same size.
	Encode(v T, out []byte) int

	// Decode parses a payload. Failure aborts the current GET/stream and is
	// surfaced as DeserializationError to the caller.
	Decode(in []byte) (T, error)
}
