package tstorage

import (
	"errors"
	"fmt"
)

// Client-side sentinel errors, matching the taxonomy's "values outside the
// INT8 range" band. These are distinct from ServerError, which carries a
// server-reported result code verbatim.
var (
	// ErrInvalidInput covers malformed calls detected before any I/O: keys
	// malformed outside of ErrInvalidKey's narrower case, the channel
	// already open on Connect, or already closed on an operation that
	// requires Connect first.
	ErrInvalidInput = errors.New("tstorage: invalid input")

	// ErrEmptyKeyRange is returned when [Min, Max) is empty.
	ErrEmptyKeyRange = errors.New("tstorage: empty key range")

	// ErrInvalidKey is returned when a key field is out of range, e.g. a
	// negative cid.
	ErrInvalidKey = errors.New("tstorage: invalid key")

	// ErrMemoryLimitExceeded is returned when the buffer budget is
	// insufficient for the next record or response segment.
	ErrMemoryLimitExceeded = errors.New("tstorage: memory limit exceeded")

	// ErrOutOfMemory is returned when a buffer allocation failed.
	ErrOutOfMemory = errors.New("tstorage: out of memory")

	// ErrReceive is returned on a short read, including peer FIN while
	// more data was expected.
	ErrReceive = errors.New("tstorage: receive failed")

	// ErrSend is returned on a send failure.
	ErrSend = errors.New("tstorage: send failed")

	// ErrUnexpected is returned on a protocol violation by the peer.
	ErrUnexpected = errors.New("tstorage: unexpected protocol state")

	// ErrPayloadTooLarge is returned when an encoder reports a size
	// greater than PayloadSizeMax.
	ErrPayloadTooLarge = errors.New("tstorage: payload too large")

	// ErrDeserializationError is returned when the user's Decode function
	// fails.
	ErrDeserializationError = errors.New("tstorage: deserialization failed")

	// ErrNotOpen is returned when a conversation operation is attempted on
	// a Closed channel.
	ErrNotOpen = errors.New("tstorage: channel not open")

	// ErrAlreadyOpen is returned when Connect is called on an already-Open
	// channel.
	ErrAlreadyOpen = errors.New("tstorage: channel already open")
)

// ServerError carries a verbatim TStorage server result code — a non-zero
// value in [INT8_MIN, INT8_MAX]. The channel is always closed after a
// ServerError is returned from a conversation operation.
type ServerError struct {
	Code int32
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("tstorage: server error %d", e.Code)
}

// errWrap wraps cause under sentinel so callers can classify the failure
// with errors.Is(err, sentinel) while retaining the underlying cause in
// the error chain.
func errWrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}
