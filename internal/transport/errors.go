package transport

import "errors"

// Sentinel errors returned by Transport operations, matching the client
// contract's transport-level fault set.
var (
	ErrBadAddress   = errors.New("transport: address resolution failed")
	ErrConnRefused  = errors.New("transport: connection refused")
	ErrConnTimeout  = errors.New("transport: timed out")
	ErrConnError    = errors.New("transport: connect error")
	ErrSocketError  = errors.New("transport: socket error")
	ErrSetOptError  = errors.New("transport: setsockopt error")
	ErrSignal       = errors.New("transport: interrupted")
	ErrNotConnected = errors.New("transport: not connected")
	ErrConnClosed   = errors.New("transport: connection closed by peer")
	ErrConnReset    = errors.New("transport: connection reset")
)
