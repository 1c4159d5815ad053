// Package transport provides a blocking, connection-oriented TCP byte pipe
// with per-syscall send/recv timeouts, the lowest layer the protocol engine
// builds on.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/atendeindustries/tstorage-clients/internal/logging"
)

// DefaultTimeout is used until SetTimeout is called.
const DefaultTimeout = 30 * time.Second

// Transport wraps a TCP connection, applying the current timeout to every
// blocking call as both a Go-level deadline and, best-effort, a genuine
// SO_RCVTIMEO/SO_SNDTIMEO socket option.
type Transport struct {
	conn    *net.TCPConn
	timeout time.Duration
}

// New creates a Transport with the default timeout and no open connection.
func New() *Transport {
	return &Transport{timeout: DefaultTimeout}
}

// IsOpen reports whether the transport currently holds a live socket.
func (t *Transport) IsOpen() bool { return t.conn != nil }

// SetTimeout changes the per-syscall send/recv timeout. It takes effect on
// the next Open and on every subsequent blocking call; if a connection is
// already open, the socket option is reapplied immediately.
func (t *Transport) SetTimeout(d time.Duration) {
	t.timeout = d
	if t.conn != nil {
		if err := setSocketTimeout(t.conn, d); err != nil {
			logging.L().Debug("transport_setsockopt_timeout_failed", "error", err)
		}
	}
}

// Open resolves host and dials it on port, trying resolved addresses in
// turn (net.Dialer's default Happy-Eyeballs behavior) until one connects.
// ctx bounds the dial itself; the per-syscall timeout governs every
// subsequent Send/Recv call.
func (t *Transport) Open(ctx context.Context, host string, port int) error {
	if t.conn != nil {
		return errors.New("transport: already open")
	}
	d := net.Dialer{Timeout: t.timeout}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return classifyDialError(err)
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		_ = conn.Close()
		return ErrSocketError
	}
	if err := setSocketTimeout(tcpConn, t.timeout); err != nil {
		logging.L().Debug("transport_setsockopt_timeout_failed", "error", err)
	}
	t.conn = tcpConn
	return nil
}

// Close gracefully terminates both directions of the connection. It
// returns ErrNotConnected if the transport is already closed.
func (t *Transport) Close() error {
	if t.conn == nil {
		return ErrNotConnected
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return ErrSocketError
	}
	return nil
}

// Abort discards the socket without attempting a graceful shutdown,
// swallowing any close error; it is used on error paths where the
// connection state is already suspect.
func (t *Transport) Abort() {
	if t.conn == nil {
		return
	}
	_ = t.conn.Close()
	t.conn = nil
}

// SendAll writes every byte of data, returning ErrConnClosed, ErrConnReset,
// ErrConnTimeout, or ErrConnError on failure.
func (t *Transport) SendAll(data []byte) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	if err := t.conn.SetWriteDeadline(deadline(t.timeout)); err != nil {
		return ErrSocketError
	}
	_, err := t.conn.Write(data)
	if err != nil {
		return classifyIOError(err)
	}
	return nil
}

// RecvSome performs at most one read syscall into buf, returning n >= 1
// while the connection is healthy; n == 0 signals the peer sent FIN.
func (t *Transport) RecvSome(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, ErrNotConnected
	}
	if len(buf) == 0 {
		return 0, nil
	}
	if err := t.conn.SetReadDeadline(deadline(t.timeout)); err != nil {
		return 0, ErrSocketError
	}
	n, err := t.conn.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return n, classifyIOError(err)
	}
	return n, nil
}

// RecvAtLeast loops RecvSome until at least min bytes have been read or the
// peer sends FIN, in which case it returns the short count with a nil
// error so the caller can detect the short read itself.
func (t *Transport) RecvAtLeast(buf []byte, min int) (int, error) {
	n := 0
	for n < min {
		got, err := t.RecvSome(buf[n:])
		if err != nil {
			return n, err
		}
		if got == 0 {
			return n, nil
		}
		n += got
	}
	return n, nil
}

// SkipExactly drains and discards exactly n bytes, used to consume trailing
// payload from an already-classified error response.
func (t *Transport) SkipExactly(n int) error {
	scratch := make([]byte, minInt(n, 4096))
	remaining := n
	for remaining > 0 {
		chunk := scratch
		if remaining < len(chunk) {
			chunk = chunk[:remaining]
		}
		got, err := t.RecvAtLeast(chunk, len(chunk))
		if err != nil {
			return err
		}
		if got < len(chunk) {
			return ErrConnClosed
		}
		remaining -= got
	}
	return nil
}

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func classifyDialError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrConnTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrBadAddress
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, net.ErrClosed) {
		return ErrConnError
	}
	return ErrConnRefused
}

func classifyIOError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrConnTimeout
	}
	if errors.Is(err, io.EOF) {
		return ErrConnClosed
	}
	return ErrConnError
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
