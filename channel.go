// Package tstorage implements the TStorage time-series database client:
// a single-threaded, synchronous protocol engine that connects to one
// TStorage connector over TCP and exchanges PUT, PUTA, GET, and GETACQ
// requests.
package tstorage

import (
	"context"
	"log/slog"
	"time"

	"github.com/atendeindustries/tstorage-clients/internal/buffer"
	"github.com/atendeindustries/tstorage-clients/internal/logging"
	"github.com/atendeindustries/tstorage-clients/internal/metrics"
	"github.com/atendeindustries/tstorage-clients/internal/stream"
	"github.com/atendeindustries/tstorage-clients/internal/transport"
	"github.com/atendeindustries/tstorage-clients/internal/wire"
)

// Key is the five-field composite primary key of a TStorage record.
type Key = wire.Key

// KeyRange is a right-open interval [Min, Max) over the key space.
type KeyRange = wire.KeyRange

// CMin and CMax bound the full key space; a GET over [CMin, CMax) is a
// full-range scan.
var (
	CMin = wire.CMin
	CMax = wire.CMax
)

// PayloadSizeMax is the largest payload a single record may carry.
const PayloadSizeMax = wire.PayloadSizeMax

// PayloadAdapter is the user-supplied capability set for serializing and
// deserializing a payload of type T.
type PayloadAdapter[T any] = wire.PayloadAdapter[T]

// Record pairs a Key with a decoded payload of type T.
type Record[T any] struct {
	Key     Key
	Payload T
}

// RecordsSet is an ordered sequence of records; insertion order is
// preserved and zero-length sets are legal.
type RecordsSet[T any] []Record[T]

// Channel is the TStorage protocol engine: it owns a socket, a bounded
// buffer, and a user payload adapter, and mediates one PUT/PUTA/GET/GETACQ
// conversation at a time. A Channel is not safe for concurrent use.
type Channel[T any] struct {
	host    string
	port    int
	adapter PayloadAdapter[T]
	cfg     channelConfig
	logger  *slog.Logger

	tr  *transport.Transport
	buf *buffer.BoundedBuffer
	ost *stream.BufferedOStream
	ist *stream.BufferedIStream

	open bool
}

// NewChannel creates a Channel bound to host:port using adapter to
// serialize and deserialize payloads of type T. The channel starts Closed;
// call Connect before any PUT/PUTA/GET/GETACQ operation.
func NewChannel[T any](host string, port int, adapter PayloadAdapter[T], opts ...ChannelOption) *Channel[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = logging.L()
	}
	return &Channel[T]{
		host:    host,
		port:    port,
		adapter: adapter,
		cfg:     cfg,
		logger:  logger,
	}
}

// IsOpen reports whether the channel currently holds a live connection.
func (c *Channel[T]) IsOpen() bool { return c.open }

// SetTimeout changes the per-syscall send/recv timeout used by every
// subsequent blocking call. Takes effect immediately if the channel is
// already connected.
func (c *Channel[T]) SetTimeout(d time.Duration) {
	c.cfg.timeout = d
	if c.tr != nil {
		c.tr.SetTimeout(d)
	}
}

// SetMemoryLimit changes the memory limit applied by the next Connect. It
// has no effect on a buffer already allocated by a prior Connect; Close
// and Connect again to apply a new limit to an open channel.
func (c *Channel[T]) SetMemoryLimit(n int) {
	c.cfg.memoryLimit = n
}

// Connect allocates the buffer at the configured memory limit and opens
// the transport. Calling Connect on an already-Open channel is an
// ErrAlreadyOpen input error.
func (c *Channel[T]) Connect(ctx context.Context) error {
	if c.open {
		c.reportClientError(metrics.ErrLabelInvalidInput)
		return ErrAlreadyOpen
	}
	c.buf = buffer.New(c.cfg.memoryLimit)
	c.tr = transport.New()
	c.tr.SetTimeout(c.cfg.timeout)
	c.ost = stream.NewBufferedOStream(c.buf, &countingSender{tr: c.tr, metricsOn: c.cfg.metrics})
	c.ist = stream.NewBufferedIStream(c.buf, &countingReceiver{tr: c.tr, metricsOn: c.cfg.metrics})

	if err := c.tr.Open(ctx, c.host, c.port); err != nil {
		c.buf.Release()
		c.buf = nil
		c.logger.Warn(logging.EventConnectFailed, "host", c.host, "port", c.port, "error", err, "kind", logging.EventTransportError)
		c.reportClientError(metrics.ErrLabelTransport)
		return err
	}
	c.open = true
	c.logger.Info(logging.EventConnect, "host", c.host, "port", c.port)
	if c.cfg.metrics {
		metrics.IncConnects()
	}
	return nil
}

// Close shuts the transport and deallocates the buffer. It is safe to call
// on an already-Closed channel.
func (c *Channel[T]) Close() error {
	if !c.open {
		return nil
	}
	err := c.tr.Close()
	c.buf.Release()
	c.buf = nil
	c.open = false
	c.logger.Info(logging.EventClose, "host", c.host, "port", c.port)
	return err
}

// abort discards the socket and buffer without a graceful shutdown,
// marking the channel Closed. It is called after any non-Ok result from a
// conversation operation.
func (c *Channel[T]) abort() {
	if c.tr != nil {
		c.tr.Abort()
	}
	if c.buf != nil {
		c.buf.Release()
	}
	c.open = false
	c.logger.Warn(logging.EventAbort, "host", c.host, "port", c.port)
}

// reportBufferMetrics publishes the current buffer capacity and memory
// limit headroom gauges, if metrics are enabled for this channel.
func (c *Channel[T]) reportBufferMetrics() {
	if !c.cfg.metrics || c.buf == nil {
		return
	}
	metrics.SetBufferCapacity(c.buf.Capacity())
	metrics.SetMemoryLimitHeadroom(c.cfg.memoryLimit - c.buf.Capacity())
}

// reportClientError increments the client-error counter under label, if
// metrics are enabled for this channel.
func (c *Channel[T]) reportClientError(label string) {
	if c.cfg.metrics {
		metrics.IncClientError(label)
	}
}

// reportServerError logs and increments the server-error counter for a
// verbatim TStorage result code.
func (c *Channel[T]) reportServerError(code int32) {
	c.logger.Warn(logging.EventServerError, "host", c.host, "port", c.port, "code", code)
	if c.cfg.metrics {
		metrics.IncServerError(code)
	}
}

// countingSender wraps a Transport as a stream.Sender, mirroring bytes
// sent into the metrics package.
type countingSender struct {
	tr        *transport.Transport
	metricsOn bool
}

func (s *countingSender) SendAll(data []byte) error {
	err := s.tr.SendAll(data)
	if s.metricsOn {
		metrics.AddBytesSent(len(data))
	}
	return err
}

// countingReceiver wraps a Transport as a stream.Receiver, mirroring bytes
// received into the metrics package.
type countingReceiver struct {
	tr        *transport.Transport
	metricsOn bool
}

func (r *countingReceiver) RecvAtLeast(buf []byte, min int) (int, error) {
	n, err := r.tr.RecvAtLeast(buf, min)
	if r.metricsOn {
		metrics.AddBytesReceived(n)
	}
	return n, err
}
