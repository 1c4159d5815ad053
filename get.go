package tstorage

import (
	"context"
	"errors"

	"github.com/atendeindustries/tstorage-clients/internal/metrics"
	"github.com/atendeindustries/tstorage-clients/internal/stream"
	"github.com/atendeindustries/tstorage-clients/internal/wire"
)

// validateRange checks kr against the key contract without touching the
// socket, translating the wire package's sentinels into the public ones.
func validateRange(kr KeyRange) error {
	switch err := kr.Validate(); {
	case err == nil:
		return nil
	case errors.Is(err, wire.ErrInvalidKey):
		return ErrInvalidKey
	case errors.Is(err, wire.ErrEmptyKeyRange):
		return ErrEmptyKeyRange
	default:
		return err
	}
}

// writeRangeRequest validates kr, writes the request header and the two
// keys, and flushes. It returns without touching the socket if validation
// fails, leaving the channel Open.
func (c *Channel[T]) writeRangeRequest(cmd int32, kr KeyRange) error {
	if !c.open {
		c.reportClientError(metrics.ErrLabelInvalidInput)
		return ErrNotOpen
	}
	if err := validateRange(kr); err != nil {
		switch err {
		case ErrInvalidKey:
			c.reportClientError(metrics.ErrLabelInvalidKey)
		case ErrEmptyKeyRange:
			c.reportClientError(metrics.ErrLabelEmptyKeyRange)
		}
		return err
	}
	var body [2 * wire.KeySize]byte
	wire.WriteKeyRange(body[:], kr)
	hdr := wire.WriteRequestHeader(cmd, uint64(len(body)))
	if err := c.stageBytes(hdr[:]); err != nil {
		c.abort()
		return c.classifyWriteErr(err)
	}
	if err := c.stageBytes(body[:]); err != nil {
		c.abort()
		return c.classifyWriteErr(err)
	}
	if err := c.ost.Flush(); err != nil {
		c.abort()
		return c.classifyWriteErr(err)
	}
	return nil
}

// GetAcq issues a GETACQ request over kr and returns the server's
// confirmation acquisition timestamp.
func (c *Channel[T]) GetAcq(ctx context.Context, kr KeyRange) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.writeRangeRequest(wire.CmdGetAcq, kr); err != nil {
		return 0, err
	}
	result, size, err := c.readResponseHeader()
	if err != nil {
		c.abort()
		return 0, err
	}
	if result != 0 {
		c.drainAndAbort(size)
		c.reportServerError(result)
		return 0, &ServerError{Code: result}
	}
	body, err := c.ist.Reserve(8)
	if err != nil {
		c.abort()
		return 0, c.classifyReadErr(err)
	}
	acq := wire.GetInt64(body[0:8])
	c.ist.Confirm()
	c.reportBufferMetrics()
	return acq, nil
}

// Get issues a GET request over kr and eagerly collects every record into
// a RecordsSet. A record whose payload the adapter fails to decode aborts
// the stream and returns the records accumulated so far alongside
// DeserializationError.
func (c *Channel[T]) Get(ctx context.Context, kr KeyRange) (RecordsSet[T], int64, error) {
	var out RecordsSet[T]
	acq, err := c.getStream(ctx, kr, func(batch RecordsSet[T]) error {
		out = append(out, batch...)
		return nil
	})
	return out, acq, err
}

// GetStream issues a GET request over kr and delivers records to onBatch in
// one or more calls, bounding peak memory to roughly one batch's worth of
// records instead of the whole result set. Each record is delivered exactly
// once across the sequence of calls. If onBatch returns an error, the
// channel is aborted and that error is returned verbatim.
func (c *Channel[T]) GetStream(ctx context.Context, kr KeyRange, onBatch func(RecordsSet[T]) error) (int64, error) {
	return c.getStream(ctx, kr, onBatch)
}

func (c *Channel[T]) getStream(ctx context.Context, kr KeyRange, onBatch func(RecordsSet[T]) error) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.writeRangeRequest(wire.CmdGet, kr); err != nil {
		return 0, err
	}

	result, size, err := c.readResponseHeader()
	if err != nil {
		c.abort()
		return 0, err
	}
	if result != 0 {
		c.drainAndAbort(size)
		c.reportServerError(result)
		return 0, &ServerError{Code: result}
	}

	var batch RecordsSet[T]

	// deliver hands the accumulated batch to onBatch exactly once and
	// clears the accumulator; callers still own confirming the input
	// stream afterward to actually release the buffer space.
	deliver := func() error {
		if len(batch) == 0 {
			return nil
		}
		b := batch
		batch = nil
		if err := onBatch(b); err != nil {
			return err
		}
		if c.cfg.metrics {
			metrics.IncStreamCallbacks()
			metrics.AddRecordsGot(len(b))
		}
		return nil
	}

	// reserveOrDeliver reserves size bytes from the input stream. If the
	// reservation hits the memory limit, it delivers and confirms the
	// accumulated batch to free buffer space and retries once; a second
	// failure means the single record itself exceeds the limit.
	reserveOrDeliver := func(size int) ([]byte, error) {
		b, err := c.ist.Reserve(size)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, stream.ErrLimit) {
			return nil, err
		}
		if derr := deliver(); derr != nil {
			return nil, derr
		}
		c.ist.Confirm()
		b, err = c.ist.Reserve(size)
		if err != nil {
			return nil, ErrMemoryLimitExceeded
		}
		return b, nil
	}

	fail := func(err error) (int64, error) {
		_ = deliver()
		c.abort()
		return 0, err
	}

	for {
		hdr, err := reserveOrDeliver(wire.RecordStreamHeaderSize)
		if err != nil {
			return fail(c.classifyStreamErr(err))
		}
		recSize, key := wire.ReadRecordStreamHeader(hdr)
		if recSize == wire.RecordStreamEnd {
			c.ist.Confirm()
			break
		}
		payloadLen := int(recSize) - wire.KeySize
		if payloadLen < 0 {
			c.reportClientError(metrics.ErrLabelUnexpected)
			return fail(ErrUnexpected)
		}
		payload, err := reserveOrDeliver(payloadLen)
		if err != nil {
			return fail(c.classifyStreamErr(err))
		}
		value, decErr := c.adapter.Decode(payload)
		if decErr != nil {
			c.reportClientError(metrics.ErrLabelDeserializationError)
			return fail(errWrap(ErrDeserializationError, decErr))
		}
		batch = append(batch, Record[T]{Key: key, Payload: value})
	}

	if derr := deliver(); derr != nil {
		c.abort()
		return 0, derr
	}
	c.ist.Confirm()

	tailResult, tailSize, err := c.readResponseHeader()
	if err != nil {
		c.abort()
		return 0, err
	}
	if tailResult != 0 {
		c.drainAndAbort(tailSize)
		c.reportServerError(tailResult)
		return 0, &ServerError{Code: tailResult}
	}
	tail, err := c.ist.Reserve(8)
	if err != nil {
		c.abort()
		return 0, c.classifyReadErr(err)
	}
	acq := wire.GetInt64(tail[0:8])
	c.ist.Confirm()
	if c.cfg.metrics {
		metrics.IncBatchesEmitted()
	}
	c.reportBufferMetrics()
	return acq, nil
}

// classifyStreamErr maps an error from reserveOrDeliver — either a stream
// sentinel, a user onBatch error, or ErrMemoryLimitExceeded already
// substituted above — into the public taxonomy. onBatch errors and
// ErrMemoryLimitExceeded pass through unchanged.
func (c *Channel[T]) classifyStreamErr(err error) error {
	if errors.Is(err, ErrMemoryLimitExceeded) {
		c.reportClientError(metrics.ErrLabelMemoryLimitExceeded)
		return err
	}
	return c.classifyReadErr(err)
}
