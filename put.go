package tstorage

import (
	"context"
	"errors"

	"github.com/atendeindustries/tstorage-clients/internal/metrics"
	"github.com/atendeindustries/tstorage-clients/internal/stream"
	"github.com/atendeindustries/tstorage-clients/internal/wire"
)

// defaultPayloadGuess is the first buffer size offered to Encode for a
// record whose serialized size isn't yet known; records that encode
// larger than this pay one extra reserve-and-retry.
const defaultPayloadGuess = 128

// openPutBatch tracks the CID-grouped batch currently being written: the
// offset of its batch_size field (to back-patch at close time) and the
// running total of record-frame bytes it contains.
type openPutBatch struct {
	cid     int32
	sizeOff int
	size    int32
}

// Put sends records as a PUTSAFE request and returns the server-assigned
// acquisition timestamp range. The Key.Acq field of each record is ignored;
// the server assigns it.
func (c *Channel[T]) Put(ctx context.Context, records RecordsSet[T]) (acqMin, acqMax int64, err error) {
	return c.commonPut(ctx, wire.CmdPutSafe, wire.PutRecordFixedSize, false, records)
}

// Puta sends records as a PUTASAFE request, carrying each record's
// Key.Acq verbatim, and returns the server-assigned acquisition timestamp
// range (which echoes the supplied values on success).
func (c *Channel[T]) Puta(ctx context.Context, records RecordsSet[T]) (acqMin, acqMax int64, err error) {
	return c.commonPut(ctx, wire.CmdPutA, wire.PutaRecordFixedSize, true, records)
}

func (c *Channel[T]) commonPut(ctx context.Context, cmd int32, fixedSize int, withAcq bool, records RecordsSet[T]) (acqMin, acqMax int64, err error) {
	if !c.open {
		c.reportClientError(metrics.ErrLabelInvalidInput)
		return 0, 0, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	reqHeader := wire.WriteRequestHeader(cmd, 0)
	if err := c.stageBytes(reqHeader[:]); err != nil {
		c.abort()
		return 0, 0, c.classifyWriteErr(err)
	}

	var batch *openPutBatch

	openBatch := func(cid int32) error {
		frame, err := c.ost.Reserve(8)
		if err != nil {
			return err
		}
		off := c.ost.Offset()
		wire.PutInt32(frame[0:4], cid)
		wire.PutInt32(frame[4:8], 0)
		c.ost.Confirm(8)
		batch = &openPutBatch{cid: cid, sizeOff: off + 4}
		return nil
	}

	closeBatch := func() {
		if batch == nil {
			return
		}
		var sizeBytes [4]byte
		wire.PutInt32(sizeBytes[:], batch.size)
		c.ost.PatchAt(batch.sizeOff, sizeBytes[:])
		batch = nil
	}

	// flushAndReopen closes the in-flight batch (if any), flushes it
	// through the Transport, and reopens an empty batch for the same cid
	// so the caller can retry a reservation that didn't fit.
	flushAndReopen := func() error {
		var cid int32
		reopen := batch != nil
		if reopen {
			cid = batch.cid
		}
		closeBatch()
		if err := c.ost.Flush(); err != nil {
			return err
		}
		if reopen {
			return openBatch(cid)
		}
		return nil
	}

	reserveFrame := func(total int) ([]byte, error) {
		frame, err := c.ost.Reserve(total)
		if err == nil {
			return frame, nil
		}
		if !errors.Is(err, stream.ErrLimit) {
			return nil, err
		}
		if ferr := flushAndReopen(); ferr != nil {
			return nil, ferr
		}
		frame, err = c.ost.Reserve(total)
		if err != nil {
			return nil, ErrMemoryLimitExceeded
		}
		return frame, nil
	}

	headerLen := 4 + fixedSize
	guess := defaultPayloadGuess

	for _, rec := range records {
		if batch == nil {
			if err := openBatch(rec.Key.CID); err != nil {
				c.abort()
				return 0, 0, c.classifyWriteErr(err)
			}
		} else if batch.cid != rec.Key.CID {
			closeBatch()
			if err := openBatch(rec.Key.CID); err != nil {
				c.abort()
				return 0, 0, c.classifyWriteErr(err)
			}
		}

		frame, err := reserveFrame(headerLen + guess)
		if err != nil {
			c.abort()
			return 0, 0, c.classifyWriteErr(err)
		}
		n := c.adapter.Encode(rec.Payload, frame[headerLen:])
		if n > PayloadSizeMax {
			closeBatch()
			_ = c.ost.Flush()
			c.abort()
			c.reportClientError(metrics.ErrLabelPayloadTooLarge)
			return 0, 0, ErrPayloadTooLarge
		}
		if n > len(frame)-headerLen {
			frame, err = reserveFrame(headerLen + n)
			if err != nil {
				c.abort()
				return 0, 0, c.classifyWriteErr(err)
			}
			c.adapter.Encode(rec.Payload, frame[headerLen:])
		}
		guess = n

		wire.PutInt32(frame[0:4], int32(fixedSize+n))
		wire.PutInt64(frame[4:12], rec.Key.MID)
		wire.PutInt32(frame[12:16], rec.Key.MOID)
		wire.PutInt64(frame[16:24], rec.Key.Cap)
		if withAcq {
			wire.PutInt64(frame[24:32], rec.Key.Acq)
		}
		total := headerLen + n
		c.ost.Confirm(total)
		batch.size += int32(total)
	}

	closeBatch()

	sentinel, err := reserveFrame(4)
	if err != nil {
		c.abort()
		return 0, 0, c.classifyWriteErr(err)
	}
	wire.PutInt32(sentinel[0:4], wire.BatchSentinel)
	c.ost.Confirm(4)

	if err := c.ost.Flush(); err != nil {
		c.abort()
		return 0, 0, c.classifyWriteErr(err)
	}
	if c.cfg.metrics {
		metrics.AddRecordsPut(len(records))
	}

	result, size, err := c.readResponseHeader()
	if err != nil {
		c.abort()
		return 0, 0, err
	}
	if result != 0 {
		c.drainAndAbort(size)
		c.reportServerError(result)
		return 0, 0, &ServerError{Code: result}
	}

	body, err := c.ist.Reserve(16)
	if err != nil {
		c.abort()
		return 0, 0, c.classifyReadErr(err)
	}
	acqMin = wire.GetInt64(body[0:8])
	acqMax = wire.GetInt64(body[8:16])
	c.ist.Confirm()
	c.reportBufferMetrics()
	return acqMin, acqMax, nil
}

// stageBytes reserves exactly len(data) bytes in the output stream,
// flushing and retrying once if necessary, copies data in, and confirms
// it without flushing.
func (c *Channel[T]) stageBytes(data []byte) error {
	buf, err := c.ost.ReserveFlushing(len(data))
	if err != nil {
		return err
	}
	copy(buf, data)
	c.ost.Confirm(len(data))
	return nil
}

// readResponseHeader reserves and parses the 12-byte result||size header
// common to every command's response.
func (c *Channel[T]) readResponseHeader() (result int32, size uint64, err error) {
	hdr, err := c.ist.Reserve(wire.HeaderSize)
	if err != nil {
		return 0, 0, c.classifyReadErr(err)
	}
	result, size, err = wire.ReadResponseHeader(hdr)
	if err != nil {
		c.reportClientError(metrics.ErrLabelUnexpected)
		return 0, 0, ErrUnexpected
	}
	c.ist.Confirm()
	return result, size, nil
}

// drainAndAbort best-effort drains a non-zero-result response's trailing
// payload (so the caller's fault is fully classified) and aborts the
// channel; draining failures are ignored since the channel is being torn
// down regardless.
func (c *Channel[T]) drainAndAbort(size uint64) {
	if size > 0 {
		if _, err := c.ist.Reserve(int(size)); err == nil {
			c.ist.Confirm()
		}
	}
	c.abort()
}

// classifyWriteErr maps an error surfaced by the output stream or
// Transport into the package's client-side error taxonomy.
func (c *Channel[T]) classifyWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stream.ErrLimit):
		c.reportClientError(metrics.ErrLabelMemoryLimitExceeded)
		return ErrMemoryLimitExceeded
	default:
		c.reportClientError(metrics.ErrLabelSend)
		return errWrap(ErrSend, err)
	}
}

// classifyReadErr maps an error surfaced by the input stream or Transport
// into the package's client-side error taxonomy.
func (c *Channel[T]) classifyReadErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stream.ErrLimit):
		c.reportClientError(metrics.ErrLabelMemoryLimitExceeded)
		return ErrMemoryLimitExceeded
	case errors.Is(err, stream.ErrReceive):
		c.reportClientError(metrics.ErrLabelReceive)
		return ErrReceive
	default:
		c.reportClientError(metrics.ErrLabelReceive)
		return errWrap(ErrReceive, err)
	}
}
