package stream

import "github.com/atendeindustries/tstorage-clients/internal/buffer"

// BufferedIStream is an input stream that reads ahead from a Receiver into
// a shared buffer, handing out read-only slices on Reserve and only
// compacting (freeing) consumed bytes on Confirm. This lets a deserializer
// inspect a frame, abandon the attempt, and retry without losing already
// buffered bytes.
type BufferedIStream struct {
	buf  *buffer.BoundedBuffer
	conn Receiver
}

// NewBufferedIStream wraps buf (already sized to the channel's memory
// limit) and conn for receiving.
func NewBufferedIStream(buf *buffer.BoundedBuffer, conn Receiver) *BufferedIStream {
	return &BufferedIStream{buf: buf, conn: conn}
}

// Reserve returns a read-only slice of exactly size bytes starting at the
// stream's current logical cursor, receiving more data from the Receiver if
// fewer than size bytes are already buffered ahead of that cursor. It
// returns ErrLimit if size cannot fit even after growing the buffer to its
// memory limit, or ErrReceive on a short read / peer FIN while data was
// still expected.
func (s *BufferedIStream) Reserve(size int) ([]byte, error) {
	sizeAhead := s.buf.Unread()
	if size > sizeAhead {
		shortfall := size - sizeAhead
		free := s.buf.FreeCapacity()
		if shortfall > free {
			maxFree := s.buf.MaxFreeCapacity()
			if shortfall > maxFree {
				return nil, ErrLimit
			}
			if !s.buf.GrowForWrite(s.buf.WriteOff() + shortfall) {
				return nil, ErrLimit
			}
			free = s.buf.FreeCapacity()
		}
		tail := s.buf.WritableTail()[:free]
		n, err := s.conn.RecvAtLeast(tail, shortfall)
		if err != nil {
			return nil, err
		}
		if n < shortfall {
			return nil, ErrReceive
		}
		s.buf.AdvanceWrite(n)
	}
	out := s.buf.Unconsumed()[:size]
	s.buf.AdvanceRead(size)
	return out, nil
}

// Confirm marks every byte reserved so far as consumed, compacting any
// residual read-ahead (received but not yet reserved) down to offset 0.
func (s *BufferedIStream) Confirm() { s.buf.Confirm() }
