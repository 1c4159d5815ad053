package stream

import "github.com/atendeindustries/tstorage-clients/internal/buffer"

// BufferedOStream is an output stream with a directly-accessible buffer.
// Callers reserve space, write into it, confirm the bytes actually used,
// and eventually flush the confirmed region through the Sender.
type BufferedOStream struct {
	buf  *buffer.BoundedBuffer
	conn Sender
}

// NewBufferedOStream wraps buf (already sized to the channel's memory
// limit) and conn for flushing.
func NewBufferedOStream(buf *buffer.BoundedBuffer, conn Sender) *BufferedOStream {
	return &BufferedOStream{buf: buf, conn: conn}
}

// Offset returns the current write cursor, i.e. the byte offset the next
// Reserve will begin writing at. Callers use this to record the position
// of a field they intend to back-patch later via PatchAt.
func (s *BufferedOStream) Offset() int { return s.buf.WriteOff() }

// SizeReserved returns how much space is reserved-but-not-yet-confirmed
// ahead of the current write cursor — i.e. how large a slice the last
// Reserve call actually returned room for.
func (s *BufferedOStream) SizeReserved() int { return s.buf.FreeCapacity() }

// Reserve ensures size bytes are available for writing at the current
// cursor and returns a slice of at least that length. It may reserve more
// than requested and invalidates any slice returned by an earlier Reserve
// call. Returns ErrLimit if size exceeds the memory limit once already
// confirmed bytes are accounted for.
func (s *BufferedOStream) Reserve(size int) ([]byte, error) {
	b, ok := s.buf.Reserve(size)
	if !ok {
		return nil, ErrLimit
	}
	return b, nil
}

// ReserveFlushing behaves like Reserve, but if the reservation fails it
// flushes any confirmed data through the Sender first and retries once.
func (s *BufferedOStream) ReserveFlushing(size int) ([]byte, error) {
	b, err := s.Reserve(size)
	if err == nil {
		return b, nil
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s.Reserve(size)
}

// Confirm marks the first size bytes of the most recent reservation as
// data to be flushed.
func (s *BufferedOStream) Confirm(size int) { s.buf.AdvanceWrite(size) }

// PatchAt overwrites already-confirmed bytes at offset with data, without
// moving either cursor. Used for copy-then-patch fields (e.g. a batch's
// batch_size) whose value isn't known until after more bytes are written.
// offset must refer to a region already confirmed in the current flush
// cycle.
func (s *BufferedOStream) PatchAt(offset int, data []byte) {
	copy(s.buf.Bytes()[offset:], data)
}

// Flush sends every confirmed byte through the Sender and empties the
// buffer.
func (s *BufferedOStream) Flush() error {
	if s.buf.WriteOff() == 0 {
		return nil
	}
	data := s.buf.Bytes()
	s.buf.Reset()
	return s.conn.SendAll(data)
}

// BufferSize returns the stream buffer's memory limit (the maximum it may
// grow to), not its currently-allocated capacity.
func (s *BufferedOStream) BufferSize() int { return s.buf.MemoryLimit() }
