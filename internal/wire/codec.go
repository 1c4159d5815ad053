package wire

import (
	"encoding/binary"
	"errors"
)

// Command codes for the request header's cmd field.
const (
	CmdGet     int32 = 1
	CmdPutSafe int32 = 5
	CmdPutA    int32 = 6
	CmdGetAcq  int32 = 7
)

// BatchSentinel is the bare i32 that terminates a PUT/PUTA body.
const BatchSentinel int32 = -1

// RecordStreamEnd is the rec_size value that terminates a GET record
// stream.
const RecordStreamEnd int32 = 0

// HeaderSize is the on-wire size of both the request header (cmd||size)
// and the response header (result||size): one i32 and one u64.
const HeaderSize = 4 + 8

// ErrTruncated is returned by decode helpers when fewer bytes are present
// than the frame declares; callers treat it as a protocol violation by the
// peer.
var ErrTruncated = errors.New("wire: truncated frame")

// PutRecordFixedSize is the byte count of everything in a PUT record frame
// after rec_size itself, excluding payload: mid(8) + moid(4) + cap(8).
const PutRecordFixedSize = 8 + 4 + 8

// PutaRecordFixedSize is PutRecordFixedSize plus acq(8).
const PutaRecordFixedSize = PutRecordFixedSize + 8

// PutEncode writes a PUT-shape record frame (rec_size || mid || moid || cap
// || payload) into out, which must be at least PutFrameSize(len(payload))
// bytes. It returns the number of bytes written.
func PutEncode(out []byte, mid int64, moid int32, cap_ int64, payload []byte) int {
	recSize := int32(PutRecordFixedSize + len(payload))
	binary.LittleEndian.PutUint32(out[0:4], uint32(recSize))
	binary.LittleEndian.PutUint64(out[4:12], uint64(mid))
	binary.LittleEndian.PutUint32(out[12:16], uint32(moid))
	binary.LittleEndian.PutUint64(out[16:24], uint64(cap_))
	n := copy(out[24:], payload)
	return 24 + n
}

// PutFrameSize returns the total wire size of a PUT record frame carrying
// payloadLen bytes of payload, including the leading rec_size field.
func PutFrameSize(payloadLen int) int { return 4 + PutRecordFixedSize + payloadLen }

// PutaEncode writes a PUTA-shape record frame (rec_size || mid || moid ||
// cap || acq || payload) into out, which must be at least
// PutaFrameSize(len(payload)) bytes.
func PutaEncode(out []byte, mid int64, moid int32, cap_, acq int64, payload []byte) int {
	recSize := int32(PutaRecordFixedSize + len(payload))
	binary.LittleEndian.PutUint32(out[0:4], uint32(recSize))
	binary.LittleEndian.PutUint64(out[4:12], uint64(mid))
	binary.LittleEndian.PutUint32(out[12:16], uint32(moid))
	binary.LittleEndian.PutUint64(out[16:24], uint64(cap_))
	binary.LittleEndian.PutUint64(out[24:32], uint64(acq))
	n := copy(out[32:], payload)
	return 32 + n
}

// PutaFrameSize returns the total wire size of a PUTA record frame carrying
// payloadLen bytes of payload, including the leading rec_size field.
func PutaFrameSize(payloadLen int) int { return 4 + PutaRecordFixedSize + payloadLen }

// WriteRequestHeader encodes a request header (cmd || size) into a fresh
// 12-byte slice.
func WriteRequestHeader(cmd int32, size uint64) [HeaderSize]byte {
	var out [HeaderSize]byte
	binary.LittleEndian.PutUint32(out[0:4], uint32(cmd))
	binary.LittleEndian.PutUint64(out[4:12], size)
	return out
}

// ReadRequestHeader decodes a 12-byte request header.
func ReadRequestHeader(in []byte) (cmd int32, size uint64, err error) {
	if len(in) < HeaderSize {
		return 0, 0, ErrTruncated
	}
	cmd = int32(binary.LittleEndian.Uint32(in[0:4]))
	size = binary.LittleEndian.Uint64(in[4:12])
	return cmd, size, nil
}

// WriteResponseHeader encodes a response header (result || size) into a
// fresh 12-byte slice.
func WriteResponseHeader(result int32, size uint64) [HeaderSize]byte {
	var out [HeaderSize]byte
	binary.LittleEndian.PutUint32(out[0:4], uint32(result))
	binary.LittleEndian.PutUint64(out[4:12], size)
	return out
}

// ReadResponseHeader decodes a 12-byte response header.
func ReadResponseHeader(in []byte) (result int32, size uint64, err error) {
	if len(in) < HeaderSize {
		return 0, 0, ErrTruncated
	}
	result = int32(binary.LittleEndian.Uint32(in[0:4]))
	size = binary.LittleEndian.Uint64(in[4:12])
	return result, size, nil
}

// WriteKey encodes a Key into out in wire order (cid, mid, moid, cap, acq),
// which must be at least KeySize bytes.
func WriteKey(out []byte, k Key) {
	binary.LittleEndian.PutUint32(out[0:4], uint32(k.CID))
	binary.LittleEndian.PutUint64(out[4:12], uint64(k.MID))
	binary.LittleEndian.PutUint32(out[12:16], uint32(k.MOID))
	binary.LittleEndian.PutUint64(out[16:24], uint64(k.Cap))
	binary.LittleEndian.PutUint64(out[24:32], uint64(k.Acq))
}

// ReadKey decodes a Key from in, which must be at least KeySize bytes.
func ReadKey(in []byte) Key {
	return Key{
		CID:  int32(binary.LittleEndian.Uint32(in[0:4])),
		MID:  int64(binary.LittleEndian.Uint64(in[4:12])),
		MOID: int32(binary.LittleEndian.Uint32(in[12:16])),
		Cap:  int64(binary.LittleEndian.Uint64(in[16:24])),
		Acq:  int64(binary.LittleEndian.Uint64(in[24:32])),
	}
}

// WriteKeyRange encodes Min then Max into out, which must be at least
// 2*KeySize bytes.
func WriteKeyRange(out []byte, kr KeyRange) {
	WriteKey(out[0:KeySize], kr.Min)
	WriteKey(out[KeySize:2*KeySize], kr.Max)
}

// PutUint32 / GetUint32 / PutUint64 / GetUint64 are thin little-endian
// helpers used by callers that assemble frames incrementally (e.g. the
// batch writer, which must back-patch a field after writing the records
// that follow it).
func PutInt32(out []byte, v int32) { binary.LittleEndian.PutUint32(out, uint32(v)) }
func GetInt32(in []byte) int32     { return int32(binary.LittleEndian.Uint32(in)) }
func PutInt64(out []byte, v int64) { binary.LittleEndian.PutUint64(out, uint64(v)) }
func GetInt64(in []byte) int64     { return int64(binary.LittleEndian.Uint64(in)) }

// RecordStreamHeader is the fixed portion of a GET response record frame:
// rec_size || cid || mid || moid || cap || acq (rec_size itself plus a
// full Key). PayloadLen = rec_size - KeySize.
const RecordStreamHeaderSize = 4 + KeySize

// WriteRecordStream encodes one GET-response record frame (rec_size || key
// || payload) into out, which must be at least
// RecordStreamFrameSize(len(payload)) bytes.
func WriteRecordStream(out []byte, k Key, payload []byte) int {
	recSize := int32(KeySize + len(payload))
	PutInt32(out[0:4], recSize)
	WriteKey(out[4:4+KeySize], k)
	n := copy(out[4+KeySize:], payload)
	return 4 + KeySize + n
}

// RecordStreamFrameSize returns the total wire size of a GET-response
// record frame carrying payloadLen bytes of payload.
func RecordStreamFrameSize(payloadLen int) int { return 4 + KeySize + payloadLen }

// ReadRecordStreamHeader decodes the rec_size and key of a GET-response
// record frame from in, which must be at least RecordStreamHeaderSize
// bytes. The caller is responsible for locating the payload slice that
// follows using the returned recSize.
func ReadRecordStreamHeader(in []byte) (recSize int32, k Key) {
	recSize = GetInt32(in[0:4])
	k = ReadKey(in[4 : 4+KeySize])
	return recSize, k
}
