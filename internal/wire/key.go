// Package wire implements the TStorage binary protocol: key and header
// layouts, record and batch framing, and timestamp conversions. Nothing in
// this package touches a socket; it only knows how to turn Go values into
// bytes and back.
package wire

import "math"

// KeySize is the on-wire size of a Key in bytes: cid(4) + mid(8) + moid(4) +
// cap(8) + acq(8).
const KeySize = 4 + 8 + 4 + 8 + 8

// Field bounds, mirroring the TStorage client contract. CID must be
// non-negative; the other fields span their full integer range.
const (
	CIDMin = 0
	CIDMax = math.MaxInt32

	MIDMin = math.MinInt64
	MIDMax = math.MaxInt64

	MOIDMin = math.MinInt32
	MOIDMax = math.MaxInt32

	CapMin = math.MinInt64
	CapMax = math.MaxInt64

	AcqMin = math.MinInt64
	AcqMax = math.MaxInt64
)

// Key is the five-field composite primary key of a TStorage record.
type Key struct {
	CID  int32
	MID  int64
	MOID int32
	Cap  int64
	Acq  int64
}

// Compare orders two keys field-wise, lexicographically in (cid, mid, moid,
// cap, acq) order. It returns -1, 0, or 1.
func (k Key) Compare(o Key) int {
	if k.CID != o.CID {
		return cmpInt64(int64(k.CID), int64(o.CID))
	}
	if k.MID != o.MID {
		return cmpInt64(k.MID, o.MID)
	}
	if k.MOID != o.MOID {
		return cmpInt64(int64(k.MOID), int64(o.MOID))
	}
	if k.Cap != o.Cap {
		return cmpInt64(k.Cap, o.Cap)
	}
	return cmpInt64(k.Acq, o.Acq)
}

// Less reports whether k sorts strictly before o.
func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
