package wire

import "errors"

// ErrInvalidKey is returned when a key field is out of range, e.g. a
// negative CID.
var ErrInvalidKey = errors.New("wire: invalid key")

// ErrEmptyKeyRange is returned when a right-open key interval [Min, Max)
// contains no keys.
var ErrEmptyKeyRange = errors.New("wire: empty key range")

// KeyRange is a right-open interval [Min, Max) over the key space.
type KeyRange struct {
	Min Key
	Max Key
}

// CMin is the smallest legal key, used as the default lower bound of a
// full-range scan.
var CMin = Key{CID: CIDMin, MID: MIDMin, MOID: MOIDMin, Cap: CapMin, Acq: AcqMin}

// CMax is the largest legal key, used as the default upper bound of a
// full-range scan. Since KeyRange is right-open, a query against [CMin,
// CMax) excludes the single record at CMax exactly.
var CMax = Key{CID: CIDMax, MID: MIDMax, MOID: MOIDMax, Cap: CapMax, Acq: AcqMax}

// Empty reports whether the range [kr.Min, kr.Max) contains no keys. A
// KeyRange is a five-dimensional bounding box, not a lexicographic span: it
// is non-empty only when every field of Min is strictly less than the
// matching field of Max simultaneously, matching the reference client's
// field-wise operator<= (DataTypes.cpp) rather than a total-order compare.
func (kr KeyRange) Empty() bool {
	return !(kr.Min.CID < kr.Max.CID &&
		kr.Min.MID < kr.Max.MID &&
		kr.Min.MOID < kr.Max.MOID &&
		kr.Min.Cap < kr.Max.Cap &&
		kr.Min.Acq < kr.Max.Acq)
}

// Contains reports whether k lies within the field-wise bounding box
// [kr.Min, kr.Max): every field of k must fall in its matching half-open
// field interval.
func (kr KeyRange) Contains(k Key) bool {
	return k.CID >= kr.Min.CID && k.CID < kr.Max.CID &&
		k.MID >= kr.Min.MID && k.MID < kr.Max.MID &&
		k.MOID >= kr.Min.MOID && k.MOID < kr.Max.MOID &&
		k.Cap >= kr.Min.Cap && k.Cap < kr.Max.Cap &&
		k.Acq >= kr.Min.Acq && k.Acq < kr.Max.Acq
}

// Validate checks the range against the TStorage key contract: cid must be
// non-negative on both bounds, and the range must be non-empty. It performs
// no I/O.
func (kr KeyRange) Validate() error {
	if kr.Min.CID < CIDMin || kr.Max.CID < CIDMin {
		return ErrInvalidKey
	}
	if kr.Empty() {
		return ErrEmptyKeyRange
	}
	return nil
}
