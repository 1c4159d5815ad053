package wire

import "time"

// EpochOffset is the number of POSIX seconds between the Unix epoch
// (1970-01-01T00:00:00Z) and the TStorage epoch (2001-01-01T00:00:00Z).
const EpochOffset int64 = 978307200

const nanosPerSec int64 = 1_000_000_000

// ToUnixSeconds converts a TStorage timestamp (nanoseconds since the
// TStorage epoch) to whole POSIX seconds since the Unix epoch, truncating
// any sub-second remainder.
func ToUnixSeconds(ts int64) int64 {
	return ts/nanosPerSec + EpochOffset
}

// FromUnixSeconds converts whole POSIX seconds since the Unix epoch to a
// TStorage timestamp in nanoseconds since the TStorage epoch.
func FromUnixSeconds(sec int64) int64 {
	return (sec - EpochOffset) * nanosPerSec
}

// ToUnix splits a TStorage timestamp into a (sec, nsec) pair counted from
// the Unix epoch, with nsec normalized to [0, 1e9).
func ToUnix(ts int64) (sec, nsec int64) {
	sec = ts/nanosPerSec + EpochOffset
	nsec = ts % nanosPerSec
	if nsec < 0 {
		nsec += nanosPerSec
		sec--
	}
	return sec, nsec
}

// FromUnix combines a POSIX (sec, nsec) pair, counted from the Unix epoch,
// into a TStorage timestamp.
func FromUnix(sec, nsec int64) int64 {
	return (sec-EpochOffset)*nanosPerSec + nsec
}

// FromTime converts a time.Time into a TStorage timestamp.
func FromTime(t time.Time) int64 {
	return FromUnix(t.Unix(), int64(t.Nanosecond()))
}

// ToTime converts a TStorage timestamp into a time.Time in UTC.
func ToTime(ts int64) time.Time {
	sec, nsec := ToUnix(ts)
	return time.Unix(sec, nsec).UTC()
}
