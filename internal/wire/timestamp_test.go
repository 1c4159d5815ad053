package wire

import (
	"testing"
	"time"
)

func TestTimestampEpochOffset(t *testing.T) {
	// The TStorage epoch, 2001-01-01T00:00:00Z, expressed as ts=0.
	got := ToTime(0)
	want := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ToTime(0) = %v, want %v", got, want)
	}
}

func TestFromTimeToTimeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 30, 45, 123456789, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, tc := range cases {
		ts := FromTime(tc)
		got := ToTime(ts)
		if !got.Equal(tc) {
			t.Fatalf("round trip mismatch for %v: got %v", tc, got)
		}
	}
}

func TestToUnixSecondsFromUnixSecondsRoundTrip(t *testing.T) {
	for _, u := range []int64{0, 1, -1, EpochOffset, -EpochOffset, 1 << 40} {
		got := ToUnixSeconds(FromUnixSeconds(u))
		if got != u {
			t.Fatalf("ToUnixSeconds(FromUnixSeconds(%d)) = %d", u, got)
		}
	}
}
