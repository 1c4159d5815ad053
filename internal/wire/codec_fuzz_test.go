package wire

import "testing"

// FuzzKeyRoundTrip ensures arbitrary keys survive the wire encode/decode.
func FuzzKeyRoundTrip(f *testing.F) {
	f.Add(int32(0), int64(0), int32(0), int64(0), int64(0))
	f.Add(int32(-1), int64(-1), int32(-1), int64(-1), int64(-1))
	f.Add(int32(CIDMax), int64(MIDMax), int32(MOIDMax), int64(CapMax), int64(AcqMax))
	f.Fuzz(func(t *testing.T, cid int32, mid int64, moid int32, cap_ int64, acq int64) {
		k := Key{CID: cid, MID: mid, MOID: moid, Cap: cap_, Acq: acq}
		buf := make([]byte, KeySize)
		WriteKey(buf, k)
		got := ReadKey(buf)
		if got != k {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, k)
		}
	})
}

// FuzzReadRequestHeader ensures the header decoder never panics on
// arbitrary input and round-trips whatever it accepts.
func FuzzReadRequestHeader(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, HeaderSize))
	raw := WriteRequestHeader(CmdGet, 64)
	f.Add(raw[:])
	f.Fuzz(func(t *testing.T, data []byte) {
		cmd, size, err := ReadRequestHeader(data)
		if err != nil {
			return
		}
		raw := WriteRequestHeader(cmd, size)
		cmd2, size2, err2 := ReadRequestHeader(raw[:])
		if err2 != nil || cmd2 != cmd || size2 != size {
			t.Fatalf("re-encode mismatch: cmd=%d/%d size=%d/%d err=%v", cmd, cmd2, size, size2, err2)
		}
	})
}

// FuzzTimestampRoundTrip checks the two testable timestamp properties from
// the channel contract: from_unix(to_unix(t)) == t - (t mod 1e9), and
// to_unix(from_unix(u)) == u for all whole-second u.
func FuzzTimestampRoundTrip(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-1))
	f.Add(EpochOffset * nanosPerSec)
	f.Fuzz(func(t *testing.T, ts int64) {
		rem := ts % nanosPerSec
		want := ts - rem
		got := FromUnixSeconds(ToUnixSeconds(ts))
		if got != want {
			t.Fatalf("FromUnixSeconds(ToUnixSeconds(%d)) = %d, want %d", ts, got, want)
		}
	})
}
