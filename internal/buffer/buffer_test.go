package buffer

import "testing"

func TestReserveGrowsAndWrites(t *testing.T) {
	b := New(1024)
	s, ok := b.Reserve(16)
	if !ok {
		t.Fatalf("expected Reserve to succeed")
	}
	if len(s) != 16 {
		t.Fatalf("got slice len %d, want 16", len(s))
	}
	copy(s, []byte("0123456789abcdef"))
	b.AdvanceWrite(16)
	if b.WriteOff() != 16 {
		t.Fatalf("writeOff=%d, want 16", b.WriteOff())
	}
	if string(b.Unconsumed()) != "0123456789abcdef" {
		t.Fatalf("unexpected content: %q", b.Unconsumed())
	}
}

func TestReserveFailsBeyondMemoryLimit(t *testing.T) {
	b := New(32)
	if _, ok := b.Reserve(64); ok {
		t.Fatalf("expected Reserve to fail when n > memoryLimit")
	}
}

func TestReserveSucceedsIffWithinBudget(t *testing.T) {
	// Invariant: reserve(n) succeeds iff n <= memoryLimit - bytes_unread.
	b := New(100)
	s, ok := b.Reserve(60)
	if !ok {
		t.Fatalf("expected success")
	}
	b.AdvanceWrite(len(s))
	b.AdvanceRead(20) // 40 bytes remain unread

	if _, ok := b.Reserve(61); ok {
		t.Fatalf("expected failure: 61 > 100-40")
	}
	if _, ok := b.Reserve(60); !ok {
		t.Fatalf("expected success: 60 <= 100-40")
	}
}

func TestCompactionMovesUnreadToZero(t *testing.T) {
	b := New(1024)
	s, _ := b.Reserve(100)
	for i := range s {
		s[i] = byte(i)
	}
	b.AdvanceWrite(100)
	b.AdvanceRead(90)
	if b.Unread() != 10 {
		t.Fatalf("unread=%d", b.Unread())
	}
	b.Confirm()
	if b.ReadOff() != 0 {
		t.Fatalf("expected readOff reset to 0, got %d", b.ReadOff())
	}
	if b.WriteOff() != 10 {
		t.Fatalf("expected writeOff=10 after compaction, got %d", b.WriteOff())
	}
	want := byte(90)
	if b.Unconsumed()[0] != want {
		t.Fatalf("compacted content mismatch: got %d, want %d", b.Unconsumed()[0], want)
	}
}

func TestResetZeroesCursors(t *testing.T) {
	b := New(256)
	s, _ := b.Reserve(10)
	b.AdvanceWrite(len(s))
	b.AdvanceRead(5)
	b.Reset()
	if b.ReadOff() != 0 || b.WriteOff() != 0 {
		t.Fatalf("expected zeroed cursors after reset")
	}
}

func TestInvariantUnreadPlusFreeWithinCapacity(t *testing.T) {
	b := New(200)
	for _, n := range []int{10, 20, 5, 150} {
		s, ok := b.Reserve(n)
		if !ok {
			continue
		}
		b.AdvanceWrite(len(s))
		unread := b.Unread()
		free := b.Capacity() - b.WriteOff()
		if unread+free > b.Capacity() {
			t.Fatalf("invariant violated: unread=%d free=%d capacity=%d", unread, free, b.Capacity())
		}
		if b.Capacity() > b.MemoryLimit() {
			t.Fatalf("capacity %d exceeds memory limit %d", b.Capacity(), b.MemoryLimit())
		}
	}
}

func TestReleaseDropsBackingArray(t *testing.T) {
	b := New(64)
	s, _ := b.Reserve(8)
	b.AdvanceWrite(len(s))
	b.Release()
	if b.Capacity() != 0 || b.ReadOff() != 0 || b.WriteOff() != 0 {
		t.Fatalf("expected zeroed buffer after Release")
	}
}
