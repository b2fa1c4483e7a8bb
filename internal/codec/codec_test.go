package codec

import "testing"

func TestReadWriteU32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	WriteU32(buf, 0, 0xDEADBEEF)
	if got := ReadU32(buf, 0); got != 0xDEADBEEF {
		t.Fatalf("ReadU32 = 0x%X, want 0xDEADBEEF", got)
	}
	if buf[0] != 0xDE || buf[1] != 0xAD || buf[2] != 0xBE || buf[3] != 0xEF {
		t.Fatalf("WriteU32 did not produce big-endian bytes: %x", buf)
	}
}

func TestReadWriteU16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	WriteU16(buf, 0, 0x4243)
	if got := ReadU16(buf, 0); got != 0x4243 {
		t.Fatalf("ReadU16 = 0x%X, want 0x4243", got)
	}
	if buf[0] != 0x42 || buf[1] != 0x43 {
		t.Fatalf("WriteU16 did not produce big-endian bytes: %x", buf)
	}
}

func TestReadTag(t *testing.T) {
	buf := []byte("BOMStore")
	if got := string(ReadTag(buf, 0, 8)); got != "BOMStore" {
		t.Fatalf("ReadTag = %q, want %q", got, "BOMStore")
	}
}

func TestReadCString(t *testing.T) {
	buf := append([]byte("hello\x00"), 0xFF)
	s, next := ReadCString(buf, 0)
	if s != "hello" {
		t.Fatalf("ReadCString = %q, want %q", s, "hello")
	}
	if next != 6 {
		t.Fatalf("next offset = %d, want 6", next)
	}
}

func TestAppendHelpers(t *testing.T) {
	var buf []byte
	buf = AppendU32(buf, 1)
	buf = AppendU16(buf, 2)
	buf = AppendU8(buf, 3)
	buf = AppendCString(buf, "ab")
	want := []byte{0, 0, 0, 1, 0, 2, 3, 'a', 'b', 0}
	if len(buf) != len(want) {
		t.Fatalf("len(buf) = %d, want %d", len(buf), len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %d, want %d", i, buf[i], want[i])
		}
	}
}

func TestBounded(t *testing.T) {
	buf := make([]byte, 10)
	if !Bounded(buf, 4, 6) {
		t.Fatal("Bounded(buf, 4, 6) should be true for a 10-byte buffer")
	}
	if Bounded(buf, 4, 7) {
		t.Fatal("Bounded(buf, 4, 7) should be false for a 10-byte buffer")
	}
	if Bounded(buf, -1, 1) {
		t.Fatal("Bounded should reject a negative offset")
	}
}
