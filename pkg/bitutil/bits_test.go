package bitutil

import "testing"

func TestGetBitURoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	SetBitU(buf, 3, 9, 0x1A5)
	if got := GetBitU(buf, 3, 9); got != 0x1A5 {
		t.Fatalf("got %#x, want %#x", got, 0x1A5)
	}
}

func TestGetBitsSignExtension(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	// all-ones 10-bit field is -1 when interpreted as signed.
	if got := GetBits(buf, 0, 10); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
	// all-zero is zero either way.
	zero := make([]byte, 4)
	if got := GetBits(zero, 0, 10); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestSignExtend(t *testing.T) {
	cases := []struct {
		v     uint32
		nbits int
		want  int32
	}{
		{0, 8, 0},
		{0x7F, 8, 0x7F},
		{0x80, 8, -128},
		{0xFF, 8, -1},
	}
	for _, c := range cases {
		if got := SignExtend(c.v, c.nbits); got != c.want {
			t.Fatalf("SignExtend(%#x,%d)=%d, want %d", c.v, c.nbits, got, c.want)
		}
	}
}

func TestCursorSequentialReads(t *testing.T) {
	buf := []byte{0b10110100, 0b01011010}
	c := NewCursor(buf, 0)
	if v := c.U(4); v != 0b1011 {
		t.Fatalf("first nibble = %b, want 1011", v)
	}
	if v := c.U(4); v != 0b0100 {
		t.Fatalf("second nibble = %b, want 0100", v)
	}
	if c.Pos() != 8 {
		t.Fatalf("pos = %d, want 8", c.Pos())
	}
}

func TestLittleBigEndianReads(t *testing.T) {
	be := []byte{0x01, 0x02, 0x03, 0x04}
	if U4BE(be) != 0x01020304 {
		t.Fatalf("U4BE mismatch")
	}
	if U4LE(be) != 0x04030201 {
		t.Fatalf("U4LE mismatch")
	}
}
