package subframe

import (
	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/ntpsec/gnssd/pkg/fix"
)

// StringClass classifies a GLONASS navigation string (1-15) by the
// content it carries within its 5-frame superframe.
type StringClass int

const (
	StringUnknown StringClass = iota
	StringEphemeris          // strings 1-4: immediate (orbit/clock) data
	StringTime               // string 5: non-immediate data (UTC/leap)
	StringAlmanac            // strings 6-15: almanac
)

func (c StringClass) String() string {
	switch c {
	case StringEphemeris:
		return "EPHEMERIS"
	case StringTime:
		return "TIME"
	case StringAlmanac:
		return "ALMANAC"
	default:
		return "UNKNOWN"
	}
}

// ClassifyString reports which part of the superframe stringNum
// belongs to (ref [2] 4.5: strings 1-4 ephemeris, 5 non-immediate,
// 6-15 almanac).
func ClassifyString(stringNum int) (StringClass, bool) {
	switch {
	case stringNum >= 1 && stringNum <= 4:
		return StringEphemeris, true
	case stringNum == 5:
		return StringTime, true
	case stringNum >= 6 && stringNum <= 15:
		return StringAlmanac, true
	default:
		return StringUnknown, false
	}
}

// xor8bit is the parity of each possible byte's bits, used by
// HammingOK's Hamming(15,11)-derived check.
var xor8bit = [256]uint8{
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
}

// maskHamming are the bit masks of each of the 8 Hamming parity
// checks over an 85-bit GLONASS string (ref [2] 4.7).
var maskHamming = [8][11]uint8{
	{0x55, 0x55, 0x5A, 0xAA, 0xAA, 0xAA, 0xB5, 0x55, 0x6A, 0xD8, 0x08},
	{0x66, 0x66, 0x6C, 0xCC, 0xCC, 0xCC, 0xD9, 0x99, 0xB3, 0x68, 0x10},
	{0x87, 0x87, 0x8F, 0x0F, 0x0F, 0x0F, 0x1E, 0x1E, 0x3C, 0x70, 0x20},
	{0x07, 0xF8, 0x0F, 0xF0, 0x0F, 0xF0, 0x1F, 0xE0, 0x3F, 0x80, 0x40},
	{0xF8, 0x00, 0x0F, 0xFF, 0xF0, 0x00, 0x1F, 0xFF, 0xC0, 0x00, 0x80},
	{0x00, 0x00, 0x0F, 0xFF, 0xFF, 0xFF, 0xE0, 0x00, 0x00, 0x01, 0x00},
	{0xFF, 0xFF, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xF8},
}

// HammingOK tests a single GLONASS string's embedded Hamming code.
// buff holds the 85 data+hamming bits packed into 11 bytes, MSB
// first, 0-padded at the end (ref [2] 4.7).
func HammingOK(buff []byte) bool {
	var n int
	var cs uint8
	for i := 0; i < 8; i++ {
		cs = 0
		for j := 0; j < 11; j++ {
			cs ^= xor8bit[buff[j]&maskHamming[i][j]]
		}
		if cs > 0 {
			n++
		}
	}
	return n == 0 || (n == 2 && cs > 0)
}

// getbitg reads an n-bit sign-magnitude field: bit pos is the sign
// (1 = negative), the remaining n-1 bits are the magnitude. GLONASS
// uses this convention throughout, unlike GPS/BeiDou/Galileo's
// two's-complement fields.
func getbitg(buff []byte, pos, ln int) float64 {
	value := float64(bitutil.GetBitU(buff, pos+1, ln-1))
	if bitutil.GetBitU(buff, pos, 1) > 0 {
		return -value
	}
	return value
}

// sign reads an n-bit sign-magnitude field at the cursor's current
// position and advances it by n, the Cursor-threaded equivalent of
// getbitg for DecodeEphemeris's sequential field layout.
func sign(buf []byte, c *bitutil.Cursor, n int) float64 {
	v := getbitg(buf, c.Pos(), n)
	c.Skip(n)
	return v
}

// slotToSV checks GLONASS's orbital slot range (ref [2]): slots 1-24 are
// assigned satellites.
func slotToSV(slot int) (sv int, ok bool) {
	if slot < 1 || slot > 24 {
		return 0, false
	}
	return slot, true
}

// DecodeEphemeris decodes a GLONASS immediate-data ephemeris from the
// concatenated data-bit content of strings 1-4 (hamming/time-mark/idle
// bits already stripped by the caller, per HammingOK's framing),
// mirroring the teacher's DecodeGlostrEph bit offsets and scale
// factors. Failure (frame-number mismatch, invalid slot, or an
// implausible position) discards without mutating sf.
func DecodeEphemeris(buf []byte) (fix.Subframe, Discard) {
	sf := fix.NewSubframe()
	sf.GNSSId = GNSSGLONASS
	o := fix.NewOrbit()
	o.Kind = fix.OrbitEphemeris

	c := bitutil.NewCursor(buf, 1)
	frn1 := int(c.U(4))
	c.Skip(2 + 2)
	// tk (frame reference time, hour/min/30s) needs the current UTC
	// date to resolve into an absolute timestamp; left unextracted,
	// see DESIGN.md.
	c.Skip(5 + 6 + 1)
	o.Vel[0] = sign(buf, c, 24) * P2_20 * 1e3
	o.Acc[0] = sign(buf, c, 5) * P2_30 * 1e3
	o.Pos[0] = sign(buf, c, 27) * P2_11 * 1e3
	c.Skip(4)

	frn2 := int(c.U(4))
	o.Health = int(c.U(1))
	c.Skip(2 + 1)
	tb := int(c.U(7))
	c.Skip(5)
	o.Vel[1] = sign(buf, c, 24) * P2_20 * 1e3
	o.Acc[1] = sign(buf, c, 5) * P2_30 * 1e3
	o.Pos[1] = sign(buf, c, 27) * P2_11 * 1e3
	c.Skip(4)

	frn3 := int(c.U(4))
	c.Skip(1)
	o.Gamn = sign(buf, c, 11) * P2_40
	c.Skip(1 + 2 + 1)
	o.Vel[2] = sign(buf, c, 24) * P2_20 * 1e3
	o.Acc[2] = sign(buf, c, 5) * P2_30 * 1e3
	o.Pos[2] = sign(buf, c, 27) * P2_11 * 1e3
	c.Skip(4)

	frn4 := int(c.U(4))
	o.Taun = sign(buf, c, 22) * P2_30
	o.DTaun = sign(buf, c, 5) * P2_30
	age := int(c.U(5))
	c.Skip(14 + 1)
	o.SISA = int(c.U(4))
	c.Skip(3 + 11)
	slot := int(c.U(5))

	if frn1 != 1 || frn2 != 2 || frn3 != 3 || frn4 != 4 {
		return fix.NewSubframe(), DiscardBadPreamble
	}
	sv, ok := slotToSV(slot)
	if !ok {
		return fix.NewSubframe(), DiscardDummySV
	}
	if !o.ValidGLONASS() {
		return fix.NewSubframe(), DiscardOrbitFloor
	}

	o.Sat = sv
	o.IODE = tb
	o.Age = age
	o.FreqNum = 0 // frequency channel assigned out-of-band by the session (slot/frequency table)

	sf.SV = sv
	sf.FrameNum = 1
	sf.Orbits[0] = o
	sf.NOrbit = 1
	sf.IsAlmanac = fix.OrbitEphemeris
	return sf, DiscardNone
}
