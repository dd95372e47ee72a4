// Package subframe implements the navigation-message decoder (spec
// component C4): GPS/QZSS LNAV, BeiDou D1/D2, Galileo I/NAV, and
// GLONASS string decoders, each producing a fix.Subframe carrying up
// to two fix.Orbit records plus an auxiliary ionosphere/UTC or health
// payload.
//
// Bit-field scale factors follow the powers-of-two and semicircle
// conventions of the originating interface control documents: P2Pn
// constants are 2^n, P2_n constants are 2^-n, and SC2RAD converts a
// semicircle-encoded angle to radians.
package subframe

import (
	"math"

	"github.com/ntpsec/gnssd/pkg/bitutil"
)

// Constellation ids tagging fix.Subframe.GNSSId.
const (
	GNSSGPS = iota
	GNSSBeiDou
	GNSSGalileo
	GNSSGLONASS
)

// SC2RAD converts a semicircle-encoded angle to radians (IS-GPS-200,
// BeiDou ICD, Galileo OS-SIS-ICD all share this convention).
const SC2RAD = math.Pi

// Positive powers of two used by the Klobuchar beta terms and the
// leap-second reference time (2^n).
const (
	P2P11 = 2048.0
	P2P12 = 4096.0
	P2P14 = 16384.0
	P2P16 = 65536.0
)

// Negative powers of two used by the GPS/BeiDou/Galileo scale
// factors below (2^-n).
const (
	P2_5  = 1.0 / 32
	P2_6  = 1.0 / 64
	P2_11 = 1.0 / 2048
	P2_19 = 1.0 / 524288
	P2_20 = 1.0 / 1048576
	P2_21 = 1.0 / 2097152
	P2_24 = 1.0 / 16777216
	P2_27 = 1.0 / 134217728
	P2_29 = 1.0 / 536870912
	P2_30 = 1.0 / 1073741824
	P2_31 = P2_30 / 2
	P2_32 = P2_31 / 2
	P2_33 = P2_31 / 4
	P2_34 = P2_33 / 2
	P2_38 = P2_34 / 16
	P2_40 = P2_38 / 4
	P2_43 = P2_38 / 32
	P2_46 = P2_43 / 8
	P2_50 = P2_46 / 16
	P2_55 = P2_50 / 32
	P2_59 = P2_55 / 16
	P2_66 = P2_59 / 128
)

// gpsPreambleNormal/gpsPreambleInverted are the classical GPS/QZSS TLM
// preamble, as transmitted and as observed when the word stream needs
// a D30*-driven polarity flip (spec.md §4.3).
const (
	gpsPreambleNormal   = 0x8B
	gpsPreambleInverted = 0x74
)

// word24 returns a word's 24 data bits (D1..D24), inverting them if
// invert is set — the D30* "polarity carries forward" rule: each
// word's sign is the previous word's last parity bit.
func word24(raw uint32, invert bool) uint32 {
	bits := (raw >> 6) & 0xFFFFFF
	if invert {
		bits ^= 0xFFFFFF
	}
	return bits
}

// checkParity validates word's six parity bits (D25-D30) against its
// 24 data bits and the previous word's last two bits (D29*, D30*),
// per the classical GPS parity polynomial (IS-GPS-200, 20.3.5).
func checkParity(raw uint32, d29star, d30star bool) bool {
	d := make([]bool, 25) // 1-indexed d[1..24]
	for i := 1; i <= 24; i++ {
		bit := (raw>>uint(30-i))&1 != 0
		if d30star {
			bit = !bit
		}
		d[i] = bit
	}
	xorRange := func(idx ...int) bool {
		v := false
		for _, i := range idx {
			v = v != d[i]
		}
		return v
	}
	d25 := d29star != xorRange(1, 2, 3, 5, 6, 10, 11, 12, 13, 14, 17, 18, 20, 23)
	d26 := d30star != xorRange(2, 3, 4, 6, 7, 11, 12, 13, 14, 15, 18, 19, 21, 24)
	d27 := d29star != xorRange(1, 3, 4, 5, 7, 8, 12, 13, 14, 15, 16, 19, 20, 22)
	d28 := d30star != xorRange(2, 4, 5, 6, 8, 9, 13, 14, 15, 16, 17, 20, 21, 23)
	d29 := d30star != xorRange(1, 3, 5, 6, 7, 9, 10, 14, 15, 16, 17, 18, 21, 22, 24)
	d30 := d29star != xorRange(3, 5, 6, 8, 9, 10, 11, 13, 15, 19, 22, 23, 24)

	gotD25 := (raw>>5)&1 != 0
	gotD26 := (raw>>4)&1 != 0
	gotD27 := (raw>>3)&1 != 0
	gotD28 := (raw>>2)&1 != 0
	gotD29 := (raw>>1)&1 != 0
	gotD30 := raw&1 != 0

	return d25 == gotD25 && d26 == gotD26 && d27 == gotD27 &&
		d28 == gotD28 && d29 == gotD29 && d30 == gotD30
}

// Discard enumerates why a subframe decoder gave up without mutating
// session state (spec.md §4.3 "Failure semantics").
type Discard int

const (
	DiscardNone Discard = iota
	DiscardBadPreamble
	DiscardParity
	DiscardOrbitFloor
	DiscardDummySV
)

func (d Discard) String() string {
	switch d {
	case DiscardBadPreamble:
		return "BAD_PREAMBLE"
	case DiscardParity:
		return "PARITY"
	case DiscardOrbitFloor:
		return "ORBIT_FLOOR"
	case DiscardDummySV:
		return "DUMMY_SV"
	default:
		return "NONE"
	}
}

// bitsFromWords concatenates the 24 data bits of each of the supplied
// parity-stripped raw 30-bit words into a single big-endian byte
// buffer, so the result can be read with bitutil.GetBitU/GetBits using
// the bit offsets documented for each constellation.
func bitsFromWords(words []uint32) []byte {
	out := make([]byte, (len(words)*24+7)/8+4)
	pos := 0
	for _, w := range words {
		bitutil.SetBitU(out, pos, 24, w&0xFFFFFF)
		pos += 24
	}
	return out
}
