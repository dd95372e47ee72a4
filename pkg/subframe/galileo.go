package subframe

import (
	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/ntpsec/gnssd/pkg/fix"
)

// Galileo I/NAV words are 128 bits each; a full ephemeris is carried
// across word types 1-4 plus the clock/health/timing fields of word
// type 5. Offsets and scale factors below follow the teacher's
// DecodeGalInavEph field layout.
const galWordLen = 128

// DecodeINAV decodes a Galileo I/NAV ephemeris from five consecutive
// 128-bit words (types 1-5, in that order). Any ctype/iod_nav
// inconsistency, or an svid outside 1-36, discards without mutating
// sf.
func DecodeINAV(words []byte, sv int) (fix.Subframe, Discard) {
	sf := fix.NewSubframe()
	sf.GNSSId = GNSSGalileo
	sf.SV = sv
	o := fix.NewOrbit()
	o.Kind = fix.OrbitEphemeris
	o.Sat = sv

	ctype := make([]int, 5)
	iodNav := make([]int, 4)

	c1 := bitutil.NewCursor(words, 0*galWordLen)
	ctype[0] = int(c1.U(6))
	iodNav[0] = int(c1.U(10))
	o.Toe = float64(c1.U(14)) * 60.0
	o.M0 = float64(c1.S(32)) * P2_31 * SC2RAD
	o.E = float64(c1.U(32)) * P2_33
	o.SqrtA = float64(c1.U(32)) * P2_19

	c2 := bitutil.NewCursor(words, 1*galWordLen)
	ctype[1] = int(c2.U(6))
	iodNav[1] = int(c2.U(10))
	o.OMG0 = float64(c2.S(32)) * P2_31 * SC2RAD
	o.I0 = float64(c2.S(32)) * P2_31 * SC2RAD
	o.Omg = float64(c2.S(32)) * P2_31 * SC2RAD
	o.Idot = float64(c2.S(14)) * P2_43 * SC2RAD

	c3 := bitutil.NewCursor(words, 2*galWordLen)
	ctype[2] = int(c3.U(6))
	iodNav[2] = int(c3.U(10))
	o.OMGd = float64(c3.S(24)) * P2_43 * SC2RAD
	o.Deln = float64(c3.S(16)) * P2_43 * SC2RAD
	o.Cuc = float64(c3.S(16)) * P2_29
	o.Cus = float64(c3.S(16)) * P2_29
	o.Crc = float64(c3.S(16)) * P2_5
	o.Crs = float64(c3.S(16)) * P2_5
	o.SISA = int(c3.U(8))

	c4 := bitutil.NewCursor(words, 3*galWordLen)
	ctype[3] = int(c4.U(6))
	iodNav[3] = int(c4.U(10))
	svid := int(c4.U(6))
	o.Cic = float64(c4.S(16)) * P2_29
	o.Cis = float64(c4.S(16)) * P2_29
	o.Toc = float64(c4.U(14)) * 60.0
	o.F0 = float64(c4.S(31)) * P2_34
	o.F1 = float64(c4.S(21)) * P2_46
	o.F2 = float64(c4.S(6)) * P2_59

	c5 := bitutil.NewCursor(words, 4*galWordLen)
	ctype[4] = int(c5.U(6))
	c5.Skip(6 + 11 + 11 + 14 + 5) // skip IOD_nav-less system/spare fields
	o.Tgd[0] = float64(c5.S(10)) * P2_32
	o.Tgd[1] = float64(c5.S(10)) * P2_32
	e5bHS := int(c5.U(2))
	e1bHS := int(c5.U(2))
	e5bDVS := int(c5.U(1))
	e1bDVS := int(c5.U(1))
	week := int(c5.U(12))
	tow := int(c5.U(20))

	if ctype[0] != 1 || ctype[1] != 2 || ctype[2] != 3 || ctype[3] != 4 || ctype[4] != 5 {
		return fix.NewSubframe(), DiscardBadPreamble
	}
	if iodNav[0] != iodNav[1] || iodNav[1] != iodNav[2] || iodNav[2] != iodNav[3] {
		return fix.NewSubframe(), DiscardBadPreamble
	}
	if svid < 1 || svid > 36 {
		return fix.NewSubframe(), DiscardDummySV
	}

	o.IODE = iodNav[0]
	o.IODC = iodNav[0]
	o.Health = (e5bHS << 7) | (e5bDVS << 6) | (e1bHS << 1) | e1bDVS
	o.Week = week + 1024 // GST week -> Galileo week, teacher's DecodeGalInavEph convention

	if !o.Valid() {
		return fix.NewSubframe(), DiscardOrbitFloor
	}

	sf.SV = svid
	sf.FrameNum = 1
	sf.TOW = tow
	sf.Week = o.Week
	sf.Orbits[0] = o
	sf.NOrbit = 1
	sf.IsAlmanac = fix.OrbitEphemeris
	return sf, DiscardNone
}

// AlmanacPeerSV returns the SV id implied for the second satellite
// fragment carried in the word-8 half of a two-SV interleaved almanac
// page, given the SV id decoded from the following word-9 half: the
// word-8 peer is always one below the word-9 SV.
func AlmanacPeerSV(word9SV int) (peerSV int, ok bool) {
	peer := word9SV - 1
	if peer < 1 || peer > 36 {
		return 0, false
	}
	return peer, true
}
