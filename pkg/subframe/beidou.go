package subframe

import (
	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/ntpsec/gnssd/pkg/fix"
)

// BeiDou D1 (IGSO/MEO) and D2 (GEO) subframes are each 300 bits,
// packed consecutively at a 38-byte (304-bit) stride; the 4 spare
// bits per subframe are never read. Offsets and scale factors below
// follow the teacher's DecodeBDSD1Eph/DecodeBDSD2Eph field layout.
const bdsSubframeStride = 8 * 38

// DecodeD1 decodes a BeiDou D1 (IGSO/MEO) ephemeris from three
// parity-stripped 300-bit subframes (1, 2, 3) packed at
// bdsSubframeStride. Failure (subframe id/SOW mismatch) discards
// without touching sf.
func DecodeD1(buf []byte, sv int) (fix.Subframe, Discard) {
	sf := fix.NewSubframe()
	sf.GNSSId = GNSSBeiDou
	sf.SV = sv
	o := fix.NewOrbit()
	o.Kind = fix.OrbitEphemeris
	o.Sat = sv

	i := bdsSubframeStride * 0
	frn1 := int(bitutil.GetBitU(buf, i+15, 3))
	sow1 := getbitu2(buf, i+18, 8, i+30, 12)
	o.Health = int(bitutil.GetBitU(buf, i+42, 1))
	o.AODC = int(bitutil.GetBitU(buf, i+43, 5))
	o.Week = int(bitutil.GetBitU(buf, i+60, 13))
	toc := float64(getbitu2(buf, i+73, 9, i+90, 8)) * 8.0
	o.Tgd[0] = float64(bitutil.GetBits(buf, i+98, 10)) * 0.1e-9
	o.Tgd[1] = float64(getbits2(buf, i+108, 4, i+120, 6)) * 0.1e-9
	o.F2 = float64(bitutil.GetBits(buf, i+214, 11)) * P2_66
	o.F0 = float64(getbits2(buf, i+225, 7, i+240, 17)) * P2_33
	o.F1 = float64(getbits2(buf, i+257, 5, i+270, 17)) * P2_50
	o.AODE = int(bitutil.GetBitU(buf, i+287, 5))

	i = bdsSubframeStride * 1
	frn2 := int(bitutil.GetBitU(buf, i+15, 3))
	sow2 := getbitu2(buf, i+18, 8, i+30, 12)
	o.Deln = float64(getbits2(buf, i+42, 10, i+60, 6)) * P2_43 * SC2RAD
	o.Cuc = float64(getbits2(buf, i+66, 16, i+90, 2)) * P2_31
	o.M0 = float64(getbits2(buf, i+92, 20, i+120, 12)) * P2_31 * SC2RAD
	o.E = float64(getbitu2(buf, i+132, 10, i+150, 22)) * P2_33
	o.Cus = float64(bitutil.GetBits(buf, i+180, 18)) * P2_31
	o.Crc = float64(getbits2(buf, i+198, 4, i+210, 14)) * P2_6
	o.Crs = float64(getbits2(buf, i+224, 8, i+240, 10)) * P2_6
	sqrtA := float64(getbitu2(buf, i+250, 12, i+270, 20)) * P2_19
	toe1 := bitutil.GetBitU(buf, i+290, 2)
	o.SqrtA = sqrtA

	i = bdsSubframeStride * 2
	frn3 := int(bitutil.GetBitU(buf, i+15, 3))
	sow3 := getbitu2(buf, i+18, 8, i+30, 12)
	toe2 := getbitu2(buf, i+42, 10, i+60, 5)
	o.I0 = float64(getbits2(buf, i+65, 17, i+90, 15)) * P2_31 * SC2RAD
	o.Cic = float64(getbits2(buf, i+105, 7, i+120, 11)) * P2_31
	o.OMGd = float64(getbits2(buf, i+131, 11, i+150, 13)) * P2_43 * SC2RAD
	o.Cis = float64(getbits2(buf, i+163, 9, i+180, 9)) * P2_31
	o.Idot = float64(getbits2(buf, i+189, 13, i+210, 1)) * P2_43 * SC2RAD
	o.OMG0 = float64(getbits2(buf, i+211, 21, i+240, 11)) * P2_31 * SC2RAD
	o.Omg = float64(getbits2(buf, i+251, 11, i+270, 21)) * P2_31 * SC2RAD
	o.Toe = float64(mergeTwoU(toe1, toe2, 15)) * 8.0

	if frn1 != 1 || frn2 != 2 || frn3 != 3 {
		return fix.NewSubframe(), DiscardBadPreamble
	}
	if sow2 != sow1+6 || sow3 != sow2+6 {
		return fix.NewSubframe(), DiscardBadPreamble
	}
	if toc != o.Toe {
		return fix.NewSubframe(), DiscardBadPreamble
	}
	if !o.Valid() {
		return fix.NewSubframe(), DiscardOrbitFloor
	}

	sf.FrameNum = 1
	sf.TOW = int(sow1)
	sf.Week = o.Week
	sf.Orbits[0] = o
	sf.NOrbit = 1
	sf.IsAlmanac = fix.OrbitEphemeris
	return sf, DiscardNone
}

// isGEOSlot reports BeiDou GEO satellite slots, which use a fixed zero
// inclination offset rather than the MEO/IGSO 0.30-semicircle
// reference inclination (spec.md §4.3).
func isGEOSlot(sv int) bool {
	return (sv >= 1 && sv <= 5) || (sv >= 59 && sv <= 63)
}

// ReconstructInclination adds the almanac's encoded delta-i to the
// constellation reference inclination for sv's slot: 0 semicircles
// for GEO, 0.30 semicircles for MEO/IGSO.
func ReconstructInclination(sv int, deltaI float64) float64 {
	if isGEOSlot(sv) {
		return deltaI * SC2RAD
	}
	return (0.30 + deltaI) * SC2RAD
}

// AmEpIDToSV maps an almanac page's AmEpID to the SV id it describes,
// taking the 1-63 value as the slot directly. BeiDou D1 calls the same
// field AmID. The page number is not an input, so pages whose SV
// depends on it are not told apart.
// Reduced scope: the full D1/D2 dispatch table (pages >30 multiplex
// several SVs per page across sub-pages) is not reproduced; see
// DESIGN.md.
func AmEpIDToSV(amEpID int) (sv int, ok bool) {
	if amEpID < 1 || amEpID > 63 {
		return 0, false
	}
	return amEpID, true
}
