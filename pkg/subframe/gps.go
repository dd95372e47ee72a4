package subframe

import (
	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/ntpsec/gnssd/pkg/fix"
)

// LeapState is the process-wide leap-second notify state GPS subframe
// 4 page 18 updates (spec.md §3.5, §4.3). Updates are applied by
// DecodeLNAV only when it successfully decodes a page-18 subframe;
// callers pass the current GPS week so the WNlsf window check can run.
type LeapState struct {
	Leap    int  // cached leap-second integer
	Valid   bool
	Notify  NotifyKind
}

// NotifyKind is the leap pending-event flag gpsd's SUBFRAME class
// reports to clients.
type NotifyKind int

const (
	NoWarning NotifyKind = iota
	AddSecond
	DelSecond
)

// subframeBodyStart is the bit offset of subframes 1-4's body, past
// TLM(24)/TOW(17)/reserved(2)/subframe-id(3)/reserved(2).
const subframeBodyStart = 24 + 17 + 2 + 3 + 2

// DecodeLNAV decodes one GPS/QZSS LNAV subframe from ten raw 30-bit
// words (bit 29 of each uint32 is D1, bit 0 is D30) and applies the
// classical preamble/parity pipeline from spec.md §4.3. currentWeek
// and currentTOW (seconds of week) drive the subframe-4-page-18
// leap-second window check; leap is updated in place on success.
//
// words[1]'s bits 19-21 select which of subframes 1-5 this is
// (IS-GPS-200 HOW subframe ID); the remaining 8 words are interpreted
// accordingly.
func DecodeLNAV(words [10]uint32, currentWeek int, currentTOW float64, leap *LeapState) (fix.Subframe, Discard) {
	preambleByte := byte(words[0] >> 22)
	var initialInvert bool
	switch preambleByte {
	case gpsPreambleNormal:
		initialInvert = false
	case gpsPreambleInverted:
		initialInvert = true
	default:
		return fix.NewSubframe(), DiscardBadPreamble
	}

	data := make([]uint32, 10)
	d29star, d30star := false, initialInvert
	for i, raw := range words {
		invert := d30star
		if i == 0 {
			invert = initialInvert
		}
		if !checkParity(raw, d29star, d30star) {
			return fix.NewSubframe(), DiscardParity
		}
		data[i] = word24(raw, invert)
		d29star = (raw>>1)&1 != 0
		d30star = raw&1 != 0
	}

	buf := bitsFromWords(data)
	// bit 24 lands at the start of the HOW word's data (word[0]/TLM's
	// 24 data bits are skipped), mirroring the packed-word layout
	// every subframe decoder in this package shares.
	c := bitutil.NewCursor(buf, 24)
	tow := float64(c.U(17)) * 6.0
	c.Skip(2)
	subframeID := int(c.U(3))

	sf := fix.NewSubframe()
	sf.GNSSId = GNSSGPS
	sf.TOW = int(tow)
	sf.FrameNum = subframeID

	switch subframeID {
	case 1:
		return decodeLNAVSubframe1(buf, sf)
	case 2:
		return decodeLNAVSubframe2(buf, sf)
	case 3:
		return decodeLNAVSubframe3(buf, sf)
	case 4:
		return decodeLNAVSubframe4(buf, sf, currentWeek, currentTOW, leap)
	case 5:
		sf.PageNum = -1
		return sf, DiscardNone
	default:
		return fix.NewSubframe(), DiscardBadPreamble
	}
}

// decodeLNAVSubframe1 extracts week number, clock terms, and IODC.
// Field widths, order, and scale factors (2^-31 seconds for af0,
// 2^-55 for af2, and so on) follow the same GetBits/scale-factor
// style the teacher's RTCM ephemeris decoder uses for the equivalent
// GPS clock block (pkg/gnssgo/rtcm/ephemeris.go, legacy.go): WN(10),
// code(2), ura(4), health(6), iodc-msb(2), flag(1)+87 reserved,
// Tgd(8), iodc-lsb(8), toc(16), af2(8), af1(16), af0(22).
func decodeLNAVSubframe1(buf []byte, sf fix.Subframe) (fix.Subframe, Discard) {
	o := fix.NewOrbit()
	o.Kind = fix.OrbitEphemeris

	c := bitutil.NewCursor(buf, subframeBodyStart) // at WN
	week := int(c.U(10))
	c.Skip(2) // code
	c.Skip(4) // ura
	o.Health = int(c.U(6))
	iodcMSB := int(c.U(2))
	c.Skip(1 + 87) // flag + reserved
	tgd := c.S(8)
	iodcLSB := int(c.U(8))
	toc := float64(c.U(16)) * 16.0
	o.F2 = float64(c.S(8)) * P2_55
	o.F1 = float64(c.S(16)) * P2_43
	o.F0 = float64(c.S(22)) * P2_31

	o.IODC = (iodcMSB << 8) + iodcLSB
	if tgd != -128 {
		o.Tgd[0] = float64(tgd) * P2_31
	}
	o.Toc = toc
	sf.Week = week
	sf.Orbits[0] = o
	sf.NOrbit = 1
	sf.IsAlmanac = fix.OrbitEphemeris
	return sf, DiscardNone
}

func decodeLNAVSubframe2(buf []byte, sf fix.Subframe) (fix.Subframe, Discard) {
	o := fix.NewOrbit()
	o.Kind = fix.OrbitEphemeris

	c := bitutil.NewCursor(buf, subframeBodyStart)
	o.IODE = int(c.U(8))
	o.Crs = float64(c.S(16)) * P2_5
	o.Deln = float64(c.S(16)) * P2_43 * SC2RAD
	o.M0 = float64(c.S(32)) * P2_31 * SC2RAD
	o.Cuc = float64(c.S(16)) * P2_29
	o.E = float64(c.U(32)) * P2_33
	o.Cus = float64(c.S(16)) * P2_29
	sqrtA := float64(c.U(32)) * P2_19
	o.Toe = float64(c.U(16)) * 16.0

	o.SqrtA = sqrtA
	if !o.Valid() {
		return fix.NewSubframe(), DiscardOrbitFloor
	}
	sf.Orbits[0] = o
	sf.NOrbit = 1
	sf.IsAlmanac = fix.OrbitEphemeris
	return sf, DiscardNone
}

func decodeLNAVSubframe3(buf []byte, sf fix.Subframe) (fix.Subframe, Discard) {
	o := fix.NewOrbit()
	o.Kind = fix.OrbitEphemeris

	c := bitutil.NewCursor(buf, subframeBodyStart)
	o.Cic = float64(c.S(16)) * P2_29
	o.OMG0 = float64(c.S(32)) * P2_31 * SC2RAD
	o.Cis = float64(c.S(16)) * P2_29
	o.I0 = float64(c.S(32)) * P2_31 * SC2RAD
	o.Crc = float64(c.S(16)) * P2_5
	o.Omg = float64(c.S(32)) * P2_31 * SC2RAD
	o.OMGd = float64(c.S(24)) * P2_43 * SC2RAD
	iode := int(c.U(8))
	o.Idot = float64(c.S(14)) * P2_43 * SC2RAD

	o.IODE = iode
	sf.Orbits[0] = o
	sf.NOrbit = 1
	sf.IsAlmanac = fix.OrbitEphemeris
	return sf, DiscardNone
}

// decodeLNAVSubframe4 handles only page 18 (the Klobuchar ionosphere
// terms and the UTC/leap-second parameters); every other subframe-4
// page is classified but not field-decoded, matching the reduced
// almanac scope this package carries (see DESIGN.md).
func decodeLNAVSubframe4(buf []byte, sf fix.Subframe, currentWeek int, currentTOW float64, leap *LeapState) (fix.Subframe, Discard) {
	c := bitutil.NewCursor(buf, subframeBodyStart)
	dataID := int(c.U(2))
	svID := int(c.U(6))
	sf.PageNum = svID

	if dataID == 0 || svID != 56 { // page 18 broadcasts on SV/page id 56
		return sf, DiscardNone
	}

	alpha0 := float64(c.S(8)) * P2_30
	alpha1 := float64(c.S(8)) * P2_27
	alpha2 := float64(c.S(8)) * P2_24
	alpha3 := float64(c.S(8)) * P2_24
	beta0 := float64(c.S(8)) * P2P11
	beta1 := float64(c.S(8)) * P2P14
	beta2 := float64(c.S(8)) * P2P16
	beta3 := float64(c.S(8)) * P2P16
	a1 := float64(c.S(24)) * P2_50
	a0 := float64(c.S(32)) * P2_30
	tot := float64(c.U(8)) * P2P12
	wnt := int(c.U(8))
	deltaLS := int(c.S(8))
	wnlsf := int(c.U(8))
	dn := int(c.S(8))
	deltaLSF := int(c.S(8))

	sf.Aux = fix.AuxIonoUTC
	sf.HasIon, sf.HasUTC = true, true
	sf.Ion = [8]float64{alpha0, alpha1, alpha2, alpha3, beta0, beta1, beta2, beta3}
	sf.UTC = [8]float64{a0, a1, tot, float64(wnt), float64(deltaLS), float64(wnlsf), float64(dn), float64(deltaLSF)}

	applyLeapWindow(leap, currentWeek, currentTOW, wnlsf, dn, deltaLS, deltaLSF)
	return sf, DiscardNone
}

// applyLeapWindow implements spec.md §4.3's leap-notify window: notify
// is set only when WNlsf mod 256 matches the current week mod 256 and
// "now" falls within the day preceding DN; outside that window notify
// clears to NoWarning. The cached leap integer is always updated.
func applyLeapWindow(leap *LeapState, currentWeek int, currentTOW float64, wnlsf, dn, deltaLS, deltaLSF int) {
	leap.Leap = deltaLS
	leap.Valid = true

	if wnlsf%256 != currentWeek%256 {
		leap.Notify = NoWarning
		return
	}
	secondsPerDay := 86400.0
	dayStart := float64(dn-1) * secondsPerDay
	dayEnd := float64(dn) * secondsPerDay
	inWindow := currentTOW >= dayStart-secondsPerDay && currentTOW < dayEnd-secondsPerDay
	if !inWindow {
		leap.Notify = NoWarning
		return
	}
	switch {
	case deltaLSF > deltaLS:
		leap.Notify = AddSecond
	case deltaLSF < deltaLS:
		leap.Notify = DelSecond
	default:
		leap.Notify = NoWarning
	}
}
