package subframe

import (
	"testing"

	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/stretchr/testify/require"
)

func TestClassifyString(t *testing.T) {
	cases := []struct {
		n    int
		want StringClass
		ok   bool
	}{
		{1, StringEphemeris, true},
		{4, StringEphemeris, true},
		{5, StringTime, true},
		{6, StringAlmanac, true},
		{15, StringAlmanac, true},
		{0, StringUnknown, false},
		{16, StringUnknown, false},
	}
	for _, c := range cases {
		got, ok := ClassifyString(c.n)
		require.Equal(t, c.want, got)
		require.Equal(t, c.ok, ok)
	}
}

// setbitg writes an n-bit sign-magnitude field, the inverse of getbitg.
func setbitg(buf []byte, pos, ln int, v float64) {
	if v < 0 {
		bitutil.SetBitU(buf, pos, 1, 1)
		bitutil.SetBitU(buf, pos+1, ln-1, uint32(-v))
	} else {
		bitutil.SetBitU(buf, pos, 1, 0)
		bitutil.SetBitU(buf, pos+1, ln-1, uint32(v))
	}
}

// buildEphemerisBuf assembles the concatenated frame 1-4 data-bit
// buffer DecodeEphemeris expects, with frame numbers and slot set and
// every other field left at zero.
func buildEphemerisBuf(slot int, pos0 float64) []byte {
	buf := make([]byte, 42)
	bitutil.SetBitU(buf, 1, 4, 1) // frn1
	setbitg(buf, 50, 27, pos0)    // Pos[0], raw units (pre P2_11*1e3 scale)

	bitutil.SetBitU(buf, 81, 4, 2) // frn2

	bitutil.SetBitU(buf, 161, 4, 3) // frn3

	bitutil.SetBitU(buf, 241, 4, 4) // frn4
	bitutil.SetBitU(buf, 310, 5, uint32(slot))

	return buf
}

func TestDecodeEphemerisHappyPath(t *testing.T) {
	// 6e6 raw units * P2_11 * 1e3 ~= 2.93e6 m, past EarthRadiusFloorM.
	buf := buildEphemerisBuf(5, 6e6)

	sf, discard := DecodeEphemeris(buf)
	require.Equal(t, DiscardNone, discard)
	require.Equal(t, 5, sf.SV)
	require.Equal(t, GNSSGLONASS, sf.GNSSId)
	require.Equal(t, 1, sf.NOrbit)
	require.Equal(t, 5, sf.Orbits[0].Sat)
}

func TestDecodeEphemerisFrameMismatchDiscards(t *testing.T) {
	buf := buildEphemerisBuf(5, 6e6)
	bitutil.SetBitU(buf, 161, 4, 9) // corrupt frn3

	_, discard := DecodeEphemeris(buf)
	require.Equal(t, DiscardBadPreamble, discard)
}

func TestDecodeEphemerisBadSlotDiscards(t *testing.T) {
	buf := buildEphemerisBuf(30, 6e6) // out of the 1-24 slot range

	_, discard := DecodeEphemeris(buf)
	require.Equal(t, DiscardDummySV, discard)
}

func TestDecodeEphemerisOrbitFloorDiscards(t *testing.T) {
	buf := buildEphemerisBuf(5, 1.0) // position far too small

	_, discard := DecodeEphemeris(buf)
	require.Equal(t, DiscardOrbitFloor, discard)
}

func TestHammingOKAcceptsZeroSyndrome(t *testing.T) {
	// An all-zero string (every parity check trivially balanced) has
	// zero syndrome bits set, which HammingOK accepts.
	buf := make([]byte, 11)
	require.True(t, HammingOK(buf))
}
