package subframe

import (
	"testing"

	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/stretchr/testify/require"
)

func TestReconstructInclinationGEOvsMEO(t *testing.T) {
	require.InDelta(t, 0.05*SC2RAD, ReconstructInclination(2, 0.05), 1e-12, "GEO slot: no reference offset")
	require.InDelta(t, 0.35*SC2RAD, ReconstructInclination(12, 0.05), 1e-12, "MEO/IGSO slot: +0.30 semicircle reference")
}

func TestAmEpIDToSVRange(t *testing.T) {
	_, ok := AmEpIDToSV(0)
	require.False(t, ok)
	sv, ok := AmEpIDToSV(30)
	require.True(t, ok)
	require.Equal(t, 30, sv)
	_, ok = AmEpIDToSV(64)
	require.False(t, ok)
}

// setTwoPart writes a value split across getbitu2's two fields so a
// decoder reading it back with getbitu2(p1,l1,p2,l2) recovers value.
func setTwoPart(buf []byte, p1, l1, p2, l2 int, value uint32) {
	bitutil.SetBitU(buf, p1, l1, value>>uint(l2))
	bitutil.SetBitU(buf, p2, l2, value&((1<<uint(l2))-1))
}

func TestDecodeD1FrameIDMismatchDiscards(t *testing.T) {
	buf := make([]byte, 130)
	bitutil.SetBitU(buf, 0*bdsSubframeStride+15, 3, 1)
	bitutil.SetBitU(buf, 1*bdsSubframeStride+15, 3, 5) // wrong: should be 2
	bitutil.SetBitU(buf, 2*bdsSubframeStride+15, 3, 3)

	_, discard := DecodeD1(buf, 7)
	require.Equal(t, DiscardBadPreamble, discard)
}

func TestDecodeD1SOWMismatchDiscards(t *testing.T) {
	buf := make([]byte, 130)
	bitutil.SetBitU(buf, 0*bdsSubframeStride+15, 3, 1)
	bitutil.SetBitU(buf, 1*bdsSubframeStride+15, 3, 2)
	bitutil.SetBitU(buf, 2*bdsSubframeStride+15, 3, 3)

	setTwoPart(buf, 0*bdsSubframeStride+18, 8, 0*bdsSubframeStride+30, 12, 100)
	setTwoPart(buf, 1*bdsSubframeStride+18, 8, 1*bdsSubframeStride+30, 12, 999) // should be 106
	setTwoPart(buf, 2*bdsSubframeStride+18, 8, 2*bdsSubframeStride+30, 12, 112)

	_, discard := DecodeD1(buf, 7)
	require.Equal(t, DiscardBadPreamble, discard)
}
