package subframe

import (
	"testing"

	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/stretchr/testify/require"
)

// parityBit computes one of D25-D30 over data24's 24 bits (bit 1 is
// the MSB), XORed with d29star/d30star per the classical formula —
// the exact inverse of checkParity's xorRange, used here to build a
// self-consistent test fixture rather than to validate one.
func parityBit(data24 uint32, d29star, d30star bool, withD29 bool, idx ...int) bool {
	bit := func(n int) bool { return data24&(1<<uint(24-n)) != 0 }
	v := false
	for _, n := range idx {
		v = v != bit(n)
	}
	if withD29 {
		return d29star != v
	}
	return d30star != v
}

// encodeWord packs data24 into a transmitted 30-bit GPS word, applying
// the D30*-driven complement and computing real parity bits so that
// checkParity/word24 recover data24 exactly.
func encodeWord(data24 uint32, invert, d29star, d30star bool) uint32 {
	d25 := parityBit(data24, d29star, d30star, true, 1, 2, 3, 5, 6, 10, 11, 12, 13, 14, 17, 18, 20, 23)
	d26 := parityBit(data24, d29star, d30star, false, 2, 3, 4, 6, 7, 11, 12, 13, 14, 15, 18, 19, 21, 24)
	d27 := parityBit(data24, d29star, d30star, true, 1, 3, 4, 5, 7, 8, 12, 13, 14, 15, 16, 19, 20, 22)
	d28 := parityBit(data24, d29star, d30star, false, 2, 4, 5, 6, 8, 9, 13, 14, 15, 16, 17, 20, 21, 23)
	d29 := parityBit(data24, d29star, d30star, false, 1, 3, 5, 6, 7, 9, 10, 14, 15, 16, 17, 18, 21, 22, 24)
	d30 := parityBit(data24, d29star, d30star, true, 3, 5, 6, 8, 9, 10, 11, 13, 15, 19, 22, 23, 24)

	transmitted := data24
	if invert {
		transmitted ^= 0xFFFFFF
	}
	raw := transmitted << 6
	setBit := func(v bool, pos uint) {
		if v {
			raw |= 1 << pos
		}
	}
	setBit(d25, 5)
	setBit(d26, 4)
	setBit(d27, 3)
	setBit(d28, 2)
	setBit(d29, 1)
	setBit(d30, 0)
	return raw
}

// buildSubframe assembles ten transmitted words from TLM/HOW content
// and a 192-bit subframe-specific payload, carrying the D29*/D30*
// state and initial preamble inversion exactly as DecodeLNAV expects.
func buildSubframe(subframeID int, payload192 []byte, invertFirst bool) [10]uint32 {
	var words [10]uint32

	tlmData := uint32(0x8B) << 16 // preamble in top 8 bits, rest zero
	d29star, d30star := false, invertFirst
	words[0] = encodeWord(tlmData, invertFirst, d29star, d30star)
	d29star = (words[0]>>1)&1 != 0
	d30star = words[0]&1 != 0

	howData := uint32(subframeID&0x7) << 2 // TOW=0, alert=0, antispoof=0, id, 2 reserved
	words[1] = encodeWord(howData, d30star, d29star, d30star)
	d29star = (words[1]>>1)&1 != 0
	d30star = words[1]&1 != 0

	for k := 0; k < 8; k++ {
		data24 := bitutil.GetBitU(payload192, k*24, 24)
		words[2+k] = encodeWord(data24, d30star, d29star, d30star)
		d29star = (words[2+k]>>1)&1 != 0
		d30star = words[2+k]&1 != 0
	}
	return words
}

// TestDecodeLNAVSubframe1 reproduces the literal scenario: WN=2196,
// IODC=0x0A, af0 raw=0x0001F4 (over an inverted-preamble transport)
// decodes to WN=2196, IODC=10, af0=500*2^-31.
func TestDecodeLNAVSubframe1(t *testing.T) {
	payload := make([]byte, 24)
	bitutil.SetBitU(payload, 0, 10, 2196)  // WN
	bitutil.SetBitU(payload, 22, 2, 0)     // IODC MSB
	bitutil.SetBitU(payload, 112, 8, 0)    // Tgd = 0
	bitutil.SetBitU(payload, 120, 8, 0x0A) // IODC LSB
	bitutil.SetBitU(payload, 168, 22, 0x1F4)

	words := buildSubframe(1, payload, true)

	var leap LeapState
	sf, discard := DecodeLNAV(words, 2196, 0, &leap)
	require.Equal(t, DiscardNone, discard)
	require.Equal(t, 2196, sf.Week)
	require.Equal(t, 1, sf.NOrbit)
	require.Equal(t, 10, sf.Orbits[0].IODC)
	require.InDelta(t, 500.0*P2_31, sf.Orbits[0].F0, 1e-20)
}

func TestDecodeLNAVBadPreambleDiscards(t *testing.T) {
	words := buildSubframe(1, make([]byte, 24), true)
	words[0] = (words[0] &^ (0xFF << 22)) | (0x55 << 22) // neither 0x8B nor 0x74

	var leap LeapState
	_, discard := DecodeLNAV(words, 2196, 0, &leap)
	require.Equal(t, DiscardBadPreamble, discard)
}

func TestDecodeLNAVParityFailureDiscards(t *testing.T) {
	words := buildSubframe(1, make([]byte, 24), true)
	words[2] ^= 1 // flip one parity bit of a data word

	var leap LeapState
	_, discard := DecodeLNAV(words, 2196, 0, &leap)
	require.Equal(t, DiscardParity, discard)
}
