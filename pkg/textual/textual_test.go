package textual

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntpsec/gnssd/pkg/fix"
)

// TestEncodeTPVScenario reproduces spec.md scenario S4 verbatim.
func TestEncodeTPVScenario(t *testing.T) {
	f := fix.New()
	f.Mode = fix.Mode3D
	f.Status = fix.StatusDGPS
	f.Lat = 37.123456789
	f.Lon = -122.987654321
	f.AltHAE = 12.3456

	line := EncodeTPV("", f)
	require.True(t, strings.HasSuffix(line, "}\r\n"))

	want := `{"class":"TPV","mode":3,"status":2,"lat":37.123456789,"lon":-122.987654321,"altHAE":12.3456`
	require.True(t, strings.HasPrefix(line, want), "got %q", line)
	require.NotContains(t, line, `"track"`)
}

// TestEscapeStringScenario reproduces spec.md scenario S6 verbatim: the
// raw input is the six characters a, b, 0x01, c, ", d.
func TestEscapeStringScenario(t *testing.T) {
	input := "ab\x01c\"d"
	require.Equal(t, `ab\u0001c\"d`, EscapeString(input))
}

func TestEscapeStringPassesThroughValidUTF8(t *testing.T) {
	require.Equal(t, "café", EscapeString("café"))
}

func TestEscapeStringReplacesMalformedLeadByte(t *testing.T) {
	malformed := string([]byte{0xC3}) // truncated 2-byte sequence
	require.Equal(t, "\\u00c3", EscapeString(malformed))
}

func TestFormatFloatNormalizesNearZero(t *testing.T) {
	require.Equal(t, "0", formatFloat(-0.0000001, 4))
	require.Equal(t, "1.2346", formatFloat(1.23456, 4))
}

func TestEncodeTPVOmitsNonFinite(t *testing.T) {
	line := EncodeTPV("", fix.New())
	require.NotContains(t, line, `"lat"`)
	require.NotContains(t, line, `"altHAE"`)
	require.Contains(t, line, `"mode":0`)
}

func TestEncodeSUBFRAME(t *testing.T) {
	sf := fix.NewSubframe()
	sf.GNSSId = 0
	sf.SV = 12
	sf.Week = 2196
	line := EncodeSUBFRAME("/dev/ttyGPS0", sf)
	require.Contains(t, line, `"class":"SUBFRAME"`)
	require.Contains(t, line, `"svId":12`)
	require.Contains(t, line, `"week":2196`)
}
