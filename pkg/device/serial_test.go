package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPathDefaults(t *testing.T) {
	port, brate, bsize, parity, stopb := splitPath("/dev/ttyUSB0")
	require.Equal(t, "/dev/ttyUSB0", port)
	require.Equal(t, defaultBaudRate, brate)
	require.Equal(t, defaultDataBits, bsize)
	require.Equal(t, rune(defaultParity), parity)
	require.Equal(t, defaultStopBits, stopb)
}

func TestSplitPathFullySpecified(t *testing.T) {
	port, brate, bsize, parity, stopb := splitPath("/dev/ttyUSB0:115200:7:E:2")
	require.Equal(t, "/dev/ttyUSB0", port)
	require.Equal(t, 115200, brate)
	require.Equal(t, 7, bsize)
	require.Equal(t, 'E', parity)
	require.Equal(t, 2, stopb)
}

func TestSplitPathPartialFallsBackToDefaults(t *testing.T) {
	port, brate, bsize, parity, stopb := splitPath("/dev/ttyUSB0:4800")
	require.Equal(t, "/dev/ttyUSB0", port)
	require.Equal(t, 4800, brate)
	require.Equal(t, defaultDataBits, bsize)
	require.Equal(t, rune(defaultParity), parity)
	require.Equal(t, defaultStopBits, stopb)
}

func TestSplitPathEmptySegmentsKeepDefaults(t *testing.T) {
	port, brate, _, _, _ := splitPath("/dev/ttyUSB0::8")
	require.Equal(t, "/dev/ttyUSB0", port)
	require.Equal(t, defaultBaudRate, brate)
}
