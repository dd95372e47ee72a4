package novatel

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/ntpsec/gnssd/pkg/fix"
	"github.com/ntpsec/gnssd/pkg/lexer"
	"github.com/ntpsec/gnssd/pkg/merge"
	"github.com/stretchr/testify/require"
)

func buildFrame(msgID int, body []byte) []byte {
	frame := make([]byte, headerLen+len(body)+crcLen)
	frame[0], frame[1], frame[2] = sync1, sync2, sync3
	frame[offMsgID] = byte(msgID)
	frame[offMsgID+1] = byte(msgID >> 8)
	frame[offMsgLen] = byte(len(body))
	frame[offMsgLen+1] = byte(len(body) >> 8)
	copy(frame[headerLen:], body)

	sum := crc32(frame[:headerLen+len(body)])
	tail := frame[headerLen+len(body):]
	tail[0] = byte(sum)
	tail[1] = byte(sum >> 8)
	tail[2] = byte(sum >> 16)
	tail[3] = byte(sum >> 24)
	return frame
}

func bestPosBody(lat, lon, height float64) []byte {
	body := make([]byte, 40)
	putR8LE(body[8:16], lat)
	putR8LE(body[16:24], lon)
	putR8LE(body[24:32], height)
	return body
}

func putR8LE(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func TestTryFrameRoundTrip(t *testing.T) {
	frame := buildFrame(IDBestPos, bestPosBody(37.5, -122.25, 12.3))
	fam := Family{}
	length, _, ok, reason := fam.TryFrame(frame)
	require.True(t, ok, "reason=%v", reason)
	require.Equal(t, len(frame), length)
}

func TestBestPosDecode(t *testing.T) {
	frame := buildFrame(IDBestPos, bestPosBody(37.5, -122.25, 12.3))
	msg := ParseFrame(frame)
	require.Equal(t, IDBestPos, msg.ID)

	delta, log := Decode(msg)
	require.Equal(t, merge.LatLonSet|merge.AltSet, delta.Mask)
	require.InDelta(t, 37.5, delta.Fix.Lat, 1e-9)
	require.InDelta(t, -122.25, delta.Fix.Lon, 1e-9)
	require.InDelta(t, 12.3, delta.Fix.AltHAE, 1e-9)
	require.False(t, fix.IsFinite(delta.Fix.AltMSL), "untouched altitude fields must stay NaN")
	require.Contains(t, log, "BESTPOS:")
}

func TestChecksumMismatchDiscarded(t *testing.T) {
	frame := buildFrame(IDBestPos, bestPosBody(0, 0, 0))
	frame[len(frame)-1] ^= 0xFF
	fam := Family{}
	_, _, ok, reason := fam.TryFrame(frame)
	require.False(t, ok)
	require.Equal(t, lexer.DiscardChecksumBad, reason)
}

func TestUnknownMessageLogsAndDrops(t *testing.T) {
	delta, log := Decode(Message{ID: 999, Body: []byte{1, 2}})
	require.Zero(t, delta.Mask)
	require.Contains(t, log, "unknown id=999")
}
