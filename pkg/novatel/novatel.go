// Package novatel implements a second, illustrative binary-protocol
// family (OEM4/OEM6-style framing) whose sole purpose is to exercise
// the lexer's protocol-sniffing and sticky-driver-lock contract across
// two simultaneously enabled binary families. It is not intended to
// reach the message-decoding depth of the CASIC family: only the
// framing and checksum, plus a single illustrative message decoder,
// are implemented.
package novatel

import (
	"fmt"

	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/ntpsec/gnssd/pkg/fix"
	"github.com/ntpsec/gnssd/pkg/lexer"
	"github.com/ntpsec/gnssd/pkg/merge"
)

const (
	sync1 = 0xAA
	sync2 = 0x44
	sync3 = 0x12

	headerLen   = 28 // fixed OEM4 header length
	crcLen      = 4
	minFrameLen = headerLen + crcLen
)

// Header field offsets within the fixed 28-byte header (spec.md's
// "supplemented feature" only needs the two fields the lexer and the
// illustrative decoder actually use).
const (
	offMsgID  = 4
	offMsgLen = 8
)

// Message ids this package decodes.
const (
	IDBestPos = 42
)

// Family implements lexer.Family for the OEM4 framing.
type Family struct{}

func (Family) ID() lexer.FamilyID { return lexer.FamilyNovatel }

func (Family) Sync(b byte) bool { return b == sync1 }

func (Family) TryFrame(buf []byte) (length int, need int, ok bool, reason lexer.DiscardReason) {
	if len(buf) < 3 {
		return 0, 3, false, lexer.DiscardNone
	}
	if buf[1] != sync2 || buf[2] != sync3 {
		return 0, 0, false, lexer.DiscardBadSync
	}
	if len(buf) < headerLen {
		return 0, headerLen, false, lexer.DiscardNone
	}
	bodyLen := int(bitutil.U2LE(buf[offMsgLen : offMsgLen+2]))
	total := headerLen + bodyLen + crcLen

	if total < minFrameLen {
		return 0, 0, false, lexer.DiscardRunt
	}
	if bodyLen > lexer.MaxPayload {
		return 0, 0, false, lexer.DiscardOversize
	}
	if len(buf) < total {
		return 0, total, false, lexer.DiscardNone
	}

	want := crc32(buf[:total-crcLen])
	given := bitutil.U4LE(buf[total-crcLen : total])
	if want != given {
		return 0, 0, false, lexer.DiscardChecksumBad
	}
	return total, 0, true, lexer.DiscardNone
}

// crc32 is the OEMV 32-bit CRC: bit-reversed polynomial 0xEDB88320,
// computed byte-at-a-time with no table (NovAtel OEMV firmware
// manual, CRC-32 note).
func crc32(buf []byte) uint32 {
	const poly = 0xEDB88320
	var crc uint32
	for _, b := range buf {
		crc ^= uint32(b)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// Message is a decoded header+body view of a complete OEM4 frame.
type Message struct {
	ID   int
	Body []byte
}

// ParseFrame splits a lexer-emitted OEM4 frame into its header id and
// body. frame must be a complete frame as returned by lexer.Frame.
func ParseFrame(frame []byte) Message {
	bodyLen := int(bitutil.U2LE(frame[offMsgLen : offMsgLen+2]))
	id := int(bitutil.U2LE(frame[offMsgID : offMsgID+2]))
	return Message{ID: id, Body: frame[headerLen : headerLen+bodyLen]}
}

// Decode dispatches msg to its decoder. Only BESTPOS is decoded; every
// other id is logged and dropped, matching the CASIC family's
// unknown-message recovery (spec.md §7).
func Decode(msg Message) (merge.Delta, string) {
	if msg.ID != IDBestPos {
		return merge.Delta{}, fmt.Sprintf("NOVATEL: unknown id=%d (%d bytes), dropped", msg.ID, len(msg.Body))
	}
	return decodeBestPos(msg.Body)
}

// decodeBestPos decodes just enough of BESTPOS (lat/lon/height as
// float64, little-endian, at fixed offsets past the solution-status
// and position-type words) to assert a position fix, demonstrating
// that a second family can drive the same merge.Delta contract the
// CASIC decoders use.
func decodeBestPos(body []byte) (merge.Delta, string) {
	if len(body) < 40 {
		return merge.Delta{}, "BESTPOS: runt payload, dropped"
	}
	lat := bitutil.R8LE(body[8:16])
	lon := bitutil.R8LE(body[16:24])
	height := bitutil.R8LE(body[24:32])

	d := merge.Delta{Fix: fix.New(), Mask: merge.LatLonSet | merge.AltSet}
	d.Fix.Lat, d.Fix.Lon = lat, lon
	d.Fix.AltHAE = height
	return d, fmt.Sprintf("BESTPOS: lat=%.7f lon=%.7f height=%.3f", lat, lon, height)
}
