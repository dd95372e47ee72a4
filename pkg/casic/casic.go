// Package casic implements the binary-protocol decoder (spec
// component C3) for a CASIC-style framing: a two-byte sync, a
// little-endian payload length, a one-byte class and one-byte id,
// the payload itself, and a four-byte checksum.
//
// Dispatch is by (class, id) table lookup with a default
// unknown-message handler that only logs (spec.md §9's open
// question: the decoded id set stays intentionally small —
// ACK-ACK, ACK-NAK, CFG-PRT, MON-VER, RXM-SFRBX — other ids are
// acknowledged by the dispatch table but carry no decoder). RXM-SFRBX
// is a raw navigation-message passthrough: this package only peels it
// off the wire into the ten raw LNAV words (SubframeWords); the
// actual C4 subframe decode runs in pkg/daemon, which alone holds the
// session/context state (current week, leap cache) the decoder needs.
package casic

import (
	"fmt"

	"github.com/ntpsec/gnssd/pkg/bitutil"
	"github.com/ntpsec/gnssd/pkg/lexer"
	"github.com/ntpsec/gnssd/pkg/merge"
)

const (
	sync1 = 0xBA
	sync2 = 0xCE

	headerLen   = 4 // length(2) + class(1) + id(1)
	frameFixed  = 2 + headerLen + 4 // sync(2) + header(4) + checksum(4)
	minFrameLen = 10
)

// Message class/id pairs this package actually decodes. Everything
// else dispatches to the unknown-message handler: log then drop.
const (
	ClassACK = 0x05
	IDAckNak = 0x00
	IDAckAck = 0x01

	ClassCFG  = 0x06
	IDCfgPrt  = 0x00

	ClassMON  = 0x0A
	IDMonVer  = 0x04

	ClassRXM = 0x02
	IDSfrbx  = 0x13
)

// Family implements lexer.Family for the CASIC framing.
type Family struct{}

func (Family) ID() lexer.FamilyID { return lexer.FamilyCASIC }

func (Family) Sync(b byte) bool { return b == sync1 }

// TryFrame implements the GROUND -> SYNC1 -> SYNC2 -> LENGTH_LO ->
// LENGTH_HI -> CLASS -> ID -> PAYLOAD(n) -> CHECKSUM(4) -> EMIT state
// machine described in spec.md §4.1.
func (Family) TryFrame(buf []byte) (length int, need int, ok bool, reason lexer.DiscardReason) {
	if len(buf) < 2 {
		return 0, 2, false, lexer.DiscardNone
	}
	if buf[1] != sync2 {
		return 0, 0, false, lexer.DiscardBadSync
	}
	if len(buf) < 2+headerLen {
		return 0, 2 + headerLen, false, lexer.DiscardNone
	}
	payloadLen := int(bitutil.U2LE(buf[2:4]))
	total := frameFixed + payloadLen

	if total < minFrameLen {
		return 0, 0, false, lexer.DiscardRunt
	}
	if payloadLen > lexer.MaxPayload {
		return 0, 0, false, lexer.DiscardOversize
	}
	if len(buf) < total {
		return 0, total, false, lexer.DiscardNone
	}

	body := buf[2 : total-4] // length, class, id, payload
	want := sum32LEWords(body)
	given := bitutil.U4LE(buf[total-4 : total])
	if want != given {
		return 0, 0, false, lexer.DiscardChecksumBad
	}
	return total, 0, true, lexer.DiscardNone
}

// sum32LEWords implements the CASIC checksum: a 32-bit unsigned sum
// of the body interpreted as consecutive little-endian 32-bit words.
// A final partial word (body length not a multiple of 4, i.e. an
// unaligned payload) is zero-extended for the purposes of the sum
// only; the stored length is never adjusted.
func sum32LEWords(body []byte) uint32 {
	var sum uint32
	var i int
	for ; i+4 <= len(body); i += 4 {
		sum += bitutil.U4LE(body[i : i+4])
	}
	if rem := len(body) - i; rem > 0 {
		var word [4]byte
		copy(word[:], body[i:])
		sum += bitutil.U4LE(word[:])
	}
	return sum
}

// Message is a decoded (class, id, payload) triple handed to the
// dispatch table.
type Message struct {
	Class, ID byte
	Payload   []byte
}

// ParseFrame splits a lexer-emitted CASIC frame into its message
// parts. frame must be a complete frame as returned by lexer.Frame.
func ParseFrame(frame []byte) Message {
	payloadLen := int(bitutil.U2LE(frame[2:4]))
	return Message{
		Class:   frame[4],
		ID:      frame[5],
		Payload: frame[6 : 6+payloadLen],
	}
}

// Decoder maps one (class, id) message to a merge delta. log carries
// a human-readable summary for the PROG-level trace (spec.md §7);
// decoders that only acknowledge a message without contributing state
// still return a log line.
type Decoder func(payload []byte) (delta merge.Delta, log string)

var dispatch = map[[2]byte]Decoder{
	{ClassACK, IDAckAck}: decodeAckAck,
	{ClassACK, IDAckNak}: decodeAckNak,
	{ClassCFG, IDCfgPrt}: decodeCfgPrt,
	{ClassMON, IDMonVer}: decodeMonVer,
	{ClassRXM, IDSfrbx}:  decodeSfrbx,
}

// Decode dispatches msg to its decoder. Unknown (class, id) pairs and
// payloads shorter than a message's declared minimum both return an
// empty delta and a log-only message, matching spec.md §7's
// message-level error recovery (no session mutation, PROG-level log).
func Decode(msg Message) (merge.Delta, string) {
	dec, ok := dispatch[[2]byte{msg.Class, msg.ID}]
	if !ok {
		return merge.Delta{}, fmt.Sprintf("CASIC: unknown class=%#02x id=%#02x (%d bytes), dropped", msg.Class, msg.ID, len(msg.Payload))
	}
	return dec(msg.Payload)
}

func decodeAckAck(payload []byte) (merge.Delta, string) {
	if len(payload) < 4 {
		return merge.Delta{}, "ACK-ACK: runt payload, dropped"
	}
	ackedClass, ackedID := payload[0], payload[2]
	return merge.Delta{}, fmt.Sprintf("ACK-ACK: class: %02X(%s), id: %02X", ackedClass, className(ackedClass), ackedID)
}

func decodeAckNak(payload []byte) (merge.Delta, string) {
	if len(payload) < 4 {
		return merge.Delta{}, "ACK-NAK: runt payload, dropped"
	}
	nakedClass, nakedID := payload[0], payload[2]
	return merge.Delta{}, fmt.Sprintf("ACK-NAK: class: %02X(%s), id: %02X", nakedClass, className(nakedClass), nakedID)
}

func decodeCfgPrt(payload []byte) (merge.Delta, string) {
	if len(payload) < 20 {
		return merge.Delta{}, "CFG-PRT: runt payload, dropped"
	}
	// Port identity/bitrate only touch session identity, never the
	// fix, so no mask bits are set here (spec.md §4.2: "message
	// subtypes mutate session identity via a narrow session-mutation
	// interface; they do not touch the fix").
	portID := payload[0]
	baud := bitutil.U4LE(payload[8:12])
	return merge.Delta{}, fmt.Sprintf("CFG-PRT: port=%d baud=%d", portID, baud)
}

func decodeMonVer(payload []byte) (merge.Delta, string) {
	if len(payload) < 40 {
		return merge.Delta{}, "MON-VER: runt payload, dropped"
	}
	swVersion := cString(payload[0:30])
	hwVersion := cString(payload[30:40])
	return merge.Delta{}, fmt.Sprintf("MON-VER: sw=%q hw=%q", swVersion, hwVersion)
}

// RXM-SFRBX carries a raw navigation subframe straight off the
// receiver, one CASIC message per GNSS subframe/string. Layout:
// gnssId(1), svId(1), reserved(1), numWords(1), then numWords*4 bytes
// of raw words, each a big-endian uint32 (bit 29 = D1, bit 0 = D30 for
// GPS/QZSS LNAV). gnssId uses this package's own GNSSGPS/GNSSBeiDou/
// GNSSGalileo/GNSSGLONASS numbering (pkg/subframe), not a particular
// receiver's wire encoding.
const sfrbxHeaderLen = 4

func decodeSfrbx(payload []byte) (merge.Delta, string) {
	if len(payload) < sfrbxHeaderLen {
		return merge.Delta{}, "RXM-SFRBX: runt payload, dropped"
	}
	gnssID, svID, numWords := payload[0], payload[1], int(payload[3])
	return merge.Delta{}, fmt.Sprintf("RXM-SFRBX: gnssId=%d svId=%d numWords=%d", gnssID, svID, numWords)
}

// SubframeWords extracts the ten raw 30-bit GPS/QZSS LNAV words from
// an RXM-SFRBX payload, along with the gnssId/svId the frame carries.
// It returns ok=false for any other message, a runt payload, or a
// numWords count other than 10 (the only subframe length pkg/subframe
// currently decodes from raw words). This package has no session
// state, so it only unpacks the wire bytes; the actual C4 decode and
// leap-second bookkeeping happen in pkg/daemon.
func SubframeWords(msg Message) (gnssID, sv int, words [10]uint32, ok bool) {
	if msg.Class != ClassRXM || msg.ID != IDSfrbx {
		return 0, 0, words, false
	}
	if len(msg.Payload) < sfrbxHeaderLen {
		return 0, 0, words, false
	}
	numWords := int(msg.Payload[3])
	if numWords != 10 || len(msg.Payload) < sfrbxHeaderLen+numWords*4 {
		return 0, 0, words, false
	}
	for i := 0; i < 10; i++ {
		off := sfrbxHeaderLen + i*4
		words[i] = bitutil.U4BE(msg.Payload[off : off+4])
	}
	return int(msg.Payload[0]), int(msg.Payload[1]), words, true
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func className(c byte) string {
	switch c {
	case ClassACK:
		return "ACK"
	case ClassCFG:
		return "CFG"
	case ClassMON:
		return "MON"
	default:
		return fmt.Sprintf("0x%02X", c)
	}
}
