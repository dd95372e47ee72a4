// Package lexer implements the byte-driven frame recognizer (spec
// component C2): it consumes an arbitrary serial byte stream and
// emits complete, checksum-validated packets tagged by protocol
// family. It never blocks and never reads past its cursor, matching
// the cooperative single-threaded event loop described in spec.md §5.
package lexer

// FamilyID tags the protocol family a recognized frame belongs to.
type FamilyID int

const (
	FamilyUnknown FamilyID = iota
	FamilyCASIC
	FamilyNovatel
	FamilyText
)

func (f FamilyID) String() string {
	switch f {
	case FamilyCASIC:
		return "CASIC"
	case FamilyNovatel:
		return "NOVATEL"
	case FamilyText:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

// DiscardReason explains why the lexer dropped bytes instead of
// emitting a frame (spec.md §7, frame-level errors).
type DiscardReason int

const (
	DiscardNone DiscardReason = iota
	DiscardBadSync
	DiscardRunt
	DiscardOversize
	DiscardChecksumBad
	DiscardLengthMismatch
)

func (r DiscardReason) String() string {
	switch r {
	case DiscardBadSync:
		return "BAD_SYNC"
	case DiscardRunt:
		return "RUNT"
	case DiscardOversize:
		return "OVERSIZE"
	case DiscardChecksumBad:
		return "CHECKSUM_BAD"
	case DiscardLengthMismatch:
		return "LENGTH_MISMATCH"
	default:
		return "NONE"
	}
}

// EventKind is the lexer's three-way contract result: need more
// bytes, a complete frame, or a discard.
type EventKind int

const (
	EventNeedMore EventKind = iota
	EventEmit
	EventDiscard
)

// Event is one Step() result.
type Event struct {
	Kind   EventKind
	Family FamilyID
	// Start/Length locate the emitted frame within the lexer's
	// internal buffer (see Frame); valid only when Kind == EventEmit.
	Start, Length int
	// Consumed is how many bytes Step advanced the cursor by; valid
	// for EventDiscard (usually 1, "one byte past the last failed
	// sync byte") and EventEmit (== Length).
	Consumed int
	Reason   DiscardReason
}

// MaxPayload is the hard cap on binary-family payload size (spec.md
// §4.1): oversize payloads are dropped, not fatal.
const MaxPayload = 2048

// Family recognizes and frames one protocol. TryFrame is called with
// the unconsumed tail of the buffer (buf[0] is the first unread
// byte). It must not read past len(buf).
//
// Return contract:
//   - ok==true: a complete, checksum-validated frame of exactly
//     `length` bytes starts at buf[0].
//   - ok==false, need>0: not enough bytes yet to decide; the caller
//     must wait for at least `need` total bytes before retrying.
//   - ok==false, need==0: buf[0] is not (or no longer) a valid start
//     for this family. With a reason other than DiscardNone, Step
//     discards that one byte at once, without trying later families;
//     with DiscardNone, Step goes on to the next family.
type Family interface {
	ID() FamilyID
	// Sync reports whether b can start a frame of this family.
	Sync(b byte) bool
	TryFrame(buf []byte) (length int, need int, ok bool, reason DiscardReason)
}

// Lexer recognizes frames from an append-only byte buffer. Callers
// append new bytes with Feed and drain events with Step until
// EventNeedMore, matching the "need-more-bytes / emit-packet / discard"
// contract of spec.md §4.1.
type Lexer struct {
	buf      []byte
	cursor   int
	families []Family
	locked   FamilyID // FamilyUnknown until a family wins and sticks
}

// New builds a Lexer that simultaneously tracks every supplied family
// while in GROUND state (spec.md's "protocol sniffing").
func New(families ...Family) *Lexer {
	return &Lexer{families: families}
}

// Feed appends newly-arrived bytes to the lexer's input buffer. The
// buffer only grows; Compact should be called periodically (e.g. at
// the top of the event loop) to reclaim consumed bytes.
func (l *Lexer) Feed(data []byte) {
	l.buf = append(l.buf, data...)
}

// Compact drops bytes before the cursor so the buffer doesn't grow
// without bound across many Step calls.
func (l *Lexer) Compact() {
	if l.cursor == 0 {
		return
	}
	l.buf = append(l.buf[:0], l.buf[l.cursor:]...)
	l.cursor = 0
}

// Lock pins the lexer to a single family, per spec.md's "sticky-driver
// override": once a device's protocol is known by other means
// (explicit driver reassignment), sniffing the other families is
// wasted work and risks misclassifying a corrupt frame.
func (l *Lexer) Lock(id FamilyID) { l.locked = id }

// Unlock clears a previous Lock, re-enabling full protocol sniffing.
func (l *Lexer) Unlock() { l.locked = FamilyUnknown }

// Step advances the lexer by at most one frame or one discard. It
// returns EventNeedMore when the buffer holds no decidable frame yet.
func (l *Lexer) Step() Event {
	if l.cursor >= len(l.buf) {
		return Event{Kind: EventNeedMore}
	}

	candidates := l.candidateFamilies()
	b := l.buf[l.cursor]

	var anySynced bool
	bestNeed := 0
	for _, fam := range candidates {
		if !fam.Sync(b) {
			continue
		}
		anySynced = true
		length, need, ok, reason := fam.TryFrame(l.buf[l.cursor:])
		if ok {
			if !fam.ID().isText() && length > MaxPayload+16 {
				l.cursor++
				return Event{Kind: EventDiscard, Family: fam.ID(), Reason: DiscardOversize, Consumed: 1}
			}
			start := l.cursor
			l.cursor += length
			if l.locked == FamilyUnknown {
				l.locked = fam.ID()
			}
			return Event{Kind: EventEmit, Family: fam.ID(), Start: start, Length: length, Consumed: length}
		}
		if need > 0 {
			if bestNeed == 0 || need > bestNeed {
				bestNeed = need
			}
			continue
		}
		if reason != DiscardNone {
			l.cursor++
			return Event{Kind: EventDiscard, Family: fam.ID(), Reason: reason, Consumed: 1}
		}
	}

	if !anySynced {
		l.cursor++
		return Event{Kind: EventDiscard, Family: FamilyUnknown, Reason: DiscardBadSync, Consumed: 1}
	}
	if bestNeed > 0 && l.cursor+bestNeed > len(l.buf) {
		return Event{Kind: EventNeedMore}
	}
	// Every synced family rejected this byte outright (need==0, no
	// frame) without a stated reason: resync past it.
	l.cursor++
	return Event{Kind: EventDiscard, Family: FamilyUnknown, Reason: DiscardBadSync, Consumed: 1}
}

func (l *Lexer) candidateFamilies() []Family {
	if l.locked == FamilyUnknown {
		return l.families
	}
	for _, fam := range l.families {
		if fam.ID() == l.locked {
			return []Family{fam}
		}
	}
	return l.families
}

func (f FamilyID) isText() bool { return f == FamilyText }

// Frame returns the bytes of an emitted event; the returned slice
// aliases the lexer's internal buffer and is only valid until the
// next Feed/Compact call, matching "the emitted packet's bytes are
// contiguous in an output buffer that outlives the call" (the call,
// not the session).
func (l *Lexer) Frame(ev Event) []byte {
	return l.buf[ev.Start : ev.Start+ev.Length]
}
