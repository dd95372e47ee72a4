// Package session holds the per-device and process-wide state
// described in spec.md §3.4/§3.5: one Session per attached GNSS
// receiver, and a single shared Context for leap-second/week-number
// bookkeeping. Session owns its own buffers and fix record; Context
// is shared immutably across sessions except for the leap/week
// updates serialized by the single-threaded main loop (spec.md §5),
// mirroring how the teacher's pkg/server.Server holds its own mutable
// state behind a mutex while reusing a process-wide *http.Client.
package session

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/ntpsec/gnssd/pkg/fix"
	"github.com/ntpsec/gnssd/pkg/lexer"
	"github.com/ntpsec/gnssd/pkg/subframe"
)

// Session is one device's canonical state (spec.md §3.4).
type Session struct {
	ID uuid.UUID // per-session correlation id; not added to log lines or records

	Fix      fix.Fix
	Attitude fix.Attitude
	DOP      fix.DOP
	Subframe fix.Subframe

	Chars         uint64 // bytes received
	SubframeCount uint64

	BaudRate int
	DataBits int
	StopBits int
	Parity   byte

	Driver        string // driver identity, e.g. "CASIC", "NOVATEL"
	PacketMask    uint64 // bitmask of packet types observed this session
	devicePath    string // raw path, never exposed directly
	ActivatedTime fix.NanoTime

	lex *lexer.Lexer // in-progress frame buffer, owned by the session
}

// New returns a Session wired to the supplied lexer families, with
// every record at its explicit-unknown sentinel.
func New(devicePath string, families ...lexer.Family) *Session {
	return &Session{
		ID:         uuid.New(),
		Fix:        fix.New(),
		Attitude:   fix.NewAttitude(),
		DOP:        fix.NewDOP(),
		Subframe:   fix.NewSubframe(),
		devicePath: devicePath,
		lex:        lexer.New(families...),
	}
}

// Lexer returns the session's owned frame recognizer.
func (s *Session) Lexer() *lexer.Lexer { return s.lex }

// DevicePath returns the device path with any embedded credentials
// redacted (spec.md §6.1: "strips user:password@ segments from URIs,
// keeping scheme and host").
func (s *Session) DevicePath() string {
	return RedactDevicePath(s.devicePath)
}

// RedactDevicePath strips a userinfo segment from path if it parses
// as a URL with one; paths that aren't URLs (e.g. plain serial device
// paths like /dev/ttyUSB0) pass through unchanged.
func RedactDevicePath(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.User == nil {
		return path
	}
	u.User = nil
	return u.String()
}

// Context is the process-wide shared state (spec.md §3.5).
type Context struct {
	Leap subframe.LeapState

	Week       int     // GPS week counter
	TOW        fix.NanoTime // GPS time-of-week, as a nanosecond timespec
	Rollovers  int     // week-rollover counter

	ReadOnly bool

	shmHandle interface{ Close() error } // opaque SHM handle, nil until attached
}

// NewContext returns a Context with the leap state unvalidated, the
// week counter at -1 (unknown) and TOW at zero, matching process start
// before any subframe has updated them.
func NewContext() *Context {
	return &Context{Week: -1}
}

// AttachSHM records the process's shared-memory handle; Context does
// not know how to open one (that is pkg/shm's job) — it only holds
// the handle for lifecycle management (spec.md §3.5 "allocated once
// at process start, released at shutdown").
func (c *Context) AttachSHM(h interface{ Close() error }) { c.shmHandle = h }

// DetachSHM releases the process's shared-memory handle, if any.
func (c *Context) DetachSHM() error {
	if c.shmHandle == nil {
		return nil
	}
	err := c.shmHandle.Close()
	c.shmHandle = nil
	return err
}

// ApplyLeap installs a leap-second update computed by the subframe
// decoder (spec.md §3.5: "leap update on subframe 4 page 18"). Only
// C4, run from the single-threaded main loop, calls this.
func (c *Context) ApplyLeap(l subframe.LeapState) { c.Leap = l }
