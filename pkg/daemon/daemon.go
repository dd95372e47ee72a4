// Package daemon wires the decode pipeline into the single-threaded
// cooperative event loop described in spec.md §5: lexer (C2) →
// protocol decoder (C3) → subframe decoder (C4) → merge engine (C5) →
// session state (C6) → textual emitter (C7) and SHM exporter (C8).
// Accepting new client sockets, rescanning for hotplugged devices, and
// configuring serial parameters are named external collaborators out
// of this module's scope (spec.md §1); Loop only drains already-open
// io.Reader sources and writes to already-open Sinks, giving that
// excluded layer a narrow, documented seam. Grounded on the teacher's
// pkg/server.Server for the "inject a *logrus.Logger, own a slice of
// attached clients" shape, generalized from one HTTP server to N
// serial sources.
package daemon

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ntpsec/gnssd/internal/gnsslog"
	"github.com/ntpsec/gnssd/pkg/casic"
	"github.com/ntpsec/gnssd/pkg/fix"
	"github.com/ntpsec/gnssd/pkg/lexer"
	"github.com/ntpsec/gnssd/pkg/merge"
	"github.com/ntpsec/gnssd/pkg/novatel"
	"github.com/ntpsec/gnssd/pkg/session"
	"github.com/ntpsec/gnssd/pkg/shm"
	"github.com/ntpsec/gnssd/pkg/subframe"
	"github.com/ntpsec/gnssd/pkg/textual"
)

// Sink receives one textual-protocol line per emitted record. The
// loop's caller supplies already-open Sinks (typically a per-client
// socket writer); Loop never accepts connections itself.
type Sink interface {
	Write(line string) error
}

// Source is one already-open byte stream plus the Session it feeds.
type Source struct {
	Name    string // session key, normally the redacted device path
	Reader  io.Reader
	Session *session.Session
}

// Loop owns the pipeline for a fixed set of sources. It is not safe
// for concurrent use — spec.md §5 requires every decode step to run
// on the single event-loop thread.
type Loop struct {
	Context *session.Context
	SHM     *shm.Window
	Log     *logrus.Logger

	sources []*Source
	sinks   map[string][]Sink
	readBuf []byte
	tick    uint32
}

// New builds a Loop. ctx is the process-wide shared state (spec.md
// §3.5); shmWindow may be nil if SHM export is disabled.
func New(ctx *session.Context, shmWindow *shm.Window, log *logrus.Logger) *Loop {
	return &Loop{
		Context: ctx,
		SHM:     shmWindow,
		Log:     log,
		sinks:   make(map[string][]Sink),
		readBuf: make([]byte, 4096),
	}
}

// AddSource registers a byte source the loop will poll.
func (l *Loop) AddSource(src *Source) {
	l.sources = append(l.sources, src)
}

// AddSink attaches a writer that receives every line emitted for the
// named source.
func (l *Loop) AddSink(sourceName string, sink Sink) {
	l.sinks[sourceName] = append(l.sinks[sourceName], sink)
}

// Poll performs one cooperative pass over every source: a single read
// attempt, then draining every frame the lexer can decide from what's
// buffered. A source whose Reader blocks longer than its own timeout
// (pkg/device.Serial sets one) stalls only itself; Poll never blocks
// indefinitely on one source before moving to the next.
func (l *Loop) Poll() {
	for _, src := range l.sources {
		l.pollSource(src)
	}
}

func (l *Loop) pollSource(src *Source) {
	n, err := src.Reader.Read(l.readBuf)
	if n > 0 {
		src.Session.Lexer().Feed(l.readBuf[:n])
		src.Session.Chars += uint64(n)
	}
	if err != nil && err != io.EOF {
		gnsslog.Device(l.Log, src.Name).WithError(err).Trace("read error")
	}

	lex := src.Session.Lexer()
	for {
		ev := lex.Step()
		switch ev.Kind {
		case lexer.EventNeedMore:
			lex.Compact()
			return
		case lexer.EventDiscard:
			gnsslog.Device(l.Log, src.Name).WithField("reason", ev.Reason.String()).Trace("frame discarded")
			continue
		case lexer.EventEmit:
			frame := append([]byte(nil), lex.Frame(ev)...)
			l.dispatch(src, ev.Family, frame)
		}
	}
}

// dispatch decodes one complete frame and merges its delta into the
// owning session. Protocol families without a wired decoder (spec.md
// §1 excludes NMEA/RTCM2/RTCM3/AIS from this module) are acknowledged
// by the lexer but produce no delta here.
func (l *Loop) dispatch(src *Source, fam lexer.FamilyID, frame []byte) {
	var delta merge.Delta
	var logLine string

	switch fam {
	case lexer.FamilyCASIC:
		msg := casic.ParseFrame(frame)
		delta, logLine = casic.Decode(msg)
		if gnssID, sv, words, ok := casic.SubframeWords(msg); ok {
			if sfDelta, ok := l.decodeSubframe(gnssID, sv, words); ok {
				delta = sfDelta
			}
		}
	case lexer.FamilyNovatel:
		delta, logLine = novatel.Decode(novatel.ParseFrame(frame))
	default:
		return
	}

	if logLine != "" {
		gnsslog.Device(l.Log, src.Name).Trace(logLine)
	}
	l.applyDelta(src, delta)
}

// decodeSubframe runs the subframe decoder (C4) for a raw navigation
// message pulled off an RXM-SFRBX passthrough. Only GPS/QZSS LNAV is
// wired; other constellations are acknowledged by casic.SubframeWords
// but decoded nowhere yet (see DESIGN.md). currentWeek/currentTOW come
// from the shared Context, the one piece of session state a leap
// update on subframe 4 page 18 needs and that pkg/casic has no access
// to; a successful decode's leap update is installed back into the
// Context through ApplyLeap, its single documented writer.
func (l *Loop) decodeSubframe(gnssID, sv int, words [10]uint32) (merge.Delta, bool) {
	if gnssID != subframe.GNSSGPS {
		return merge.Delta{}, false
	}
	currentTOW := float64(l.Context.TOW.Sec) + float64(l.Context.TOW.Nsec)/1e9
	leap := l.Context.Leap
	sf, reason := subframe.DecodeLNAV(words, l.Context.Week, currentTOW, &leap)
	if reason != subframe.DiscardNone {
		return merge.Delta{}, false
	}
	l.Context.ApplyLeap(leap)
	if sf.Week > 0 {
		l.Context.Week = sf.Week
	}
	sf.SV = sv
	return merge.Delta{Mask: merge.SubframeSet, Subframe: &sf}, true
}

func (l *Loop) applyDelta(src *Source, delta merge.Delta) {
	s := src.Session

	if delta.Mask == 0 && delta.Subframe == nil {
		return // ack/log-only messages never mutate session state
	}

	merge.Fix(&s.Fix, delta.Mask, delta.Fix)
	if delta.Mask&merge.AttitudeSet != 0 {
		merge.AttitudeMerge(&s.Attitude, delta.Attitude)
	}
	if delta.Mask&merge.DOPSet != 0 {
		merge.DOPMerge(&s.DOP, delta.DOP)
	}
	if delta.Subframe != nil {
		s.Subframe = *delta.Subframe
		s.SubframeCount++
	}

	l.emit(src)
}

// emit renders the session's current records to every attached sink
// and, if present, the shared SHM window (spec.md §4.5/§4.6).
func (l *Loop) emit(src *Source) {
	s := src.Session
	device := s.DevicePath()

	lines := make([]string, 0, 3)
	lines = append(lines, textual.EncodeTPV(device, s.Fix))
	if fix.IsFinite(s.DOP.HDOP) || fix.IsFinite(s.DOP.PDOP) {
		lines = append(lines, textual.EncodeDOP(device, s.DOP))
	}
	if s.Subframe.Week != -1 || s.Subframe.NOrbit > 0 {
		lines = append(lines, textual.EncodeSUBFRAME(device, s.Subframe))
	}

	for _, sink := range l.sinks[src.Name] {
		for _, line := range lines {
			if err := sink.Write(line); err != nil {
				gnsslog.Device(l.Log, src.Name).WithError(err).Trace("sink write failed")
			}
		}
	}

	if l.SHM != nil {
		l.tick++
		l.SHM.Publish(l.tick, shm.FromFix(s.Fix, 0, -1))
	}
}

// Run drives Poll on interval until ctx is cancelled, then performs
// the shutdown sequence from spec.md §5: sources are closed and the
// shared context's SHM handle is released. Flushing in-progress
// frames and closing client sockets are the caller's responsibility,
// since Loop never owns a socket.
func (l *Loop) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case <-ticker.C:
			l.Poll()
		}
	}
}

func (l *Loop) shutdown() {
	for _, src := range l.sources {
		if c, ok := src.Reader.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if l.Context != nil {
		_ = l.Context.DetachSHM()
	}
}
