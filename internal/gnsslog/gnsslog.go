// Package gnsslog wraps logrus the way the teacher's pkg/server and
// pkg/caster packages do: an injected *logrus.Logger. The hot decode
// path packages (lexer, casic, novatel, subframe, merge) take no
// logger; they return log text or discard reasons, and daemon logs
// them. The injected logger may be nil; Get then returns a shared
// discard logger so unit tests never need a real sink.
package gnsslog

import (
	"io"

	"github.com/sirupsen/logrus"
)

// discard is the shared nil-safe fallback logger.
var discard = newDiscard()

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Get returns l if non-nil, else a logger that discards everything.
func Get(l *logrus.Logger) *logrus.Logger {
	if l == nil {
		return discard
	}
	return l
}

// New builds a text-formatted logrus.Logger at the given level,
// matching the teacher's NewServer(..., logger logrus.FieldLogger)
// construction style — called once at process start, then threaded
// through every component that logs.
func New(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Device returns a logger pre-tagged with the device field, the way
// pkg/caster/handler.go attaches request-scoped fields before logging.
func Device(l *logrus.Logger, device string) *logrus.Entry {
	return Get(l).WithField("device", device)
}
