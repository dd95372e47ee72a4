// Package device opens the byte-stream source for one GNSS receiver.
// Grounded on the teacher's pkg/gnssgo/stream.OpenSerial: the same path
// grammar minus flow control (port[:brate[:bsize[:parity[:stopb]]]]; a
// further :fctr segment is ignored) and the same
// go.bug.st/serial underlying driver, narrowed to what spec.md §1
// keeps in scope — no TCP relay, no hotplug rescan, no runtime baud
// change. daemon.Loop only needs an io.ReadCloser plus the negotiated
// parameters to record on the Session.
package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/ntpsec/gnssd/internal/gnsslog"
)

const (
	defaultBaudRate = 9600
	defaultDataBits = 8
	defaultStopBits = 1
	defaultParity   = 'N'
	readTimeout     = 100 * time.Millisecond
)

// Params is the negotiated serial configuration, recorded verbatim
// onto the owning Session (spec.md §3.4).
type Params struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   byte
}

// Serial wraps an open go.bug.st/serial port as an io.ReadCloser.
type Serial struct {
	port   serial.Port
	Params Params
}

// Open parses path per the port[:brate[:bsize[:parity[:stopb]]]]
// grammar and opens the named serial device. Any segment left empty
// or unparseable falls back to its default rather than failing the
// whole open, matching the teacher's Sscanf-and-ignore-error style.
func Open(path string) (*Serial, error) {
	port, brate, bsize, parity, stopb := splitPath(path)

	mode := &serial.Mode{
		BaudRate: brate,
		DataBits: bsize,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	switch stopb {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}
	switch parity {
	case 'E', 'e':
		mode.Parity = serial.EvenParity
	case 'O', 'o':
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}

	s, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("device: open %q: %w", port, err)
	}
	if err := s.SetReadTimeout(readTimeout); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("device: set read timeout on %q: %w", port, err)
	}

	gnsslog.Device(nil, port).WithFields(map[string]interface{}{
		"baud": brate, "dataBits": bsize, "stopBits": stopb, "parity": string(parity),
	}).Trace("device opened")

	return &Serial{
		port: s,
		Params: Params{
			BaudRate: brate,
			DataBits: bsize,
			StopBits: stopb,
			Parity:   byte(parity),
		},
	}, nil
}

func splitPath(path string) (port string, brate, bsize int, parity rune, stopb int) {
	brate, bsize, stopb, parity = defaultBaudRate, defaultDataBits, defaultStopBits, defaultParity

	idx := strings.Index(path, ":")
	if idx < 0 {
		return path, brate, bsize, parity, stopb
	}
	port = path[:idx]
	parts := strings.Split(path[idx+1:], ":")

	if len(parts) > 0 && parts[0] != "" {
		if v, err := strconv.Atoi(parts[0]); err == nil {
			brate = v
		}
	}
	if len(parts) > 1 && parts[1] != "" {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			bsize = v
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		parity = rune(parts[2][0])
	}
	if len(parts) > 3 && parts[3] != "" {
		if v, err := strconv.Atoi(parts[3]); err == nil {
			stopb = v
		}
	}

	if brate <= 0 {
		brate = defaultBaudRate
	}
	if bsize <= 0 {
		bsize = defaultDataBits
	}
	if stopb <= 0 {
		stopb = defaultStopBits
	}
	return port, brate, bsize, parity, stopb
}

// Read implements io.Reader.
func (s *Serial) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

// Close implements io.Closer.
func (s *Serial) Close() error {
	return s.port.Close()
}
