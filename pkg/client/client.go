package client

import (
	"fmt"

	"github.com/ntpsec/gnssd/pkg/fix"
)

// ParseTPV parses one TPV line into dst, which is reset to its
// declared defaults (fix.New()) before any field is applied — an
// attribute missing from the line keeps its default, per spec.md
// §4.7. device carries the line's device field, if present.
func ParseTPV(line string, dst *fix.Fix) (device string, err error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return "", err
	}
	if class != "TPV" {
		return "", fmt.Errorf("client: expected class TPV, got %q", class)
	}
	*dst = fix.New()

	for _, f := range fields {
		switch f.name {
		case "device":
			if s, ok := f.tok.asString(); ok {
				device = s
			}
		case "mode":
			if v, ok := f.tok.asInt(); ok {
				dst.Mode = fix.Mode(v)
			}
		case "status":
			if v, ok := f.tok.asInt(); ok {
				dst.Status = fix.Status(v)
			}
		case "lat":
			if v, ok := f.tok.asFloat(); ok {
				dst.Lat = v
			}
		case "lon":
			if v, ok := f.tok.asFloat(); ok {
				dst.Lon = v
			}
		case "altHAE":
			if v, ok := f.tok.asFloat(); ok {
				dst.AltHAE = v
			}
		case "altMSL":
			if v, ok := f.tok.asFloat(); ok {
				dst.AltMSL = v
			}
		case "geoidSep":
			if v, ok := f.tok.asFloat(); ok {
				dst.GeoidSep = v
			}
		case "speed":
			if v, ok := f.tok.asFloat(); ok {
				dst.Speed = v
			}
		case "track":
			if v, ok := f.tok.asFloat(); ok {
				dst.Track = v
			}
		case "climb":
			if v, ok := f.tok.asFloat(); ok {
				dst.Climb = v
			}
		case "magTrack":
			if v, ok := f.tok.asFloat(); ok {
				dst.MagTrack = v
			}
		case "epx":
			if v, ok := f.tok.asFloat(); ok {
				dst.Epx = v
			}
		case "epy":
			if v, ok := f.tok.asFloat(); ok {
				dst.Epy = v
			}
		case "eph":
			if v, ok := f.tok.asFloat(); ok {
				dst.Eph = v
			}
		case "epv":
			if v, ok := f.tok.asFloat(); ok {
				dst.Epv = v
			}
		case "epd":
			if v, ok := f.tok.asFloat(); ok {
				dst.Epd = v
			}
		case "eps":
			if v, ok := f.tok.asFloat(); ok {
				dst.Eps = v
			}
		case "ept":
			if v, ok := f.tok.asFloat(); ok {
				dst.Ept = v
			}
		case "sep":
			if v, ok := f.tok.asFloat(); ok {
				dst.Sep = v
			}
		case "ecefx":
			if v, ok := f.tok.asFloat(); ok {
				dst.ECEFX = v
			}
		case "ecefy":
			if v, ok := f.tok.asFloat(); ok {
				dst.ECEFY = v
			}
		case "ecefz":
			if v, ok := f.tok.asFloat(); ok {
				dst.ECEFZ = v
			}
		case "ecefvx":
			if v, ok := f.tok.asFloat(); ok {
				dst.ECEFVX = v
			}
		case "ecefvy":
			if v, ok := f.tok.asFloat(); ok {
				dst.ECEFVY = v
			}
		case "ecefvz":
			if v, ok := f.tok.asFloat(); ok {
				dst.ECEFVZ = v
			}
		case "relN":
			if v, ok := f.tok.asFloat(); ok {
				dst.RelN = v
			}
		case "relE":
			if v, ok := f.tok.asFloat(); ok {
				dst.RelE = v
			}
		case "relD":
			if v, ok := f.tok.asFloat(); ok {
				dst.RelD = v
			}
		case "dgpsAge":
			if v, ok := f.tok.asFloat(); ok {
				dst.DGPSAge = v
			}
		case "dgpsStation":
			if v, ok := f.tok.asInt(); ok {
				dst.DGPSStation = v
			}
		case "antenna":
			if v, ok := f.tok.asInt(); ok {
				dst.Antenna = fix.AntennaStatus(v)
			}
		case "jam":
			if v, ok := f.tok.asInt(); ok {
				dst.Jam = v
			}
		case "clockBias":
			if v, ok := f.tok.asInt64(); ok {
				dst.ClockBias = v
			}
		case "clockDrift":
			if v, ok := f.tok.asInt64(); ok {
				dst.ClockDrift = v
			}
		case "datum":
			if v, ok := f.tok.asString(); ok {
				dst.Datum = v
			}
		case "waterTemp":
			if v, ok := f.tok.asFloat(); ok {
				dst.WaterTemp = v
			}
		case "depth":
			if v, ok := f.tok.asFloat(); ok {
				dst.Depth = v
			}
		}
		// Unknown attributes are ignored per spec.md §4.7.
	}
	return device, nil
}

// ParseSKY parses one SKY line (dilution-of-precision) into dst.
func ParseSKY(line string, dst *fix.DOP) (device string, err error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return "", err
	}
	if class != "SKY" {
		return "", fmt.Errorf("client: expected class SKY, got %q", class)
	}
	*dst = fix.NewDOP()

	for _, f := range fields {
		switch f.name {
		case "device":
			if s, ok := f.tok.asString(); ok {
				device = s
			}
		case "xdop":
			if v, ok := f.tok.asFloat(); ok {
				dst.XDOP = v
			}
		case "ydop":
			if v, ok := f.tok.asFloat(); ok {
				dst.YDOP = v
			}
		case "vdop":
			if v, ok := f.tok.asFloat(); ok {
				dst.VDOP = v
			}
		case "tdop":
			if v, ok := f.tok.asFloat(); ok {
				dst.TDOP = v
			}
		case "hdop":
			if v, ok := f.tok.asFloat(); ok {
				dst.HDOP = v
			}
		case "gdop":
			if v, ok := f.tok.asFloat(); ok {
				dst.GDOP = v
			}
		case "pdop":
			if v, ok := f.tok.asFloat(); ok {
				dst.PDOP = v
			}
		}
	}
	return device, nil
}

// ParseATT parses one ATT (attitude) line into dst.
func ParseATT(line string, dst *fix.Attitude) (device string, err error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return "", err
	}
	if class != "ATT" {
		return "", fmt.Errorf("client: expected class ATT, got %q", class)
	}
	*dst = fix.NewAttitude()

	for _, f := range fields {
		switch f.name {
		case "device":
			if s, ok := f.tok.asString(); ok {
				device = s
			}
		case "heading":
			if v, ok := f.tok.asFloat(); ok {
				dst.Heading = v
			}
		case "pitch":
			if v, ok := f.tok.asFloat(); ok {
				dst.Pitch = v
			}
		case "roll":
			if v, ok := f.tok.asFloat(); ok {
				dst.Roll = v
			}
		case "headingErr":
			if v, ok := f.tok.asFloat(); ok {
				dst.HeadingErr = v
			}
		case "pitchErr":
			if v, ok := f.tok.asFloat(); ok {
				dst.PitchErr = v
			}
		case "rollErr":
			if v, ok := f.tok.asFloat(); ok {
				dst.RollErr = v
			}
		case "accX":
			if v, ok := f.tok.asFloat(); ok {
				dst.Acc[0] = v
			}
		case "accY":
			if v, ok := f.tok.asFloat(); ok {
				dst.Acc[1] = v
			}
		case "accZ":
			if v, ok := f.tok.asFloat(); ok {
				dst.Acc[2] = v
			}
		case "gyroX":
			if v, ok := f.tok.asFloat(); ok {
				dst.Gyro[0] = v
			}
		case "gyroY":
			if v, ok := f.tok.asFloat(); ok {
				dst.Gyro[1] = v
			}
		case "gyroZ":
			if v, ok := f.tok.asFloat(); ok {
				dst.Gyro[2] = v
			}
		}
	}
	return device, nil
}

// ParseSUBFRAME parses one SUBFRAME line into dst. Orbit/almanac
// payload fields are not carried on the textual wire (spec.md §4.5
// restricts SUBFRAME to the envelope fields); only the envelope round-
// trips through this parser.
func ParseSUBFRAME(line string, dst *fix.Subframe) (device string, err error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return "", err
	}
	if class != "SUBFRAME" {
		return "", fmt.Errorf("client: expected class SUBFRAME, got %q", class)
	}
	*dst = fix.NewSubframe()

	for _, f := range fields {
		switch f.name {
		case "device":
			if s, ok := f.tok.asString(); ok {
				device = s
			}
		case "gnssId":
			if v, ok := f.tok.asInt(); ok {
				dst.GNSSId = v
			}
		case "svId":
			if v, ok := f.tok.asInt(); ok {
				dst.SV = v
			}
		case "frame":
			if v, ok := f.tok.asInt(); ok {
				dst.FrameNum = v
			}
		case "page":
			if v, ok := f.tok.asInt(); ok {
				dst.PageNum = v
			}
		case "tow":
			if v, ok := f.tok.asInt(); ok {
				dst.TOW = v
			}
		case "week":
			if v, ok := f.tok.asInt(); ok {
				dst.Week = v
			}
		case "nOrbit":
			if v, ok := f.tok.asInt(); ok {
				dst.NOrbit = v
			}
		}
	}
	return device, nil
}

// Device is the reassembled form of a DEVICE record; DEVICE has no
// natural destination among the canonical fix/attitude/DOP/subframe
// records, so it gets its own small struct.
type Device struct {
	Path   string
	Driver string
	Bps    int
}

// ParseDEVICE parses one DEVICE line into a Device.
func ParseDEVICE(line string) (Device, error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return Device{}, err
	}
	if class != "DEVICE" {
		return Device{}, fmt.Errorf("client: expected class DEVICE, got %q", class)
	}
	var d Device
	for _, f := range fields {
		switch f.name {
		case "path":
			if s, ok := f.tok.asString(); ok {
				d.Path = s
			}
		case "driver":
			if s, ok := f.tok.asString(); ok {
				d.Driver = s
			}
		case "bps":
			if v, ok := f.tok.asInt(); ok {
				d.Bps = v
			}
		}
	}
	return d, nil
}

// Watch is the reassembled form of a WATCH record.
type Watch struct {
	Enable bool
	JSON   bool
}

// ParseWATCH parses one WATCH line into a Watch.
func ParseWATCH(line string) (Watch, error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return Watch{}, err
	}
	if class != "WATCH" {
		return Watch{}, fmt.Errorf("client: expected class WATCH, got %q", class)
	}
	var w Watch
	for _, f := range fields {
		switch f.name {
		case "enable":
			if v, ok := f.tok.asBool(); ok {
				w.Enable = v
			}
		case "json":
			if v, ok := f.tok.asBool(); ok {
				w.JSON = v
			}
		}
	}
	return w, nil
}

// Version is the reassembled form of a VERSION record.
type Version struct {
	Release  string
	Revision string
}

// ParseVERSION parses one VERSION line into a Version.
func ParseVERSION(line string) (Version, error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return Version{}, err
	}
	if class != "VERSION" {
		return Version{}, fmt.Errorf("client: expected class VERSION, got %q", class)
	}
	var v Version
	for _, f := range fields {
		switch f.name {
		case "release":
			if s, ok := f.tok.asString(); ok {
				v.Release = s
			}
		case "rev":
			if s, ok := f.tok.asString(); ok {
				v.Revision = s
			}
		}
	}
	return v, nil
}

// Log is the reassembled form of a LOG record.
type Log struct {
	Severity int
	Message  string
}

// ParseLOG parses one LOG line into a Log.
func ParseLOG(line string) (Log, error) {
	fields, class, err := tokenize(line)
	if err != nil {
		return Log{}, err
	}
	if class != "LOG" {
		return Log{}, fmt.Errorf("client: expected class LOG, got %q", class)
	}
	var l Log
	for _, f := range fields {
		switch f.name {
		case "severity":
			if v, ok := f.tok.asInt(); ok {
				l.Severity = v
			}
		case "message":
			if s, ok := f.tok.asString(); ok {
				l.Message = s
			}
		}
	}
	return l, nil
}
