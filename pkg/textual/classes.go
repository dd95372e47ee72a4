package textual

import (
	"github.com/ntpsec/gnssd/pkg/fix"
)

// Per-field decimal precision (spec.md §4.5). Altitude-family fields
// are not given an explicit precision in spec.md's prose; 4 fractional
// digits is chosen to reproduce scenario S4's literal altHAE value
// exactly (see DESIGN.md).
const (
	precLatLon  = 9
	precAlt     = 4
	precECEF    = 2
	precSpeed   = 3
	precDOP     = 2
	precSatAngle = 1
)

// EncodeTPV renders a Fix as a TPV record. device is included only
// when non-empty (scenario S4 passes "" and expects no device field).
func EncodeTPV(device string, f fix.Fix) string {
	l := newLine("TPV")
	l.StringIf("device", device)
	l.Int("mode", int(f.Mode))
	l.Int("status", int(f.Status))
	if fix.IsFinite(f.Lat) && fix.IsFinite(f.Lon) {
		l.Float("lat", f.Lat, precLatLon)
		l.Float("lon", f.Lon, precLatLon)
	}
	l.Float("altHAE", f.AltHAE, precAlt)
	l.Float("altMSL", f.AltMSL, precAlt)
	l.Float("geoidSep", f.GeoidSep, precAlt)
	l.Float("speed", f.Speed, precSpeed)
	l.Float("track", f.Track, precSpeed)
	l.Float("climb", f.Climb, precSpeed)
	l.Float("magTrack", f.MagTrack, precSpeed)
	l.Float("epx", f.Epx, precAlt)
	l.Float("epy", f.Epy, precAlt)
	l.Float("eph", f.Eph, precAlt)
	l.Float("epv", f.Epv, precAlt)
	l.Float("epd", f.Epd, precSpeed)
	l.Float("eps", f.Eps, precSpeed)
	l.Float("ept", f.Ept, precSpeed)
	l.Float("sep", f.Sep, precAlt)
	l.Float("ecefx", f.ECEFX, precECEF)
	l.Float("ecefy", f.ECEFY, precECEF)
	l.Float("ecefz", f.ECEFZ, precECEF)
	l.Float("ecefvx", f.ECEFVX, precECEF)
	l.Float("ecefvy", f.ECEFVY, precECEF)
	l.Float("ecefvz", f.ECEFVZ, precECEF)
	l.Float("relN", f.RelN, precECEF)
	l.Float("relE", f.RelE, precECEF)
	l.Float("relD", f.RelD, precECEF)
	if fix.IsFinite(f.DGPSAge) && f.DGPSStation >= 0 {
		l.Float("dgpsAge", f.DGPSAge, precSpeed)
		l.Int("dgpsStation", f.DGPSStation)
	}
	if f.Antenna != fix.AntennaUnknown {
		l.Int("antenna", int(f.Antenna))
	}
	if f.Jam >= 0 {
		l.Int("jam", f.Jam)
	}
	l.Int64If("clockBias", f.ClockBias, minInt64)
	l.Int64If("clockDrift", f.ClockDrift, minInt64)
	l.StringIf("datum", f.Datum)
	l.Float("waterTemp", f.WaterTemp, precSpeed)
	l.Float("depth", f.Depth, precAlt)
	return l.finish()
}

const minInt64 = -(1 << 63)

// EncodeDOP renders a DOP record, class "SKY" per gpsd convention
// (DOP is carried on the SKY record alongside per-satellite data,
// which this module's data model does not track — see DESIGN.md).
func EncodeDOP(device string, d fix.DOP) string {
	l := newLine("SKY")
	l.StringIf("device", device)
	l.Float("xdop", d.XDOP, precDOP)
	l.Float("ydop", d.YDOP, precDOP)
	l.Float("vdop", d.VDOP, precDOP)
	l.Float("tdop", d.TDOP, precDOP)
	l.Float("hdop", d.HDOP, precDOP)
	l.Float("gdop", d.GDOP, precDOP)
	l.Float("pdop", d.PDOP, precDOP)
	return l.finish()
}

// EncodeATT renders an Attitude record.
func EncodeATT(device string, a fix.Attitude) string {
	l := newLine("ATT")
	l.StringIf("device", device)
	l.Float("heading", a.Heading, precDOP)
	l.Float("pitch", a.Pitch, precDOP)
	l.Float("roll", a.Roll, precDOP)
	l.Float("headingErr", a.HeadingErr, precDOP)
	l.Float("pitchErr", a.PitchErr, precDOP)
	l.Float("rollErr", a.RollErr, precDOP)
	for i, name := range []string{"accX", "accY", "accZ"} {
		l.Float(name, a.Acc[i], precECEF)
	}
	for i, name := range []string{"gyroX", "gyroY", "gyroZ"} {
		l.Float(name, a.Gyro[i], precECEF)
	}
	return l.finish()
}

// EncodeGST renders a pseudorange-residual style error-statistics
// record from the same error-estimate fields TPV carries.
func EncodeGST(device string, f fix.Fix) string {
	l := newLine("GST")
	l.StringIf("device", device)
	l.Float("eph", f.Eph, precAlt)
	l.Float("epv", f.Epv, precAlt)
	l.Float("sep", f.Sep, precAlt)
	return l.finish()
}

// EncodeSUBFRAME renders a raw navigation-subframe record.
func EncodeSUBFRAME(device string, sf fix.Subframe) string {
	l := newLine("SUBFRAME")
	l.StringIf("device", device)
	l.Int("gnssId", sf.GNSSId)
	l.Int("svId", sf.SV)
	l.IntIf("frame", sf.FrameNum, 0)
	l.IntIf("page", sf.PageNum, -1)
	l.IntIf("tow", sf.TOW, -1)
	l.IntIf("week", sf.Week, -1)
	l.Int("nOrbit", sf.NOrbit)
	return l.finish()
}

// EncodeDEVICE renders a DEVICE record; path has already been
// redacted by the session before this call (spec.md §6.1).
func EncodeDEVICE(path, driver string, baud int) string {
	l := newLine("DEVICE")
	l.StringIf("path", path)
	l.StringIf("driver", driver)
	if baud > 0 {
		l.Int("bps", baud)
	}
	return l.finish()
}

// EncodeWATCH renders the client-acknowledgment WATCH record.
func EncodeWATCH(enable, json bool) string {
	l := newLine("WATCH")
	l.Bool("enable", enable)
	l.Bool("json", json)
	return l.finish()
}

// EncodeVERSION renders the fixed VERSION handshake record.
func EncodeVERSION(release, revision string) string {
	l := newLine("VERSION")
	l.String("release", release)
	l.String("rev", revision)
	return l.finish()
}

// EncodeLOG renders a free-form diagnostic record. Severity mirrors
// the teacher's Trace level convention (lower is more severe).
func EncodeLOG(severity int, message string) string {
	l := newLine("LOG")
	l.Int("severity", severity)
	l.String("message", message)
	return l.finish()
}
