// Package fix holds the canonical, constellation-agnostic records that
// every decoder in this module ultimately produces: the position/
// velocity/time fix, the satellite orbit record (ephemeris or
// almanac), and the raw navigation subframe container.
//
// Every numeric field is nullable. Floats use NaN for "unknown";
// integers use a documented sentinel (usually -1); enumerations have
// an explicit zero-value "unknown" member. Consumers must treat a NaN
// or sentinel as absent data, never as zero.
package fix

import "math"

// NaN is the sentinel for an unset floating-point field.
var NaN = math.NaN()

// IsFinite reports whether f is neither NaN nor +/-Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Mode is the fix dimensionality.
type Mode int

const (
	ModeUnseen Mode = iota // device not seen yet
	ModeNoFix              // device seen, no fix
	Mode2D                 // lat/lon only
	Mode3D                 // lat/lon/altitude
)

// Status is the fix quality. Status is monotone non-decreasing within
// a single merge cycle (spec invariant): once a driver asserts a
// higher-quality status, the session never regresses to a lower one
// until the next independent fix cycle begins.
type Status int

const (
	StatusUnknown Status = iota
	StatusGPS
	StatusDGPS
	StatusRTKFixed
	StatusRTKFloat
	StatusDR
	StatusGNSSDR
	StatusTimeOnly
	StatusSimulated
)

// AntennaStatus enumerates antenna health as reported by receivers
// that monitor antenna open/short conditions.
type AntennaStatus int

const (
	AntennaUnknown AntennaStatus = iota
	AntennaOK
	AntennaOpen
	AntennaShort
)

// RTKBaseline carries the receiver's relative-positioning solution
// (used by RTK-capable drivers) separately from the absolute fix.
type RTKBaseline struct {
	Status Status  // RTK quality of the baseline itself
	E, N, U float64 // east/north/up offsets from base (m)
	Length  float64 // baseline length (m)
	Course  float64 // baseline course (degrees)
	Ratio   float64 // ambiguity-resolution ratio factor
}

// Fix is the canonical position/velocity/time/diagnostic record. See
// package doc for the nullability convention.
type Fix struct {
	Time NanoTime // wall-clock time of the fix, nanosecond resolution
	Mode Mode
	Status Status

	Lat, Lon float64 // decimal degrees, WGS84, 1e-9 precision
	AltHAE   float64 // ellipsoidal altitude (m)
	AltMSL   float64 // orthometric altitude (m)
	GeoidSep float64 // geoid separation, HAE - MSL (m)

	Speed       float64 // m/s over ground
	Track       float64 // true track, degrees
	Climb       float64 // m/s vertical rate
	MagTrack    float64 // magnetic track, degrees

	// One-sigma error estimates, metres or degrees as noted.
	Epx, Epy, Eph, Epv float64 // lon/lat/horizontal/vertical position error
	Epd, Eps, Ept      float64 // track, speed, time error
	Sep                float64 // estimated spherical (3D) error

	// ECEF position/velocity with accuracies.
	ECEFX, ECEFY, ECEFZ          float64
	ECEFVX, ECEFVY, ECEFVZ       float64
	ECEFPAcc, ECEFVAcc           float64

	// NED relative position/velocity (RTK "rel" block).
	RelN, RelE, RelD       float64
	RelVelN, RelVelE, RelVelD float64

	DGPSAge     float64 // seconds since last DGPS correction
	DGPSStation int     // station id, -1 if absent

	RTK RTKBaseline

	Antenna AntennaStatus
	Jam     int // jamming indicator, 0 = none, higher = stronger; -1 unknown

	ClockBias  int64 // integer clock bias, device-native units
	ClockDrift int64 // integer clock drift, device-native units

	Datum string // datum name, empty if unknown

	// Marine/environmental extras.
	WaterTemp   float64
	WindAngleR  float64 // relative wind angle, degrees
	WindAngleT  float64 // true wind angle, degrees
	WindSpeedR  float64 // relative wind speed, m/s
	WindSpeedT  float64 // true wind speed, m/s
	Depth       float64 // water depth, m
}

// NanoTime is wall time at nanosecond resolution, kept as a plain
// pair of fields (rather than time.Time) so the merge engine and the
// textual emitter can treat "unset" as a distinguishable zero value
// without relying on time.Time's own zero-value semantics.
type NanoTime struct {
	Sec  int64 // Unix seconds
	Nsec int64 // nanoseconds within the second, [0, 1e9)
}

// Valid reports whether t has been set at all.
func (t NanoTime) Valid() bool { return t.Sec != 0 || t.Nsec != 0 }

// New returns a Fix with every field at its "unknown" sentinel.
func New() Fix {
	return Fix{
		Mode:   ModeUnseen,
		Status: StatusUnknown,

		Lat: NaN, Lon: NaN,
		AltHAE: NaN, AltMSL: NaN, GeoidSep: NaN,
		Speed: NaN, Track: NaN, Climb: NaN, MagTrack: NaN,

		Epx: NaN, Epy: NaN, Eph: NaN, Epv: NaN,
		Epd: NaN, Eps: NaN, Ept: NaN, Sep: NaN,

		ECEFX: NaN, ECEFY: NaN, ECEFZ: NaN,
		ECEFVX: NaN, ECEFVY: NaN, ECEFVZ: NaN,
		ECEFPAcc: NaN, ECEFVAcc: NaN,

		RelN: NaN, RelE: NaN, RelD: NaN,
		RelVelN: NaN, RelVelE: NaN, RelVelD: NaN,

		DGPSAge: NaN, DGPSStation: -1,

		RTK: RTKBaseline{E: NaN, N: NaN, U: NaN, Length: NaN, Course: NaN, Ratio: NaN},

		Antenna: AntennaUnknown,
		Jam:     -1,

		ClockBias:  math.MinInt64,
		ClockDrift: math.MinInt64,

		WaterTemp:  NaN,
		WindAngleR: NaN, WindAngleT: NaN,
		WindSpeedR: NaN, WindSpeedT: NaN,
		Depth: NaN,
	}
}

// Valid checks the fix-record invariants from spec.md §3.1: latitude
// and longitude ranges, and the mode/field consistency rules.
func (f Fix) Valid() bool {
	if f.Mode >= Mode2D {
		if !IsFinite(f.Lat) || f.Lat < -90 || f.Lat > 90 {
			return false
		}
		if !IsFinite(f.Lon) || f.Lon < -180 || f.Lon > 180 {
			return false
		}
	}
	if f.Mode == Mode3D && !IsFinite(f.AltHAE) {
		return false
	}
	return true
}
