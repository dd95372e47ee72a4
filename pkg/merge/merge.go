// Package merge implements the deep-merge engine (spec component C5):
// it combines partial updates ("deltas") from the decoders into a
// session's canonical fix/attitude/DOP records without downgrading
// known fields. Merge is total — there are no merge-level errors
// (spec.md §7).
package merge

import "github.com/ntpsec/gnssd/pkg/fix"

// Mask is a bitset of "what this driver asserted it just computed".
// The merge engine never asserts a bit on its own; a decoder that
// didn't touch a field family must leave its bit clear so the merge
// preserves whatever the session already held.
type Mask uint64

const (
	TimeSet Mask = 1 << iota
	LatLonSet
	ModeSet
	StatusSet
	AltSet // per-field finite-overwrite of AltHAE/AltMSL/GeoidSep/Depth and Speed/Track/Climb/MagTrack
	ErrSet // per-field finite-overwrite of the one-sigma error estimates
	ECEFSet
	NEDSet
	DatumSet
	DGPSSet
	AntennaSet
	JamSet
	NavWindSet
	MarineSet
	ClockSet
	SubframeSet
	RTCM3Set
	AttitudeSet
	DOPSet
)

// Delta is the output of a binary-protocol or subframe decoder: only
// the fields it touched, tagged by which families of the canonical
// record it is asserting.
type Delta struct {
	Fix     fix.Fix
	Mask    Mask

	Attitude fix.Attitude
	DOP      fix.DOP

	Subframe *fix.Subframe
}

// Fix deep-merges from into to per spec.md §4.4's field-family rules.
// Fields not signalled by mask are left untouched in to.
func Fix(to *fix.Fix, mask Mask, from fix.Fix) {
	if mask&TimeSet != 0 {
		to.Time = from.Time
	}
	if mask&LatLonSet != 0 {
		to.Lat, to.Lon = from.Lat, from.Lon
	}
	if mask&ModeSet != 0 {
		to.Mode = from.Mode
	}
	if mask&StatusSet != 0 && from.Status > to.Status {
		to.Status = from.Status
	}
	if mask&AltSet != 0 {
		overwriteFinite(&to.AltHAE, from.AltHAE)
		overwriteFinite(&to.AltMSL, from.AltMSL)
		overwriteFinite(&to.GeoidSep, from.GeoidSep)
		overwriteFinite(&to.Depth, from.Depth)
		overwriteFinite(&to.Speed, from.Speed)
		overwriteFinite(&to.Track, from.Track)
		overwriteFinite(&to.Climb, from.Climb)
		overwriteFinite(&to.MagTrack, from.MagTrack)
	}
	if mask&ErrSet != 0 {
		overwriteFinite(&to.Epx, from.Epx)
		overwriteFinite(&to.Epy, from.Epy)
		overwriteFinite(&to.Eph, from.Eph)
		overwriteFinite(&to.Epv, from.Epv)
		overwriteFinite(&to.Epd, from.Epd)
		overwriteFinite(&to.Eps, from.Eps)
		overwriteFinite(&to.Ept, from.Ept)
		overwriteFinite(&to.Sep, from.Sep)
	}
	if mask&ECEFSet != 0 {
		to.ECEFX, to.ECEFY, to.ECEFZ = from.ECEFX, from.ECEFY, from.ECEFZ
		to.ECEFVX, to.ECEFVY, to.ECEFVZ = from.ECEFVX, from.ECEFVY, from.ECEFVZ
		to.ECEFPAcc, to.ECEFVAcc = from.ECEFPAcc, from.ECEFVAcc
	}
	if mask&NEDSet != 0 {
		to.RelN, to.RelE, to.RelD = from.RelN, from.RelE, from.RelD
		to.RelVelN, to.RelVelE, to.RelVelD = from.RelVelN, from.RelVelE, from.RelVelD
	}
	if mask&DatumSet != 0 && from.Datum != "" {
		to.Datum = from.Datum
	}
	if mask&DGPSSet != 0 && fix.IsFinite(from.DGPSAge) && from.DGPSStation >= 0 {
		to.DGPSAge, to.DGPSStation = from.DGPSAge, from.DGPSStation
	}
	if mask&NavWindSet != 0 {
		overwriteFinite(&to.WindAngleR, from.WindAngleR)
		overwriteFinite(&to.WindAngleT, from.WindAngleT)
		overwriteFinite(&to.WindSpeedR, from.WindSpeedR)
		overwriteFinite(&to.WindSpeedT, from.WindSpeedT)
	}
	if mask&MarineSet != 0 {
		overwriteFinite(&to.WaterTemp, from.WaterTemp)
	}
	if mask&AntennaSet != 0 && from.Antenna != fix.AntennaUnknown {
		to.Antenna = from.Antenna
	}
	if mask&JamSet != 0 && from.Jam > 0 {
		to.Jam = from.Jam
	}
	if mask&ClockSet != 0 {
		to.ClockBias, to.ClockDrift = from.ClockBias, from.ClockDrift
	}

	// RTK baseline rides on NEDSet but, unlike the wholesale ECEF/NED
	// copies above, overwrites each field only when finite and only
	// ever raises RTK.Status.
	if mask&NEDSet != 0 {
		if from.RTK.Status > to.RTK.Status {
			to.RTK.Status = from.RTK.Status
		}
		overwriteFinite(&to.RTK.E, from.RTK.E)
		overwriteFinite(&to.RTK.N, from.RTK.N)
		overwriteFinite(&to.RTK.U, from.RTK.U)
		overwriteFinite(&to.RTK.Length, from.RTK.Length)
		overwriteFinite(&to.RTK.Course, from.RTK.Course)
		overwriteFinite(&to.RTK.Ratio, from.RTK.Ratio)
	}
}

// AttitudeMerge merges from into to using the same overwrite-iff-finite
// discipline as the rest of the record family.
func AttitudeMerge(to *fix.Attitude, from fix.Attitude) {
	if from.Time.Valid() {
		to.Time = from.Time
	}
	overwriteFinite(&to.Heading, from.Heading)
	overwriteFinite(&to.Pitch, from.Pitch)
	overwriteFinite(&to.Roll, from.Roll)
	overwriteFinite(&to.HeadingErr, from.HeadingErr)
	overwriteFinite(&to.PitchErr, from.PitchErr)
	overwriteFinite(&to.RollErr, from.RollErr)
	for i := range to.Acc {
		overwriteFinite(&to.Acc[i], from.Acc[i])
		overwriteFinite(&to.Gyro[i], from.Gyro[i])
	}
}

// DOPMerge is a simple per-field overwrite-by-finiteness merge.
func DOPMerge(to *fix.DOP, from fix.DOP) {
	if from.Time.Valid() {
		to.Time = from.Time
	}
	overwriteFinite(&to.XDOP, from.XDOP)
	overwriteFinite(&to.YDOP, from.YDOP)
	overwriteFinite(&to.VDOP, from.VDOP)
	overwriteFinite(&to.TDOP, from.TDOP)
	overwriteFinite(&to.HDOP, from.HDOP)
	overwriteFinite(&to.GDOP, from.GDOP)
	overwriteFinite(&to.PDOP, from.PDOP)
}

func overwriteFinite(to *float64, from float64) {
	if fix.IsFinite(from) {
		*to = from
	}
}
