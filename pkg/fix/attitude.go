package fix

// Attitude carries heading/pitch/roll for receivers that report it
// (dual-antenna GNSS compass, INS-aided units).
type Attitude struct {
	Time NanoTime

	Heading, Pitch, Roll float64
	HeadingErr, PitchErr, RollErr float64

	Acc [3]float64 // accelerometer m/s^2, x/y/z body frame
	Gyro [3]float64 // gyro rad/s, x/y/z body frame
}

// NewAttitude returns an Attitude with every field at NaN.
func NewAttitude() Attitude {
	return Attitude{
		Heading: NaN, Pitch: NaN, Roll: NaN,
		HeadingErr: NaN, PitchErr: NaN, RollErr: NaN,
		Acc:  [3]float64{NaN, NaN, NaN},
		Gyro: [3]float64{NaN, NaN, NaN},
	}
}

// DOP carries dilution-of-precision figures for the current satellite
// geometry.
type DOP struct {
	Time NanoTime

	XDOP, YDOP, VDOP, TDOP float64
	HDOP, GDOP, PDOP       float64
}

// NewDOP returns a DOP with every field at NaN.
func NewDOP() DOP {
	return DOP{XDOP: NaN, YDOP: NaN, VDOP: NaN, TDOP: NaN, HDOP: NaN, GDOP: NaN, PDOP: NaN}
}
