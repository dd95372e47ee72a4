package fix

// OrbitKind discriminates an ephemeris (precise, short-validity) orbit
// record from an almanac (coarse, long-validity) one.
type OrbitKind int

const (
	OrbitNone OrbitKind = iota
	OrbitEphemeris
	OrbitAlmanac
)

// Orbit carries the broadcast orbit/clock/ionosphere parameters for a
// single satellite vehicle, keyed by SV number and OrbitKind. Fields
// not used by a given constellation are left at their init sentinel.
// Angles the originating ICD broadcasts in semicircles (M0, I0, OMG0,
// Omg, Idot, OMGd, Deln) are stored in radians here, already converted
// by the subframe decoder; the harmonic terms are stored as broadcast
// (Cic/Cis/Cuc/Cus in radians, Crc/Crs in metres).
type Orbit struct {
	Sat  int // satellite vehicle number, 1-63 constellation-relative
	Kind OrbitKind

	Week int // constellation week number, -1 if unknown

	Toa, Toc, Toe float64 // time of applicability/clock/ephemeris, seconds of week
	TocLSB, TocMSB uint32 // raw LSB/MSB halves as broadcast, before assembly
	ToeLSB, ToeMSB uint32

	F0, F1, F2 float64 // clock polynomial coefficients (af0, af1, af2)

	// Klobuchar ionosphere model terms.
	Alpha0, Alpha1, Alpha2, Alpha3 float64
	Beta0, Beta1, Beta2, Beta3     float64

	// Harmonic correction coefficients (radians or metres per field).
	Cic, Cis, Crc, Crs, Cuc, Cus float64

	E       float64 // eccentricity
	I0      float64 // inclination at reference time (rad)
	Idot    float64 // rate of inclination (rad/s)
	M0      float64 // mean anomaly at reference time (rad)
	Omg     float64 // argument of perigee (rad)
	OMG0    float64 // longitude of ascending node at weekly epoch (rad)
	OMGd    float64 // rate of right ascension (rad/s)
	SqrtA   float64 // square root of semi-major axis (m^0.5)
	Deln    float64 // mean motion correction (rad/s)

	Tgd [6]float64 // group-delay terms, meaning is constellation-specific

	AODC, AODE int // BeiDou issue-of-data counters
	IODA       int // almanac issue of data
	IODC, IODE int // GPS/Galileo issue of data (clock/ephemeris)

	Health int // health flags, constellation-specific bit layout
	SISA   int // signal-in-space accuracy index

	// GLONASS broadcasts a PZ-90 Cartesian state vector rather than
	// Keplerian elements; these fields are left at their NewOrbit
	// sentinel for every other constellation.
	Pos, Vel, Acc [3]float64 // position (m), velocity (m/s), acceleration (m/s^2)
	Taun          float64    // SV clock bias (s)
	Gamn          float64    // relative frequency bias
	DTaun         float64    // L1/L2 group delay difference (s)
	FreqNum       int        // frequency channel number, -7..+6
	Age           int        // age of ephemeris data, days
}

// EarthRadiusFloorM is the sanity floor for SqrtA*SqrtA: any decode
// that yields a semi-major axis below Earth's radius is corrupt.
const EarthRadiusFloorM = 2_600_000.0

// NewOrbit returns an Orbit with every numeric field at its
// explicit-unknown sentinel: NaN for floats, -1 for integers (-8 for
// FreqNum, whose valid range includes -1).
func NewOrbit() Orbit {
	return Orbit{
		Sat: -1, Kind: OrbitNone, Week: -1,
		Toa: NaN, Toc: NaN, Toe: NaN,
		F0: NaN, F1: NaN, F2: NaN,
		Alpha0: NaN, Alpha1: NaN, Alpha2: NaN, Alpha3: NaN,
		Beta0: NaN, Beta1: NaN, Beta2: NaN, Beta3: NaN,
		Cic: NaN, Cis: NaN, Crc: NaN, Crs: NaN, Cuc: NaN, Cus: NaN,
		E: NaN, I0: NaN, Idot: NaN, M0: NaN, Omg: NaN,
		OMG0: NaN, OMGd: NaN, SqrtA: NaN, Deln: NaN,
		Tgd:  [6]float64{NaN, NaN, NaN, NaN, NaN, NaN},
		AODC: -1, AODE: -1, IODA: -1, IODC: -1, IODE: -1,
		Health: -1, SISA: -1,
		Pos: [3]float64{NaN, NaN, NaN}, Vel: [3]float64{NaN, NaN, NaN}, Acc: [3]float64{NaN, NaN, NaN},
		Taun: NaN, Gamn: NaN, DTaun: NaN, FreqNum: -8, Age: -1,
	}
}

// Valid applies the sanity floor from spec.md §3.2: the reconstructed
// semi-major axis must exceed EarthRadiusFloorM. GLONASS's Cartesian
// state vector has no SqrtA to floor; ValidGLONASS below covers it.
func (o Orbit) Valid() bool {
	if !IsFinite(o.SqrtA) {
		return false
	}
	a := o.SqrtA * o.SqrtA
	return a > EarthRadiusFloorM
}

// ValidGLONASS applies the equivalent sanity floor to a Cartesian
// state vector: the position magnitude must exceed Earth's radius.
func (o Orbit) ValidGLONASS() bool {
	if !IsFinite(o.Pos[0]) || !IsFinite(o.Pos[1]) || !IsFinite(o.Pos[2]) {
		return false
	}
	r2 := o.Pos[0]*o.Pos[0] + o.Pos[1]*o.Pos[1] + o.Pos[2]*o.Pos[2]
	return r2 > EarthRadiusFloorM*EarthRadiusFloorM
}
