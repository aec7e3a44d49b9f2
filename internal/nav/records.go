package nav

// PointLLH is a geodetic position: longitude/latitude in degrees unless a
// decoder documents otherwise, height in meters above the ellipsoid.
type PointLLH struct {
	Lon    float64 `msgpack:"lon"`
	Lat    float64 `msgpack:"lat"`
	Height float64 `msgpack:"height"`
}

// Vector3 is a cartesian triple in the output (FLU) frame.
type Vector3 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
}

// FixQuality collapses the receiver's many position-type codes into the
// small set of classes downstream consumers care about.
type FixQuality int

const (
	FixInvalid FixQuality = iota
	FixSingle
	FixDifferential
	FixFloatRTK
	FixIntegerRTK
	FixPPP
	FixPropagated
)

func (q FixQuality) String() string {
	switch q {
	case FixSingle:
		return "single"
	case FixDifferential:
		return "differential"
	case FixFloatRTK:
		return "float-rtk"
	case FixIntegerRTK:
		return "integer-rtk"
	case FixPPP:
		return "ppp"
	case FixPropagated:
		return "propagated"
	default:
		return "invalid"
	}
}

// InsQuality classifies the inertial solution.
type InsQuality int

const (
	InsInvalid InsQuality = iota
	InsConverging
	InsGood
)

func (q InsQuality) String() string {
	switch q {
	case InsConverging:
		return "converging"
	case InsGood:
		return "good"
	default:
		return "invalid"
	}
}

// BestPose is the receiver's best GNSS-only position solution, kept in the
// receiver's native units (degrees, meters).
type BestPose struct {
	MeasurementTime float64 // GPS seconds (week*604800 + seconds of week)

	SolutionStatus uint32
	PositionType   uint32

	Latitude   float64
	Longitude  float64
	HeightMSL  float64
	Undulation float64
	DatumID    uint32

	LatitudeStdDev  float64
	LongitudeStdDev float64
	HeightStdDev    float64

	BaseStationID   [4]byte
	DifferentialAge float64
	SolutionAge     float64

	NumSatsTracked    int
	NumSatsInSolution int
	NumSatsL1         int
	NumSatsMulti      int

	ExtendedSolutionStatus uint8
	GalileoBeidouUsedMask  uint8
	GPSGlonassUsedMask     uint8
}

// Gnss is the fused GNSS navigation record, aggregated across the position
// and velocity messages of one measurement time step.
type Gnss struct {
	MeasurementTime float64 // GPS seconds

	Position       PointLLH // lon/lat deg, height = MSL + undulation
	PositionStdDev Vector3
	LinearVelocity Vector3 // m/s, x east, y north, z up

	NumSats         int
	SolutionStatus  uint32
	PositionType    uint32
	Quality         FixQuality
	VelocityLatency float64
}

// Ins is the inertial navigation record, aggregated from the corrected IMU,
// covariance and PVA messages of one measurement time step.
type Ins struct {
	MeasurementTime float64 // GPS seconds

	Position           PointLLH
	EulerAngles        Vector3 // rad: roll, -pitch, yaw
	LinearVelocity     Vector3 // m/s: east, north, up
	LinearAcceleration Vector3 // m/s^2, FLU
	AngularVelocity    Vector3 // rad/s, FLU

	PositionCovariance       [9]float64
	EulerAnglesCovariance    [9]float64
	LinearVelocityCovariance [9]float64

	Quality InsQuality
}

// InsStat reports the raw extended INS status codes.
type InsStat struct {
	UnixTime  float64
	InsStatus uint32
	PosType   uint32
}

// Imu is one raw inertial sample, calibrated and mapped into the output
// axis convention.
type Imu struct {
	MeasurementTime    float64 // GPS seconds
	MeasurementSpan    float64 // seconds between samples
	LinearAcceleration Vector3 // m/s^2, FLU
	AngularVelocity    Vector3 // rad/s, FLU
}

// Heading is the dual-antenna heading solution.
type Heading struct {
	MeasurementTime float64

	SolutionStatus uint32
	PositionType   uint32

	BaselineLength float64 // m
	Heading        float64 // deg
	Pitch          float64 // deg
	Reserved       float64
	HeadingStdDev  float64
	PitchStdDev    float64

	StationID [4]byte

	NumSatsTracked    int
	NumSatsInSolution int
	NumSatsObs        int
	NumSatsMulti      int

	SolutionSource         uint8
	ExtendedSolutionStatus uint8
	GalileoBeidouSigMask   uint8
	GPSGlonassSigMask      uint8
}

// GnssSystem identifies a satellite constellation.
type GnssSystem int

const (
	SysUnknown GnssSystem = iota
	SysGPS
	SysBDS
	SysGLO
)

func (s GnssSystem) String() string {
	switch s {
	case SysGPS:
		return "gps"
	case SysBDS:
		return "bds"
	case SysGLO:
		return "glo"
	default:
		return "unknown"
	}
}

// KepplerOrbit holds the common Keplerian orbit parameter shape shared by
// the GPS and BeiDou ephemerides.
type KepplerOrbit struct {
	System GnssSystem
	SatPRN int
	Week   int

	Af0, Af1, Af2 float64
	IODE          int
	IODC          int

	DeltaN   float64
	M0       float64
	E        float64
	RootA    float64
	Toe      float64
	Toc      float64
	Cic, Crc float64
	Cis, Crs float64
	Cuc, Cus float64
	Omega0   float64
	Omega    float64
	I0       float64
	OmegaDot float64
	IDot     float64

	Accuracy float64
	Health   uint32
	Tgd      float64
}

// GlonassOrbit is the GLONASS state-vector ephemeris shape.
type GlonassOrbit struct {
	SlotPRN     int
	FrequencyNo int
	Week        int
	WeekSecond  float64
	Toe         float64
	Tk          float64

	ClockOffset float64
	ClockDrift  float64
	Health      int // 0 good, 1 bad

	Position   Vector3 // m, PZ-90
	Velocity   Vector3 // m/s
	Accelerate Vector3 // m/s^2

	InfoAge float64
}

// Ephemeris is overwritten wholesale on each ephemeris frame; exactly one
// of Keppler/Glonass is set depending on System.
type Ephemeris struct {
	System  GnssSystem
	Keppler *KepplerOrbit
	Glonass *GlonassOrbit
}

// BandID identifies a frequency band in the output taxonomy.
type BandID int

const (
	BandUnknown BandID = iota
	BandGPSL1
	BandGPSL2
	BandGPSL5
	BandBDSB1
	BandBDSB2
	BandBDSB3
	BandGLOG1
	BandGLOG2
)

// PseudoType classifies the ranging code of a band observation.
type PseudoType int

const (
	PseudoUnknown PseudoType = iota
	PseudoCoarseCode
	PseudoPrecisionCode
)

// BandObservation is one signal's worth of raw measurements.
type BandObservation struct {
	Band         BandID
	PseudoType   PseudoType
	PseudoRange  float64 // m
	CarrierPhase float64 // cycles
	LockTime     float64 // s of continuous tracking
	Doppler      float64
	SNR          float64
}

// SatelliteObservation groups the band observations of one satellite.
type SatelliteObservation struct {
	System GnssSystem
	PRN    int
	Bands  []BandObservation
}

// EpochObservation is one epoch of raw observations across all tracked
// satellites.
type EpochObservation struct {
	ReceiverID int
	GnssWeek   int
	GnssSecond float64
	Satellites []SatelliteObservation
}
