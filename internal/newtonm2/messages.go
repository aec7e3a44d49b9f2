package newtonm2

import (
	"encoding/binary"
	"math"
)

// Little-endian field readers. Every body layout below is decoded with
// explicit offsets; the buffer is never reinterpreted in place.
func u16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func u32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
func i32(b []byte, off int) int32  { return int32(binary.LittleEndian.Uint32(b[off:])) }
func f32(b []byte, off int) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
}
func f64(b []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
}

// bestPosLog is the BESTPOS / BESTGNSSPOS / PSRPOS body (72 bytes).
type bestPosLog struct {
	SolutionStatus uint32  // 0
	PositionType   uint32  // 4
	Latitude       float64 // 8, deg
	Longitude      float64 // 16, deg
	HeightMSL      float64 // 24, m
	Undulation     float64 // 32, f32, m
	DatumID        uint32  // 36
	LatitudeStd    float64 // 40, f32
	LongitudeStd   float64 // 44, f32
	HeightStd      float64 // 48, f32
	BaseStationID  [4]byte // 52
	DiffAge        float64 // 56, f32
	SolutionAge    float64 // 60, f32
	NumSatsTracked uint8   // 64
	NumSatsInSol   uint8   // 65
	NumSatsL1      uint8   // 66
	NumSatsMulti   uint8   // 67
	// 68 reserved
	ExtSolutionStatus uint8 // 69
	GalBdsUsedMask    uint8 // 70
	GPSGloUsedMask    uint8 // 71
}

const bestPosLength = 72

func decodeBestPos(b []byte) bestPosLog {
	var m bestPosLog
	m.SolutionStatus = u32(b, 0)
	m.PositionType = u32(b, 4)
	m.Latitude = f64(b, 8)
	m.Longitude = f64(b, 16)
	m.HeightMSL = f64(b, 24)
	m.Undulation = f32(b, 32)
	m.DatumID = u32(b, 36)
	m.LatitudeStd = f32(b, 40)
	m.LongitudeStd = f32(b, 44)
	m.HeightStd = f32(b, 48)
	copy(m.BaseStationID[:], b[52:56])
	m.DiffAge = f32(b, 56)
	m.SolutionAge = f32(b, 60)
	m.NumSatsTracked = b[64]
	m.NumSatsInSol = b[65]
	m.NumSatsL1 = b[66]
	m.NumSatsMulti = b[67]
	m.ExtSolutionStatus = b[69]
	m.GalBdsUsedMask = b[70]
	m.GPSGloUsedMask = b[71]
	return m
}

// bestVelLog is the BESTVEL / BESTGNSSVEL / PSRVEL body (44 bytes).
type bestVelLog struct {
	SolutionStatus  uint32  // 0
	VelocityType    uint32  // 4
	Latency         float64 // 8, f32, s
	Age             float64 // 12, f32
	HorizontalSpeed float64 // 16, m/s
	TrackOverGround float64 // 24, deg from true north
	VerticalSpeed   float64 // 32, m/s
}

const bestVelLength = 44

func decodeBestVel(b []byte) bestVelLog {
	return bestVelLog{
		SolutionStatus:  u32(b, 0),
		VelocityType:    u32(b, 4),
		Latency:         f32(b, 8),
		Age:             f32(b, 12),
		HorizontalSpeed: f64(b, 16),
		TrackOverGround: f64(b, 24),
		VerticalSpeed:   f64(b, 32),
	}
}

// corrImuDataLog is the CORRIMUDATA(S) body (60 bytes): attitude-corrected
// angle and velocity increments over one sample interval, RFU axes.
type corrImuDataLog struct {
	GPSWeek    uint32  // 0
	GPSSeconds float64 // 4
	XAngChange float64 // 12, rad over the sample interval
	YAngChange float64 // 20
	ZAngChange float64 // 28
	XVelChange float64 // 36, m/s over the sample interval
	YVelChange float64 // 44
	ZVelChange float64 // 52
}

const corrImuDataLength = 60

func decodeCorrImuData(b []byte) corrImuDataLog {
	return corrImuDataLog{
		GPSWeek:    u32(b, 0),
		GPSSeconds: f64(b, 4),
		XAngChange: f64(b, 12),
		YAngChange: f64(b, 20),
		ZAngChange: f64(b, 28),
		XVelChange: f64(b, 36),
		YVelChange: f64(b, 44),
		ZVelChange: f64(b, 52),
	}
}

// insCovLog is the INSCOV(S) body (228 bytes): three row-major 3x3
// covariance matrices.
type insCovLog struct {
	GPSWeek    uint32     // 0
	GPSSeconds float64    // 4
	Position   [9]float64 // 12
	Attitude   [9]float64 // 84, deg^2
	Velocity   [9]float64 // 156
}

const insCovLength = 228

func decodeInsCov(b []byte) insCovLog {
	var m insCovLog
	m.GPSWeek = u32(b, 0)
	m.GPSSeconds = f64(b, 4)
	for i := 0; i < 9; i++ {
		m.Position[i] = f64(b, 12+8*i)
		m.Attitude[i] = f64(b, 84+8*i)
		m.Velocity[i] = f64(b, 156+8*i)
	}
	return m
}

// insPvaLog is the INSPVA(S) body (88 bytes).
type insPvaLog struct {
	GPSWeek       uint32  // 0
	GPSSeconds    float64 // 4
	Latitude      float64 // 12, deg
	Longitude     float64 // 20, deg
	Height        float64 // 28, m
	NorthVelocity float64 // 36, m/s
	EastVelocity  float64 // 44
	UpVelocity    float64 // 52
	Roll          float64 // 60, deg
	Pitch         float64 // 68, deg
	Azimuth       float64 // 76, deg
	Status        uint32  // 84
}

const insPvaLength = 88

func decodeInsPva(b []byte) insPvaLog {
	return insPvaLog{
		GPSWeek:       u32(b, 0),
		GPSSeconds:    f64(b, 4),
		Latitude:      f64(b, 12),
		Longitude:     f64(b, 20),
		Height:        f64(b, 28),
		NorthVelocity: f64(b, 36),
		EastVelocity:  f64(b, 44),
		UpVelocity:    f64(b, 52),
		Roll:          f64(b, 60),
		Pitch:         f64(b, 68),
		Azimuth:       f64(b, 76),
		Status:        u32(b, 84),
	}
}

// insPvaXLog is the INSPVAX body (126 bytes). Only the status words are
// consumed; position duplicates INSPVA.
type insPvaXLog struct {
	InsStatus uint32 // 0
	PosType   uint32 // 4
}

const insPvaXLength = 126

func decodeInsPvaX(b []byte) insPvaXLog {
	return insPvaXLog{InsStatus: u32(b, 0), PosType: u32(b, 4)}
}

// rawImuLog covers both RAWIMU(S) and RAWIMUX(SX) bodies (40 bytes each);
// the two layouts differ only in their leading time/status fields.
//
// RAWIMUX(SX):               RAWIMU(S):
//
//	0  imu error   u8          0  gps week    u32
//	1  imu type    u8          4  gps seconds f64
//	2  gps week    u16         12 imu status  u32
//	4  gps seconds f64
//	12 imu status  u32
//
// then both: z vel change i32 @16, -y vel change i32 @20, x vel change
// i32 @24, z ang change i32 @28, -y ang change i32 @32, x ang change
// i32 @36. Counts are raw; scale comes from the device calibration table.
type rawImuLog struct {
	ImuError   uint8
	GPSWeek    uint32
	GPSSeconds float64
	ImuStatus  uint32

	ZVelChange    int32
	YVelChangeNeg int32
	XVelChange    int32
	ZAngChange    int32
	YAngChangeNeg int32
	XAngChange    int32
}

const (
	rawImuLength  = 40
	rawImuXLength = 40
)

func decodeRawImuX(b []byte) rawImuLog {
	m := decodeIncrements(b)
	m.ImuError = b[0]
	m.GPSWeek = uint32(u16(b, 2))
	m.GPSSeconds = f64(b, 4)
	m.ImuStatus = u32(b, 12)
	return m
}

func decodeRawImu(b []byte) rawImuLog {
	m := decodeIncrements(b)
	m.GPSWeek = u32(b, 0)
	m.GPSSeconds = f64(b, 4)
	m.ImuStatus = u32(b, 12)
	return m
}

func decodeIncrements(b []byte) rawImuLog {
	return rawImuLog{
		ZVelChange:    i32(b, 16),
		YVelChangeNeg: i32(b, 20),
		XVelChange:    i32(b, 24),
		ZAngChange:    i32(b, 28),
		YAngChangeNeg: i32(b, 32),
		XAngChange:    i32(b, 36),
	}
}

// headingLog is the HEADING body (44 bytes).
type headingLog struct {
	SolutionStatus    uint32  // 0
	PositionType      uint32  // 4
	Length            float64 // 8, f32, m
	Heading           float64 // 12, f32, deg
	Pitch             float64 // 16, f32, deg
	Reserved          float64 // 20, f32
	HeadingStd        float64 // 24, f32
	PitchStd          float64 // 28, f32
	StationID         [4]byte // 32
	NumSatsTracked    uint8   // 36
	NumSatsInSol      uint8   // 37
	NumSatsEle        uint8   // 38
	NumSatsL2         uint8   // 39
	SolutionSource    uint8   // 40
	ExtSolutionStatus uint8   // 41
	GalBdsSigMask     uint8   // 42
	GPSGloSigMask     uint8   // 43
}

const headingLength = 44

func decodeHeading(b []byte) headingLog {
	var m headingLog
	m.SolutionStatus = u32(b, 0)
	m.PositionType = u32(b, 4)
	m.Length = f32(b, 8)
	m.Heading = f32(b, 12)
	m.Pitch = f32(b, 16)
	m.Reserved = f32(b, 20)
	m.HeadingStd = f32(b, 24)
	m.PitchStd = f32(b, 28)
	copy(m.StationID[:], b[32:36])
	m.NumSatsTracked = b[36]
	m.NumSatsInSol = b[37]
	m.NumSatsEle = b[38]
	m.NumSatsL2 = b[39]
	m.SolutionSource = b[40]
	m.ExtSolutionStatus = b[41]
	m.GalBdsSigMask = b[42]
	m.GPSGloSigMask = b[43]
	return m
}

// gpsEphemerisLog is the GPSEPHEM body (224 bytes).
type gpsEphemerisLog struct {
	PRN    uint32  // 0
	Tow    float64 // 4
	Health uint32  // 12
	IODE1  uint32  // 16
	IODE2  uint32  // 20
	Week   uint32  // 24
	ZWeek  uint32  // 28
	Toe    float64 // 32
	A      float64 // 40, semi-major axis, m
	DeltaN float64 // 48
	M0     float64 // 56
	Ecc    float64 // 64
	Omega  float64 // 72
	Cuc    float64 // 80
	Cus    float64 // 88
	Crc    float64 // 96
	Crs    float64 // 104
	Cic    float64 // 112
	Cis    float64 // 120
	I0     float64 // 128
	IDot   float64 // 136
	Omega0 float64 // 144
	OmegaD float64 // 152
	IODC   uint32  // 160
	Toc    float64 // 164
	Tgd    float64 // 172
	Af0    float64 // 180
	Af1    float64 // 188
	Af2    float64 // 196
	AS     uint32  // 204
	N      float64 // 208
	URA    float64 // 216, m^2
}

const gpsEphemerisLength = 224

func decodeGPSEphemeris(b []byte) gpsEphemerisLog {
	return gpsEphemerisLog{
		PRN:    u32(b, 0),
		Tow:    f64(b, 4),
		Health: u32(b, 12),
		IODE1:  u32(b, 16),
		IODE2:  u32(b, 20),
		Week:   u32(b, 24),
		ZWeek:  u32(b, 28),
		Toe:    f64(b, 32),
		A:      f64(b, 40),
		DeltaN: f64(b, 48),
		M0:     f64(b, 56),
		Ecc:    f64(b, 64),
		Omega:  f64(b, 72),
		Cuc:    f64(b, 80),
		Cus:    f64(b, 88),
		Crc:    f64(b, 96),
		Crs:    f64(b, 104),
		Cic:    f64(b, 112),
		Cis:    f64(b, 120),
		I0:     f64(b, 128),
		IDot:   f64(b, 136),
		Omega0: f64(b, 144),
		OmegaD: f64(b, 152),
		IODC:   u32(b, 160),
		Toc:    f64(b, 164),
		Tgd:    f64(b, 172),
		Af0:    f64(b, 180),
		Af1:    f64(b, 188),
		Af2:    f64(b, 196),
		AS:     u32(b, 204),
		N:      f64(b, 208),
		URA:    f64(b, 216),
	}
}

// bdsEphemerisLog is the BDSEPHEMERIS body (196 bytes).
type bdsEphemerisLog struct {
	SatelliteID uint32  // 0
	Week        uint32  // 4
	URA         float64 // 8
	Health      uint32  // 16
	Tgd1        float64 // 20
	Tgd2        float64 // 28
	AODC        uint32  // 36
	Toc         uint32  // 40
	A0          float64 // 44
	A1          float64 // 52
	A2          float64 // 60
	AODE        uint32  // 68
	Toe         uint32  // 72
	RootA       float64 // 76
	Ecc         float64 // 84
	Omega       float64 // 92
	DeltaN      float64 // 100
	M0          float64 // 108
	Omega0      float64 // 116
	RRA         float64 // 124
	IncAngle    float64 // 132
	IDot        float64 // 140
	Cuc         float64 // 148
	Cus         float64 // 156
	Crc         float64 // 164
	Crs         float64 // 172
	Cic         float64 // 180
	Cis         float64 // 188
}

const bdsEphemerisLength = 196

func decodeBDSEphemeris(b []byte) bdsEphemerisLog {
	return bdsEphemerisLog{
		SatelliteID: u32(b, 0),
		Week:        u32(b, 4),
		URA:         f64(b, 8),
		Health:      u32(b, 16),
		Tgd1:        f64(b, 20),
		Tgd2:        f64(b, 28),
		AODC:        u32(b, 36),
		Toc:         u32(b, 40),
		A0:          f64(b, 44),
		A1:          f64(b, 52),
		A2:          f64(b, 60),
		AODE:        u32(b, 68),
		Toe:         u32(b, 72),
		RootA:       f64(b, 76),
		Ecc:         f64(b, 84),
		Omega:       f64(b, 92),
		DeltaN:      f64(b, 100),
		M0:          f64(b, 108),
		Omega0:      f64(b, 116),
		RRA:         f64(b, 124),
		IncAngle:    f64(b, 132),
		IDot:        f64(b, 140),
		Cuc:         f64(b, 148),
		Cus:         f64(b, 156),
		Crc:         f64(b, 164),
		Crs:         f64(b, 172),
		Cic:         f64(b, 180),
		Cis:         f64(b, 188),
	}
}

// gloEphemerisLog is the GLOEPHEMERIS body (144 bytes).
type gloEphemerisLog struct {
	Sloto  uint16  // 0, slot + 37
	Freqo  uint16  // 2, frequency number + 7
	EWeek  uint16  // 6
	ETime  uint32  // 8, ms into week
	Issue  uint32  // 20
	Health uint32  // 24
	PosX   float64 // 28
	PosY   float64 // 36
	PosZ   float64 // 44
	VelX   float64 // 52
	VelY   float64 // 60
	VelZ   float64 // 68
	AccX   float64 // 76
	AccY   float64 // 84
	AccZ   float64 // 92
	TauN   float64 // 100
	DTauN  float64 // 108
	Gamma  float64 // 116
	Tk     uint32  // 124
	P      uint32  // 128
	Ft     uint32  // 132
	Age    uint32  // 136
	Flags  uint32  // 140
}

const gloEphemerisLength = 144

func decodeGloEphemeris(b []byte) gloEphemerisLog {
	return gloEphemerisLog{
		Sloto:  u16(b, 0),
		Freqo:  u16(b, 2),
		EWeek:  u16(b, 6),
		ETime:  u32(b, 8),
		Issue:  u32(b, 20),
		Health: u32(b, 24),
		PosX:   f64(b, 28),
		PosY:   f64(b, 36),
		PosZ:   f64(b, 44),
		VelX:   f64(b, 52),
		VelY:   f64(b, 60),
		VelZ:   f64(b, 68),
		AccX:   f64(b, 76),
		AccY:   f64(b, 84),
		AccZ:   f64(b, 92),
		TauN:   f64(b, 100),
		DTauN:  f64(b, 108),
		Gamma:  f64(b, 116),
		Tk:     u32(b, 124),
		P:      u32(b, 128),
		Ft:     u32(b, 132),
		Age:    u32(b, 136),
		Flags:  u32(b, 140),
	}
}
