package rawobs

// Result reports what the most recent input byte completed.
type Result int

const (
	// ResultNone means more bytes are needed.
	ResultNone Result = iota
	// ResultEpoch means a full observation epoch is available via Epoch.
	ResultEpoch
)

// Decoder consumes a receiver byte stream one byte at a time.
//
// Implementations keep all framing state internally; feeding arbitrary
// garbage between valid messages is safe and yields ResultNone.
type Decoder interface {
	Input(b byte) Result
	// Epoch returns the most recently completed epoch. The returned value
	// is only valid until the next ResultEpoch.
	Epoch() *Epoch
}

// System identifies the constellation a channel is tracking.
type System int

const (
	SystemGPS System = iota
	SystemGLONASS
	SystemSBAS
	SystemGalileo
	SystemBeiDou
	SystemQZSS
	SystemNavIC
	SystemUnknown
)

// Code identifies the ranging code of a channel.
type Code int

const (
	CodeUnknown Code = iota
	CodeCA           // coarse/acquisition
	CodeP            // precision (incl. semi-codeless)
	CodeOther
)

// Observation is one signal channel's measurements.
type Observation struct {
	FreqIndex    int  // band slot: 0 primary, 1 secondary, 2 tertiary
	Code         Code
	Pseudorange  float64 // m
	CarrierPhase float64 // cycles, sign-corrected
	Doppler      float64 // Hz
	CN0          float64 // dB-Hz
	LockTime     float64 // s
}

// Satellite groups the channels of one tracked satellite.
type Satellite struct {
	System System
	PRN    int
	Obs    []Observation
}

// Epoch is one time step's observations across all tracked satellites.
type Epoch struct {
	GPSWeek    int
	Seconds    float64 // seconds into the GPS week
	Satellites []Satellite
}
