package newtonm2

import "navlink/internal/nav"

// ImuType selects the inertial unit installed behind the receiver. It
// determines raw-count scale factors and the sampling rate.
type ImuType int

const (
	ImuUnknown ImuType = iota
	ImuADIS16488
	ImuSTIM300
	ImuISA100C
	ImuG320N
	ImuCPTXW5651
)

func (t ImuType) String() string {
	switch t {
	case ImuADIS16488:
		return "adis16488"
	case ImuSTIM300:
		return "stim300"
	case ImuISA100C:
		return "isa100c"
	case ImuG320N:
		return "g320n"
	case ImuCPTXW5651:
		return "cpt-xw5651"
	default:
		return "unknown"
	}
}

// ParseImuType maps a configuration string to an ImuType. Unrecognized
// names return ImuUnknown, which the parser treats as an unsupported
// device when raw inertial frames arrive.
func ParseImuType(s string) ImuType {
	switch s {
	case "adis16488":
		return ImuADIS16488
	case "stim300":
		return ImuSTIM300
	case "isa100c":
		return ImuISA100C
	case "g320n":
		return ImuG320N
	case "cpt-xw5651":
		return ImuCPTXW5651
	default:
		return ImuUnknown
	}
}

// imuParameter holds per-device raw-count scales (per sample) and the
// sampling rate. A zero sampling rate marks an unsupported device.
type imuParameter struct {
	GyroScale      float64 // rad per count, per sample
	AccelScale     float64 // m/s per count, per sample
	SamplingRateHz float64
}

const degToRad = 0.017453292519943295

var imuParameters = map[ImuType]imuParameter{
	ImuADIS16488: {720.0 / 2147483648.0 * degToRad, 200.0 / 2147483648.0, 200.0},
	ImuSTIM300:   {2.0 / 2097152.0 * degToRad, 2.0 / 8192.0, 125.0},
	ImuISA100C:   {1.0e-9, 2.0e-8, 200.0},
	ImuG320N:     {1.7044230976507124e-11, 2.3929443359375006e-10, 125.0},
	ImuCPTXW5651: {1.0850694444444445e-7, 1.52587890625e-6, 100.0},
}

// imuCal is the derived calibration state. It is created at most once per
// parser lifetime, on the first raw inertial frame.
type imuCal struct {
	GyroScale  float64 // rad/s per count
	AccelScale float64 // m/s^2 per count
	RateHz     float64
	Span       float64 // seconds between samples
}

// newImuCal is the pure uninitialized->initialized transition. ok is false
// when the device type has no usable parameter entry.
func newImuCal(t ImuType) (imuCal, bool) {
	p := imuParameters[t]
	if p.SamplingRateHz == 0 {
		return imuCal{}, false
	}
	return imuCal{
		GyroScale:  p.GyroScale * p.SamplingRateHz,
		AccelScale: p.AccelScale * p.SamplingRateHz,
		RateHz:     p.SamplingRateHz,
		Span:       1.0 / p.SamplingRateHz,
	}, true
}

// Physical mounting conventions. Each selector fixes how the receiver's
// native right-forward-up axes map onto the unit's measurement axes.
const (
	// FrameMappingDefault is the standard mounting.
	FrameMappingDefault = 5
	// FrameMappingRotated is the 90-degree-rotated mounting.
	FrameMappingRotated = 6
)

// rfuToFLU converts a right-forward-up vector to the forward-left-up
// output convention.
func rfuToFLU(x, y, z float64) nav.Vector3 {
	return nav.Vector3{X: y, Y: -x, Z: z}
}

// mapAxes applies the mounting-selector permutation to raw RFU increments
// (x, negated y, z as they appear on the wire) and converts to FLU. ok is
// false for an unrecognized selector; callers must drop the sample.
func mapAxes(mapping int, x, yNeg, z float64) (nav.Vector3, bool) {
	switch mapping {
	case FrameMappingDefault:
		return rfuToFLU(x, -yNeg, z), true
	case FrameMappingRotated:
		return rfuToFLU(-yNeg, x, -z), true
	default:
		return nav.Vector3{}, false
	}
}
