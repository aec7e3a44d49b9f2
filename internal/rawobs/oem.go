package rawobs

import (
	"encoding/binary"
	"math"
)

// OEM framing: AA 44 12 sync, 28-byte little-endian long header with the
// body length at offset 8 and the message id at offset 4, 4-byte CRC-32
// trailer. RANGE (id 43) carries one epoch: an observation count followed
// by 44-byte channel entries.
const (
	oemSync0      = 0xAA
	oemSync1      = 0x44
	oemSync2      = 0x12
	oemHeaderLen  = 28
	oemCRCLen     = 4
	oemMaxRawLen  = 4096
	oemIDRange    = 43
	oemChannelLen = 44
)

// OEMDecoder decodes RANGE observation epochs from an OEM byte stream.
// The zero value is not usable; call NewOEMDecoder.
type OEMDecoder struct {
	buf    []byte
	length int // total frame length excluding CRC, once the header is in

	epoch Epoch
}

func NewOEMDecoder() *OEMDecoder {
	return &OEMDecoder{buf: make([]byte, 0, oemMaxRawLen)}
}

// Input consumes one byte, resynchronizing on the 3-byte sync sequence.
func (d *OEMDecoder) Input(b byte) Result {
	if len(d.buf) < 3 {
		// Slide a 3-byte sync window.
		d.buf = append(d.buf, b)
		if len(d.buf) == 3 {
			if !(d.buf[0] == oemSync0 && d.buf[1] == oemSync1 && d.buf[2] == oemSync2) {
				copy(d.buf, d.buf[1:])
				d.buf = d.buf[:2]
			}
		}
		return ResultNone
	}

	d.buf = append(d.buf, b)
	if len(d.buf) == 10 {
		d.length = int(binary.LittleEndian.Uint16(d.buf[8:])) + oemHeaderLen
		if d.length+oemCRCLen > oemMaxRawLen {
			d.reset()
			return ResultNone
		}
	}
	if len(d.buf) < 10 || len(d.buf) < d.length+oemCRCLen {
		return ResultNone
	}

	frame := d.buf
	length := d.length
	d.reset()

	if oemCRC32(frame[:length]) != binary.LittleEndian.Uint32(frame[length:]) {
		return ResultNone
	}
	if messageID := binary.LittleEndian.Uint16(frame[4:]); messageID != oemIDRange {
		return ResultNone
	}
	if d.decodeRange(frame) {
		return ResultEpoch
	}
	return ResultNone
}

// Epoch returns the last completed epoch.
func (d *OEMDecoder) Epoch() *Epoch { return &d.epoch }

func (d *OEMDecoder) reset() {
	d.buf = d.buf[:0]
	d.length = 0
}

// decodeRange parses a validated RANGE frame into d.epoch.
func (d *OEMDecoder) decodeRange(frame []byte) bool {
	week := int(binary.LittleEndian.Uint16(frame[14:]))
	millis := binary.LittleEndian.Uint32(frame[16:])
	if week == 0 {
		return false
	}

	body := frame[oemHeaderLen:]
	if len(body) < 4 {
		return false
	}
	nobs := int(binary.LittleEndian.Uint32(body))
	if len(body) < 4+nobs*oemChannelLen {
		return false
	}

	d.epoch = Epoch{
		GPSWeek:    week,
		Seconds:    float64(millis) * 1e-3,
		Satellites: d.epoch.Satellites[:0],
	}

	for i := 0; i < nobs; i++ {
		ch := body[4+i*oemChannelLen:]
		stat := binary.LittleEndian.Uint32(ch[40:])

		sys := trackSystem(stat)
		freqIdx, code, ok := signalBand(sys, int(stat>>21)&0x1f)
		if !ok {
			continue
		}

		prn := int(binary.LittleEndian.Uint16(ch))
		if sys == SystemGLONASS {
			prn -= 37 // wire carries slot + 37
		}
		if prn <= 0 {
			continue
		}

		phaseLock := stat>>10&1 != 0
		codeLock := stat>>12&1 != 0

		obs := Observation{
			FreqIndex: freqIdx,
			Code:      code,
			CN0:       float64(math.Float32frombits(binary.LittleEndian.Uint32(ch[32:]))),
			LockTime:  float64(math.Float32frombits(binary.LittleEndian.Uint32(ch[36:]))),
		}
		if codeLock {
			obs.Pseudorange = math.Float64frombits(binary.LittleEndian.Uint64(ch[4:]))
		}
		if phaseLock {
			// Accumulated Doppler range is negated to get carrier phase.
			obs.CarrierPhase = -math.Float64frombits(binary.LittleEndian.Uint64(ch[16:]))
			obs.Doppler = float64(math.Float32frombits(binary.LittleEndian.Uint32(ch[28:])))
		}

		d.addObservation(sys, prn, obs)
	}
	return true
}

func (d *OEMDecoder) addObservation(sys System, prn int, obs Observation) {
	for i := range d.epoch.Satellites {
		s := &d.epoch.Satellites[i]
		if s.System == sys && s.PRN == prn {
			s.Obs = append(s.Obs, obs)
			return
		}
	}
	d.epoch.Satellites = append(d.epoch.Satellites, Satellite{
		System: sys,
		PRN:    prn,
		Obs:    []Observation{obs},
	})
}

// trackSystem extracts the constellation from a channel tracking status
// word (bits 16-18).
func trackSystem(stat uint32) System {
	switch stat >> 16 & 0x7 {
	case 0:
		return SystemGPS
	case 1:
		return SystemGLONASS
	case 2:
		return SystemSBAS
	case 3:
		return SystemGalileo
	case 4:
		return SystemBeiDou
	case 5:
		return SystemQZSS
	case 6:
		return SystemNavIC
	default:
		return SystemUnknown
	}
}

// signalBand maps a (system, signal type) pair from the tracking status
// word to a band slot and ranging code. Signals this decoder does not
// track map ok=false and the channel is skipped.
func signalBand(sys System, sigtype int) (int, Code, bool) {
	switch sys {
	case SystemGPS:
		switch sigtype {
		case 0:
			return 0, CodeCA, true // L1 C/A
		case 5, 9:
			return 1, CodeP, true // L2P, L2P(Y) semi-codeless
		case 17:
			return 1, CodeOther, true // L2C(M)
		case 14:
			return 2, CodeOther, true // L5Q
		}
	case SystemGLONASS:
		switch sigtype {
		case 0:
			return 0, CodeCA, true // G1 C/A
		case 1:
			return 1, CodeCA, true // G2 C/A
		case 5:
			return 1, CodeP, true // G2 P
		}
	case SystemBeiDou:
		switch sigtype {
		case 0, 4:
			return 0, CodeCA, true // B1I
		case 1, 17:
			return 1, CodeCA, true // B2I
		case 2, 21:
			return 2, CodeCA, true // B3I
		}
	}
	return 0, CodeUnknown, false
}

// oemCRC32 is the OEM CRC-32: reflected 0xEDB88320, zero init, no final
// inversion.
func oemCRC32(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = oemCRCTable[(crc^uint32(b))&0xff] ^ (crc >> 8)
	}
	return crc
}

var oemCRCTable = func() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i)
		for bit := 0; bit < 8; bit++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()
