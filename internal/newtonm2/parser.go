package newtonm2

import (
	"encoding/binary"

	"go.uber.org/zap"

	"navlink/internal/logging"
	"navlink/internal/nav"
	"navlink/internal/rawobs"
)

const secondsPerWeek = 604800.0

// gpsToUnixOffset converts GPS seconds to Unix seconds: the GPS epoch is
// 1980-01-06T00:00:00 UTC and GPS time is currently 18 leap seconds ahead.
const gpsToUnixOffset = 315964782.0

// Kind discriminates the decoded message union.
type Kind int

const (
	KindNone Kind = iota
	KindBestGnssPos
	KindGnss
	KindIns
	KindInsStat
	KindImu
	KindGPSEphemeris
	KindBDSEphemeris
	KindGloEphemeris
	KindHeading
	KindObservation
)

func (k Kind) String() string {
	switch k {
	case KindBestGnssPos:
		return "best_gnss_pos"
	case KindGnss:
		return "gnss"
	case KindIns:
		return "ins"
	case KindInsStat:
		return "ins_stat"
	case KindImu:
		return "imu"
	case KindGPSEphemeris:
		return "gps_ephemeris"
	case KindBDSEphemeris:
		return "bds_ephemeris"
	case KindGloEphemeris:
		return "glo_ephemeris"
	case KindHeading:
		return "heading"
	case KindObservation:
		return "observation"
	default:
		return "none"
	}
}

// Message is one decoded output. Exactly the pointer matching Kind is
// non-nil; the pointee is a snapshot that later frames do not mutate.
type Message struct {
	Kind Kind

	BestPose    *nav.BestPose
	Gnss        *nav.Gnss
	Ins         *nav.Ins
	InsStat     *nav.InsStat
	Imu         *nav.Imu
	Ephemeris   *nav.Ephemeris
	Heading     *nav.Heading
	Observation *nav.EpochObservation
}

// Config selects the receiver's device variant.
type Config struct {
	ImuType ImuType
	// FrameMapping is the physical mounting selector; zero selects
	// FrameMappingDefault.
	FrameMapping int
	// Observations overrides the raw-observation sub-decoder. Nil selects
	// rawobs.NewOEMDecoder.
	Observations rawobs.Decoder
}

// Parser turns receiver byte ranges into navigation records. It owns all
// framing and aggregation state and must be driven from a single
// goroutine; run one Parser per receiver.
type Parser struct {
	log *zap.Logger

	// Current input range and scan cursor.
	data []byte
	pos  int

	// Frame accumulation. buf never grows past maxFrameLength.
	buf       []byte
	headerLen int
	totalLen  int

	imuType      ImuType
	frameMapping int
	cal          *imuCal
	imuPrevTime  float64

	obsDecoder rawobs.Decoder

	// Long-lived builder records, mutated in place across frames.
	bestPose nav.BestPose
	gnss     nav.Gnss
	ins      nav.Ins
	insStat  nav.InsStat
	imu      nav.Imu
	eph      nav.Ephemeris
	heading  nav.Heading
	obs      nav.EpochObservation

	gnssStep stepTracker
	insStep  stepTracker

	// Emitted snapshots handed to the caller.
	bestPoseOut nav.BestPose
	gnssOut     nav.Gnss
	insOut      nav.Ins
	insStatOut  nav.InsStat
	imuOut      nav.Imu
	ephOut      nav.Ephemeris
	headingOut  nav.Heading
	obsOut      nav.EpochObservation

	// Change detection for status transitions logged at info.
	lastSolutionStatus int64
	lastPositionType   int64
	lastVelocityType   int64
	lastInsStatus      int64
	haveVelLatency     bool

	warnImuType *logging.Every
	warnMapping *logging.Every
	warnDatum   *logging.Every
	warnTiming  *logging.Every
}

// New builds a parser for one receiver. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	obsDecoder := cfg.Observations
	if obsDecoder == nil {
		obsDecoder = rawobs.NewOEMDecoder()
	}
	frameMapping := cfg.FrameMapping
	if frameMapping == 0 {
		frameMapping = FrameMappingDefault
	}
	return &Parser{
		log:          log,
		buf:          make([]byte, 0, maxFrameLength),
		imuType:      cfg.ImuType,
		frameMapping: frameMapping,
		obsDecoder:   obsDecoder,

		lastSolutionStatus: -1,
		lastPositionType:   -1,
		lastVelocityType:   -1,
		lastInsStatus:      -1,

		warnImuType: logging.NewEvery(5),
		warnMapping: logging.NewEvery(5),
		warnDatum:   logging.NewEvery(5),
		warnTiming:  logging.NewEvery(5),
	}
}

// SetBytes points the parser at newly arrived transport bytes. The scan
// cursor resets; frame accumulation state carries over so frames may span
// ranges.
func (p *Parser) SetBytes(data []byte) {
	p.data = data
	p.pos = 0
}

// Next drives the state machine until a message is ready or the current
// range is exhausted (Kind == KindNone).
func (p *Parser) Next() Message {
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		switch {
		case len(p.buf) == 0: // seeking first sync byte
			if b == sync0 {
				p.buf = append(p.buf, b)
			}
			p.pos++

		case len(p.buf) == 1: // seeking second sync byte
			if b == sync1 {
				p.buf = append(p.buf, b)
				p.pos++
			} else {
				p.buf = p.buf[:0]
			}

		case len(p.buf) == 2: // header variant discriminator
			switch b {
			case syncLongHeader:
				p.buf = append(p.buf, b)
				p.headerLen = longHeaderLength
				p.pos++
			case syncShortHeader:
				p.buf = append(p.buf, b)
				p.headerLen = shortHeaderLength
				p.pos++
			default:
				p.buf = p.buf[:0]
			}

		case p.headerLen > 0: // accumulating header
			if len(p.buf) < p.headerLen {
				p.buf = append(p.buf, b)
				p.pos++
				break
			}
			total := p.headerLen + crcLength + declaredBodyLength(p.buf, p.headerLen)
			if total > maxFrameLength {
				p.log.Warn("declared frame length exceeds protocol maximum",
					zap.Int("total", total))
				p.resetFrame()
				break
			}
			p.totalLen = total
			p.headerLen = 0

		case p.totalLen > 0: // accumulating body + checksum
			if len(p.buf) < p.totalLen {
				p.buf = append(p.buf, b)
				p.pos++
				if len(p.buf) < p.totalLen {
					continue
				}
			}
			msg := p.prepareMessage()
			p.resetFrame()
			if msg.Kind != KindNone {
				return msg
			}
		}
	}
	return Message{}
}

func (p *Parser) resetFrame() {
	p.buf = p.buf[:0]
	p.headerLen = 0
	p.totalLen = 0
}

// dispatchEntry binds a message id to its fixed body length and handler. A
// negative length marks the variable-length observation family, whose
// handler receives the whole frame for the sub-decoder.
type dispatchEntry struct {
	bodyLength int
	handle     func(*Parser, header, []byte) Message
}

var dispatchTable = map[messageID]dispatchEntry{
	idBestGnssPos: {bestPosLength, (*Parser).handleBestGnssPos},
	idBestPos:     {bestPosLength, (*Parser).handleBestPos},
	idPSRPos:      {bestPosLength, (*Parser).handleBestPos},

	idBestVel:     {bestVelLength, (*Parser).handleBestVel},
	idPSRVel:      {bestVelLength, (*Parser).handleBestVel},
	idBestGnssVel: {bestVelLength, (*Parser).handleBestVel},

	idCorrImuData:  {corrImuDataLength, (*Parser).handleCorrImuData},
	idCorrImuDataS: {corrImuDataLength, (*Parser).handleCorrImuData},

	idInsCov:  {insCovLength, (*Parser).handleInsCov},
	idInsCovS: {insCovLength, (*Parser).handleInsCov},

	idInsPva:  {insPvaLength, (*Parser).handleInsPva},
	idInsPvaS: {insPvaLength, (*Parser).handleInsPva},

	idInsPvaX: {insPvaXLength, (*Parser).handleInsPvaX},

	idRawImu:   {rawImuLength, (*Parser).handleRawImu},
	idRawImuS:  {rawImuLength, (*Parser).handleRawImu},
	idRawImuX:  {rawImuXLength, (*Parser).handleRawImuX},
	idRawImuSX: {rawImuXLength, (*Parser).handleRawImuX},

	idGPSEphem:     {gpsEphemerisLength, (*Parser).handleGPSEphemeris},
	idBDSEphemeris: {bdsEphemerisLength, (*Parser).handleBDSEphemeris},
	idGloEphemeris: {gloEphemerisLength, (*Parser).handleGloEphemeris},

	idHeading: {headingLength, (*Parser).handleHeading},

	idRange: {-1, (*Parser).handleRange},
}

// prepareMessage validates and dispatches one complete candidate frame.
// Any failure resolves to KindNone; the caller resets accumulation either
// way.
func (p *Parser) prepareMessage() Message {
	n := len(p.buf)
	payload := p.buf[:n-crcLength]
	// The wire writes the trailing CRC little-endian; compare in wire
	// order, never through a host-order reinterpretation.
	want := binary.LittleEndian.Uint32(p.buf[n-crcLength:])
	if crc32Block(payload) != want {
		p.log.Warn("frame checksum mismatch", zap.Int("frame_len", n))
		return Message{}
	}

	h, headerLen := decodeHeader(p.buf)
	entry, ok := dispatchTable[h.ID]
	if !ok {
		// The receiver logs many message types we do not consume.
		return Message{}
	}
	if entry.bodyLength >= 0 && h.BodyLength != entry.bodyLength {
		p.log.Warn("unexpected body length",
			zap.Uint16("message_id", uint16(h.ID)),
			zap.Int("declared", h.BodyLength),
			zap.Int("expected", entry.bodyLength))
		return Message{}
	}

	if entry.bodyLength < 0 {
		return entry.handle(p, h, p.buf)
	}
	return entry.handle(p, h, p.buf[headerLen:n-crcLength])
}

func gpsSeconds(h header) float64 {
	return float64(h.GPSWeek)*secondsPerWeek + float64(h.GPSMillis)*1e-3
}
