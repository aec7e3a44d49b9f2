package newtonm2

import "encoding/binary"

// Wire framing constants.
const (
	sync0 = 0xAA
	sync1 = 0x44
	// The third sync byte discriminates the header layout.
	syncLongHeader  = 0x12
	syncShortHeader = 0x13

	longHeaderLength  = 28
	shortHeaderLength = 12

	// maxFrameLength bounds the accumulation buffer. The largest message
	// this decoder consumes is a full RANGE epoch, well under this.
	maxFrameLength = 4096
)

// messageID is the wire message identifier.
type messageID uint16

// Message ids consumed by this parser. The receiver emits many more; all
// others are skipped without note.
const (
	idGPSEphem     messageID = 7
	idBestPos      messageID = 42
	idRange        messageID = 43
	idPSRPos       messageID = 47
	idBestVel      messageID = 99
	idPSRVel       messageID = 100
	idInsCov       messageID = 264
	idRawImu       messageID = 268
	idInsCovS      messageID = 320
	idRawImuS      messageID = 325
	idInsPva       messageID = 507
	idInsPvaS      messageID = 508
	idGloEphemeris messageID = 723
	idCorrImuData  messageID = 812
	idCorrImuDataS messageID = 813
	idHeading      messageID = 971
	idBestGnssPos  messageID = 1429
	idBestGnssVel  messageID = 1430
	idRawImuX      messageID = 1461
	idRawImuSX     messageID = 1462
	idInsPvaX      messageID = 1465
	idBDSEphemeris messageID = 1696
)

// header carries the fields common to both header layouts.
type header struct {
	ID         messageID
	BodyLength int
	GPSWeek    uint16
	GPSMillis  uint32
}

// Long header layout (28 bytes, little-endian):
//
//	0  sync[3]
//	3  header length        u8
//	4  message id           u16
//	6  message type         u8
//	7  port address         u8
//	8  message length       u16
//	10 sequence             u16
//	12 idle time            u8
//	13 time status          u8
//	14 gps week             u16
//	16 gps milliseconds     u32
//	20 receiver status      u32
//	24 reserved             u16
//	26 software version     u16
func decodeLongHeader(frame []byte) header {
	return header{
		ID:         messageID(binary.LittleEndian.Uint16(frame[4:])),
		BodyLength: int(binary.LittleEndian.Uint16(frame[8:])),
		GPSWeek:    binary.LittleEndian.Uint16(frame[14:]),
		GPSMillis:  binary.LittleEndian.Uint32(frame[16:]),
	}
}

// Short header layout (12 bytes, little-endian):
//
//	0  sync[3]
//	3  message length       u8
//	4  message id           u16
//	6  gps week             u16
//	8  gps milliseconds     u32
func decodeShortHeader(frame []byte) header {
	return header{
		ID:         messageID(binary.LittleEndian.Uint16(frame[4:])),
		BodyLength: int(frame[3]),
		GPSWeek:    binary.LittleEndian.Uint16(frame[6:]),
		GPSMillis:  binary.LittleEndian.Uint32(frame[8:]),
	}
}

// declaredBodyLength reads the body length of a just-completed header
// without interpreting the rest of it.
func declaredBodyLength(buf []byte, headerLen int) int {
	if headerLen == longHeaderLength {
		return int(binary.LittleEndian.Uint16(buf[8:]))
	}
	return int(buf[3])
}

// decodeHeader interprets a validated frame's header. The variant is fixed
// by the third sync byte for the lifetime of the frame.
func decodeHeader(frame []byte) (header, int) {
	if frame[2] == syncLongHeader {
		return decodeLongHeader(frame), longHeaderLength
	}
	return decodeShortHeader(frame), shortHeaderLength
}
