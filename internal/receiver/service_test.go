package receiver

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"navlink/internal/newtonm2"
)

func oemCRC(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc ^= uint32(b)
		for bit := 0; bit < 8; bit++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// bestGnssPosFrame builds a minimal valid BESTGNSSPOS frame.
func bestGnssPosFrame(lat, lon float64) []byte {
	body := make([]byte, 72)
	binary.LittleEndian.PutUint32(body[4:], 16) // single point
	binary.LittleEndian.PutUint64(body[8:], math.Float64bits(lat))
	binary.LittleEndian.PutUint64(body[16:], math.Float64bits(lon))
	binary.LittleEndian.PutUint32(body[36:], 61) // wgs84

	frame := make([]byte, 28+len(body)+4)
	frame[0], frame[1], frame[2] = 0xAA, 0x44, 0x12
	frame[3] = 28
	binary.LittleEndian.PutUint16(frame[4:], 1429)
	binary.LittleEndian.PutUint16(frame[8:], uint16(len(body)))
	binary.LittleEndian.PutUint16(frame[14:], 2100)
	binary.LittleEndian.PutUint32(frame[16:], 500)
	copy(frame[28:], body)
	binary.LittleEndian.PutUint32(frame[len(frame)-4:], oemCRC(frame[:len(frame)-4]))
	return frame
}

func TestIngestParsesAndCounts(t *testing.T) {
	parser := newtonm2.New(newtonm2.Config{ImuType: newtonm2.ImuADIS16488}, nil)

	var got []newtonm2.Message
	s := New(Config{Device: "/dev/null", Baud: 115200}, parser,
		func(m newtonm2.Message) { got = append(got, m) }, nil)

	var chunks int
	s.SetChunkFunc(func(at time.Time, data []byte) { chunks++ })

	frame := bestGnssPosFrame(37.4, -122.1)
	// Split across two chunks to exercise cross-chunk framing.
	s.ingest(frame[:20])
	s.ingest(frame[20:])

	if len(got) != 1 {
		t.Fatalf("sink received %d messages, want 1", len(got))
	}
	if got[0].Kind != newtonm2.KindBestGnssPos {
		t.Fatalf("kind = %v, want best gnss pos", got[0].Kind)
	}
	if got[0].BestPose.Latitude != 37.4 {
		t.Errorf("lat = %v, want 37.4", got[0].BestPose.Latitude)
	}
	if chunks != 2 {
		t.Errorf("chunk observer saw %d chunks, want 2", chunks)
	}

	snap := s.Snapshot()
	if snap.BytesRead != uint64(len(frame)) {
		t.Errorf("bytes read = %d, want %d", snap.BytesRead, len(frame))
	}
	if snap.Messages != 1 {
		t.Errorf("messages = %d, want 1", snap.Messages)
	}
}

func TestSnapshotBeforeStart(t *testing.T) {
	parser := newtonm2.New(newtonm2.Config{ImuType: newtonm2.ImuADIS16488}, nil)
	s := New(Config{Device: "/dev/ttyUSB0", Baud: 230400}, parser, nil, nil)

	snap := s.Snapshot()
	if snap.Device != "/dev/ttyUSB0" || snap.Baud != 230400 || snap.Running {
		t.Fatalf("snapshot = %+v", snap)
	}
}
