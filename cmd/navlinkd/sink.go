package main

import (
	"sync"

	"go.uber.org/zap"

	"navlink/internal/newtonm2"
)

// sink fans decoded records into the log and keeps per-kind totals. handle
// runs on the read goroutine; totals are read at shutdown.
type sink struct {
	log *zap.Logger

	mu     sync.Mutex
	counts map[newtonm2.Kind]uint64
}

func newSink(log *zap.Logger) *sink {
	return &sink{log: log, counts: make(map[newtonm2.Kind]uint64)}
}

func (s *sink) handle(msg newtonm2.Message) {
	s.mu.Lock()
	s.counts[msg.Kind]++
	s.mu.Unlock()

	switch msg.Kind {
	case newtonm2.KindGnss:
		s.log.Debug("gnss solution",
			zap.Float64("time", msg.Gnss.MeasurementTime),
			zap.Float64("lat", msg.Gnss.Position.Lat),
			zap.Float64("lon", msg.Gnss.Position.Lon),
			zap.Float64("height", msg.Gnss.Position.Height),
			zap.String("quality", msg.Gnss.Quality.String()),
			zap.Int("sats", msg.Gnss.NumSats))
	case newtonm2.KindIns:
		s.log.Debug("ins solution",
			zap.Float64("time", msg.Ins.MeasurementTime),
			zap.Float64("lat", msg.Ins.Position.Lat),
			zap.Float64("lon", msg.Ins.Position.Lon),
			zap.String("quality", msg.Ins.Quality.String()))
	case newtonm2.KindImu:
		s.log.Debug("imu sample", zap.Float64("time", msg.Imu.MeasurementTime))
	case newtonm2.KindHeading:
		s.log.Debug("heading",
			zap.Float64("time", msg.Heading.MeasurementTime),
			zap.Float64("heading_deg", msg.Heading.Heading))
	case newtonm2.KindObservation:
		s.log.Debug("observation epoch",
			zap.Int("week", msg.Observation.GnssWeek),
			zap.Float64("second", msg.Observation.GnssSecond),
			zap.Int("satellites", len(msg.Observation.Satellites)))
	default:
		s.log.Debug("record", zap.String("kind", msg.Kind.String()))
	}
}

func (s *sink) logTotals() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make([]zap.Field, 0, len(s.counts))
	for kind, n := range s.counts {
		fields = append(fields, zap.Uint64(kind.String(), n))
	}
	s.log.Info("decoded record totals", fields...)
}
