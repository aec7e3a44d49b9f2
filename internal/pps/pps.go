// Package pps watches the receiver's pulse-per-second output on a GPIO
// line. The pulse marks the top of each GPS second; consumers use it to
// bound the latency between receiver time and host time.
package pps

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Snapshot struct {
	Pin       int       `json:"pin"`
	Running   bool      `json:"running"`
	Pulses    uint64    `json:"pulses"`
	LastPulse time.Time `json:"last_pulse,omitempty"`
}

type Service struct {
	pin int
	log *zap.Logger

	mu   sync.Mutex
	line io.Closer

	running atomic.Bool
	pulses  atomic.Uint64
	last    atomic.Value // time.Time
}

func New(pin int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{pin: pin, log: log}
}

func (s *Service) Start() error {
	if s == nil {
		return fmt.Errorf("pps service is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.line != nil {
		return nil
	}

	line, err := openLine(s.pin, s.onPulse)
	if err != nil {
		return err
	}
	s.line = line
	s.running.Store(true)
	s.log.Info("pps watcher started", zap.Int("pin", s.pin))
	return nil
}

func (s *Service) onPulse(at time.Time) {
	s.pulses.Add(1)
	s.last.Store(at)
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	line := s.line
	s.line = nil
	s.mu.Unlock()

	s.running.Store(false)
	if line != nil {
		_ = line.Close()
	}
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Pin:     s.pin,
		Running: s.running.Load(),
		Pulses:  s.pulses.Load(),
	}
	if v := s.last.Load(); v != nil {
		snap.LastPulse = v.(time.Time)
	}
	return snap
}
