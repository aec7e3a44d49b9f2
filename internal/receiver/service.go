// Package receiver owns the serial session with the GNSS/INS unit: it
// reads raw byte chunks, drives the protocol parser, and hands decoded
// records to a sink. Failures are published in a snapshot rather than
// taking the process down.
package receiver

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"navlink/internal/newtonm2"
)

type Config struct {
	// Device is the serial device path of the receiver's data port.
	Device string
	Baud   int
}

// Sink receives every decoded record. It is called from the read
// goroutine and must not block.
type Sink func(newtonm2.Message)

// ChunkFunc observes each raw byte chunk before parsing, for capture.
type ChunkFunc func(at time.Time, data []byte)

// Snapshot is the service's last published state.
type Snapshot struct {
	Device  string `json:"device"`
	Baud    int    `json:"baud"`
	Running bool   `json:"running"`

	BytesRead uint64 `json:"bytes_read"`
	Messages  uint64 `json:"messages"`

	LastError string `json:"last_error,omitempty"`
}

type Service struct {
	cfg     Config
	log     *zap.Logger
	parser  *newtonm2.Parser
	sink    Sink
	onChunk ChunkFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	mu     sync.Mutex
	closer io.Closer

	bytesRead atomic.Uint64
	messages  atomic.Uint64
}

// New builds the service. The parser must be used by this service only;
// it is driven from a single goroutine.
func New(cfg Config, parser *newtonm2.Parser, sink Sink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{cfg: cfg, log: log, parser: parser, sink: sink}
	s.last.Store(Snapshot{Device: cfg.Device, Baud: cfg.Baud})
	return s
}

// SetChunkFunc installs a raw-chunk observer. Must be called before Start.
func (s *Service) SetChunkFunc(fn ChunkFunc) { s.onChunk = fn }

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("receiver service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	baud := s.cfg.Baud
	if baud == 0 {
		baud = 115200
	}

	f, err := openSerial(s.cfg.Device, baud)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("receiver open failed device=%s baud=%d: %v", s.cfg.Device, baud, err))
		return err
	}
	s.closer = f

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = f.Close() }()

		s.log.Info("receiver started",
			zap.String("device", s.cfg.Device), zap.Int("baud", baud))

		buf := make([]byte, 4096)
		for {
			select {
			case <-childCtx.Done():
				return
			default:
			}

			n, err := f.Read(buf)
			if n > 0 {
				s.ingest(buf[:n])
			}
			if err != nil {
				if childCtx.Err() == nil {
					s.setError(fmt.Sprintf("receiver read stopped: %v", err))
				}
				return
			}
		}
	}()

	s.last.Store(Snapshot{Device: s.cfg.Device, Baud: baud, Running: true})
	return nil
}

// ingest feeds one chunk through the parser and publishes counters.
func (s *Service) ingest(chunk []byte) {
	if s.onChunk != nil {
		s.onChunk(time.Now(), chunk)
	}

	s.bytesRead.Add(uint64(len(chunk)))
	s.parser.SetBytes(chunk)
	for {
		msg := s.parser.Next()
		if msg.Kind == newtonm2.KindNone {
			break
		}
		s.messages.Add(1)
		if s.sink != nil {
			s.sink(msg)
		}
	}

	cur := s.Snapshot()
	cur.BytesRead = s.bytesRead.Load()
	cur.Messages = s.messages.Load()
	s.last.Store(cur)
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	cur := s.Snapshot()
	cur.LastError = msg
	cur.Running = false
	s.last.Store(cur)
	s.log.Warn("receiver error", zap.String("error", msg))
}
