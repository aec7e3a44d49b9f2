// Package recorder captures the raw receiver byte stream to disk and plays
// it back with its original timing, for offline decoding and regression
// runs against field captures.
package recorder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is one captured chunk: the raw bytes as they arrived and their
// offset from the start of the capture.
type Entry struct {
	AtNs int64  `msgpack:"at_ns"`
	Data []byte `msgpack:"data"`
}

type Writer struct {
	f      *os.File
	bw     *bufio.Writer
	enc    *msgpack.Encoder
	start  time.Time
	closed bool
}

// Create opens a capture file for writing.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(f, 64*1024)
	return &Writer{f: f, bw: bw, enc: msgpack.NewEncoder(bw), start: time.Now()}, nil
}

// WriteChunk appends one raw chunk stamped relative to the capture start.
func (w *Writer) WriteChunk(now time.Time, data []byte) error {
	if w.closed {
		return errors.New("recorder writer is closed")
	}
	if len(data) == 0 {
		return errors.New("chunk is empty")
	}

	d := now.Sub(w.start)
	if d < 0 {
		d = 0
	}
	return w.enc.Encode(Entry{AtNs: d.Nanoseconds(), Data: data})
}

func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	return w.bw.Flush()
}

func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

// ReadAll decodes a whole capture.
func ReadAll(r io.Reader) ([]Entry, error) {
	dec := msgpack.NewDecoder(bufio.NewReaderSize(r, 64*1024))
	entries := make([]Entry, 0, 1024)
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, fmt.Errorf("capture decode failed at entry %d: %w", len(entries), err)
		}
		if e.AtNs < 0 {
			return nil, fmt.Errorf("capture entry %d has negative timestamp", len(entries))
		}
		entries = append(entries, e)
	}
}

// ReadFile is ReadAll over a capture file path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}

type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Play replays entries with their relative timing.
//
// speedMultiplier: 1.0 = real time, 2.0 = 2x speed (half waits).
func Play(entries []Entry, speedMultiplier float64, loop bool, sleeper Sleeper, cb func(data []byte) error) error {
	if speedMultiplier <= 0 {
		return fmt.Errorf("speedMultiplier must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("callback is nil")
	}
	if len(entries) == 0 {
		return errors.New("no entries")
	}

	for {
		var lastAt time.Duration
		var haveLast bool

		for _, e := range entries {
			at := time.Duration(e.AtNs)
			if haveLast {
				wait := at - lastAt
				if wait < 0 {
					wait = 0
				}
				wait = time.Duration(float64(wait) / speedMultiplier)
				if wait > 0 {
					sleeper.Sleep(wait)
				}
			}

			if err := cb(e.Data); err != nil {
				return err
			}

			lastAt = at
			haveLast = true
		}

		if !loop {
			return nil
		}
	}
}
