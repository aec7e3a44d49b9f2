// Package logging builds the process-wide zap logger and provides the
// every-Nth limiter used to keep steady-state decode errors from flooding
// the log.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a structured JSON logger writing to stderr at the given
// level ("debug", "info", "warn", "error"; empty means info).
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit output, for tests.
func NewWithWriter(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// Every admits the first occurrence and then every nth after it. It is not
// safe for concurrent use; each caller owns its own instance.
type Every struct {
	n     uint64
	count uint64
}

// NewEvery returns a limiter admitting one in every n occurrences. n < 1
// behaves as 1 (admit everything).
func NewEvery(n int) *Every {
	if n < 1 {
		n = 1
	}
	return &Every{n: uint64(n)}
}

// Allow records an occurrence and reports whether it should be logged.
func (e *Every) Allow() bool {
	admit := e.count%e.n == 0
	e.count++
	return admit
}
