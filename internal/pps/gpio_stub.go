//go:build !linux

package pps

import (
	"fmt"
	"io"
	"time"
)

func openLine(pin int, cb func(time.Time)) (io.Closer, error) {
	return nil, fmt.Errorf("pps gpio not supported on this platform")
}
