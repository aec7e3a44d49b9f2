// Package newtonm2 decodes the binary telemetry stream of a Starneto
// Newton-M2 GNSS/INS receiver, which speaks a NovAtel OEM-style framed
// protocol: 3 sync bytes, a long (28 byte) or short (12 byte) little-endian
// header, a fixed-size body per message id, and a trailing CRC-32.
//
// The Parser is a synchronous, single-goroutine state machine. Feed it byte
// ranges with SetBytes and drain decoded records with Next; framing state
// survives across ranges so frames may span arbitrary chunk boundaries.
package newtonm2
