// Package rawobs decodes raw satellite observation epochs (pseudorange,
// carrier phase, Doppler, C/N0) from a NovAtel OEM-style byte stream. It is
// deliberately self-contained: it performs its own framing and CRC checking
// so callers can hand it bytes without pre-validation, one at a time, and
// act on the epoch-complete signal.
package rawobs
