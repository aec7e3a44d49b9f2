// Package nav defines the normalized navigation records produced by the
// receiver decoders. These are plain data carriers; all decoding, unit
// conversion and aggregation logic lives with the protocol parsers.
package nav
