// Package filetime converts between Go times and the Windows FILETIME wire
// format: a 64-bit count of 100-nanosecond ticks since 1601-01-01 UTC,
// stored little-endian in exactly 8 bytes.
//
// The byte layout is a hard contract with the certificate-chain engine,
// which reads and writes the same value: byte 0 is the least-significant
// byte of the tick count, byte 7 the most-significant.
package filetime

import (
	"encoding/binary"
	"errors"
	"time"
)

// Size is the exact length of an encoded FILETIME value.
const Size = 8

// ErrTooShort is returned by Decode when the input holds fewer than 8 bytes.
var ErrTooShort = errors.New("filetime: value shorter than 8 bytes")

const (
	// ticksPerSecond is the number of 100ns intervals in one second.
	ticksPerSecond = 10_000_000

	// epochDelta is the number of seconds between the FILETIME epoch
	// (1601-01-01) and the Unix epoch (1970-01-01).
	epochDelta = 11_644_473_600
)

// Ticks returns the FILETIME tick count for t.
//
// The arithmetic deliberately avoids time.Duration: the span from 1601 to
// any modern date overflows a Duration's ~292-year range.
func Ticks(t time.Time) uint64 {
	secs := uint64(t.Unix() + epochDelta)
	return secs*ticksPerSecond + uint64(t.Nanosecond()/100)
}

// FromTicks maps a FILETIME tick count to an absolute UTC time.
func FromTicks(ticks uint64) time.Time {
	secs := int64(ticks/ticksPerSecond) - epochDelta
	nsec := int64(ticks%ticksPerSecond) * 100
	return time.Unix(secs, nsec).UTC()
}

// Encode serializes t as an 8-byte little-endian FILETIME value.
// It is total: every time.Time in a realistic calendar range converts
// cleanly, and no error path exists.
func Encode(t time.Time) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint64(buf, Ticks(t))
	return buf
}

// Decode reconstructs a UTC time from a little-endian FILETIME value.
// Inputs shorter than 8 bytes fail with ErrTooShort; they are malformed
// data, not a missing-value signal. Extra trailing bytes are ignored.
// The full 64-bit tick space is valid.
func Decode(b []byte) (time.Time, error) {
	if len(b) < Size {
		return time.Time{}, ErrTooShort
	}
	return FromTicks(binary.LittleEndian.Uint64(b)), nil
}
