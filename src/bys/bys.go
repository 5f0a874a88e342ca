// Package bys decodes the binary .bys session logs written by YH-560 family
// pressure-therapy devices.
//
// Layout (byte offsets, all integers big-endian):
//
//	[0,6)    session start time, one byte per field: year-2000, month, day,
//	         hour, minute, second
//	[6,12)   session end time, same layout
//	[32,48)  device model, 16 bytes of Latin-1 text
//	[0,EOF)  the whole buffer doubles as a stream of 2-byte big-endian
//	         unsigned pressure samples (the header bytes are the leading
//	         samples of that same stream)
package bys

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Format offsets. These are the format contract; they must not shift.
const (
	StartTimeOffset = 0
	EndTimeOffset   = 6
	TimestampLen    = 6
	ModelOffset     = 32
	ModelLen        = 16
	// HeaderLen is the minimum buffer size needed to decode a header.
	HeaderLen = ModelOffset + ModelLen
	// SampleWidth is the byte width of one pressure sample.
	SampleWidth = 2
)

// UnknownModel is substituted when the device-model window cannot be decoded.
const UnknownModel = "Unknown Model"

// ErrTruncated reports a buffer too short to hold the 48-byte header.
var ErrTruncated = errors.New("truncated .bys input")

// Timestamp holds the six calendar fields exactly as decoded from disk.
// The format has no century byte; Year is already rebased to 2000+. The
// remaining fields are raw byte values with no range validation — a month
// of 13 is preserved, not rejected. Arithmetic goes through Time(), which
// applies Go's calendar normalization.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// DecodeTimestamp reconstructs a Timestamp from 6 consecutive bytes.
func DecodeTimestamp(b []byte) (Timestamp, error) {
	if len(b) < TimestampLen {
		return Timestamp{}, fmt.Errorf("%w: timestamp needs %d bytes, have %d", ErrTruncated, TimestampLen, len(b))
	}
	return Timestamp{
		Year:   int(b[0]) + 2000,
		Month:  int(b[1]),
		Day:    int(b[2]),
		Hour:   int(b[3]),
		Minute: int(b[4]),
		Second: int(b[5]),
	}, nil
}

// Time converts the decoded fields to a time.Time in the local zone.
func (t Timestamp) Time() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, time.Local)
}

// String formats the raw decoded fields; out-of-range values print as-is.
func (t Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Header is the fixed-offset metadata block of one session file.
type Header struct {
	StartTime   Timestamp
	EndTime     Timestamp
	DeviceModel string
}

// DecodeHeader reads the header fields at their fixed offsets. The buffer
// must hold at least HeaderLen bytes; that is checked before any field read.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderLen, len(buf))
	}
	start, err := DecodeTimestamp(buf[StartTimeOffset : StartTimeOffset+TimestampLen])
	if err != nil {
		return Header{}, err
	}
	end, err := DecodeTimestamp(buf[EndTimeOffset : EndTimeOffset+TimestampLen])
	if err != nil {
		return Header{}, err
	}
	return Header{
		StartTime:   start,
		EndTime:     end,
		DeviceModel: decodeModel(buf[ModelOffset : ModelOffset+ModelLen]),
	}, nil
}

// decodeModel interprets the window as one byte per character (Latin-1).
// That mapping accepts every byte value, so the fallback only fires on an
// undersized window.
func decodeModel(b []byte) string {
	if len(b) < ModelLen {
		return UnknownModel
	}
	var sb strings.Builder
	sb.Grow(ModelLen)
	for _, c := range b[:ModelLen] {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// DecodeSamples reinterprets the entire buffer, header bytes included, as
// consecutive big-endian uint16 samples. A trailing odd byte is dropped.
// An empty buffer yields an empty series, not an error.
func DecodeSamples(buf []byte) []uint16 {
	n := len(buf) / SampleWidth
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = binary.BigEndian.Uint16(buf[i*SampleWidth:])
	}
	return out
}

// Load reads one complete session file into memory. The file handle is
// closed before decoding starts; a missing file surfaces as a wrapped
// fs.ErrNotExist.
func Load(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return b, nil
}
