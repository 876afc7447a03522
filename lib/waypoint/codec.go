// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package waypoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// MaxWorldIDLength is the longest world id, in bytes, that fits the
// 16-bit length prefix.
const MaxWorldIDLength = math.MaxUint16

// fixedRecordSize is the size of the coordinate and orientation block
// that follows the world id: three float64 and two float32.
const fixedRecordSize = 3*8 + 2*4

// ErrMalformedRecord reports a record that ends before all of its
// fields were read, or whose world id is neither UTF-8 nor modified
// UTF-8.
var ErrMalformedRecord = errors.New("waypoint: malformed record")

// EncodedSize returns the number of bytes w occupies when encoded.
func EncodedSize(w Waypoint) int {
	return 2 + len(w.WorldID) + fixedRecordSize
}

// Encode returns the binary record for w.
func Encode(w Waypoint) ([]byte, error) {
	return AppendEncoded(make([]byte, 0, EncodedSize(w)), w)
}

// AppendEncoded appends the binary record for w to dst and returns the
// extended slice. The world id must be valid UTF-8 and at most
// [MaxWorldIDLength] bytes.
func AppendEncoded(dst []byte, w Waypoint) ([]byte, error) {
	if len(w.WorldID) > MaxWorldIDLength {
		return dst, fmt.Errorf("waypoint: world id is %d bytes, limit is %d", len(w.WorldID), MaxWorldIDLength)
	}
	if !utf8.ValidString(w.WorldID) {
		return dst, fmt.Errorf("waypoint: world id %q is not valid UTF-8", w.WorldID)
	}

	dst = binary.BigEndian.AppendUint16(dst, uint16(len(w.WorldID)))
	dst = append(dst, w.WorldID...)
	dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(w.X))
	dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(w.Y))
	dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(w.Z))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(w.Yaw))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(w.Pitch))
	return dst, nil
}

// Decode reads one record from r. A world id in modified UTF-8 (NUL as
// C0 80, supplementary characters as surrogate pairs) is converted to
// standard UTF-8, so re-encoding such a record does not reproduce its
// bytes.
//
// Returns io.EOF, unwrapped, when r is exhausted before the first byte
// of a record. Returns an error wrapping [ErrMalformedRecord] when r
// ends partway through a record. Any other read error is returned
// as-is so callers can tell a broken stream from a broken record.
func Decode(r io.Reader) (Waypoint, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return Waypoint{}, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return Waypoint{}, fmt.Errorf("%w: stream ends inside the world id length", ErrMalformedRecord)
		}
		return Waypoint{}, err
	}

	worldLength := int(binary.BigEndian.Uint16(prefix[:]))
	body := make([]byte, worldLength+fixedRecordSize)
	if read, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Waypoint{}, fmt.Errorf("%w: got %d of %d bytes after the length prefix",
				ErrMalformedRecord, read, len(body))
		}
		return Waypoint{}, err
	}

	worldID, ok := decodeWorldID(body[:worldLength])
	if !ok {
		return Waypoint{}, fmt.Errorf("%w: world id is not valid UTF-8", ErrMalformedRecord)
	}

	fields := body[worldLength:]
	return Waypoint{
		WorldID: worldID,
		X:       math.Float64frombits(binary.BigEndian.Uint64(fields[0:8])),
		Y:       math.Float64frombits(binary.BigEndian.Uint64(fields[8:16])),
		Z:       math.Float64frombits(binary.BigEndian.Uint64(fields[16:24])),
		Yaw:     math.Float32frombits(binary.BigEndian.Uint32(fields[24:28])),
		Pitch:   math.Float32frombits(binary.BigEndian.Uint32(fields[28:32])),
	}, nil
}

// Writer encodes waypoints onto an underlying stream.
type Writer struct {
	w       io.Writer
	scratch []byte
	count   int
}

// NewWriter returns a Writer that encodes to w. Callers wanting fewer
// syscalls should hand it a buffered writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes one waypoint.
func (w *Writer) Write(point Waypoint) error {
	encoded, err := AppendEncoded(w.scratch[:0], point)
	if err != nil {
		return err
	}
	w.scratch = encoded
	if _, err := w.w.Write(encoded); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of waypoints written so far.
func (w *Writer) Count() int { return w.count }

// Reader decodes waypoints from an underlying stream.
type Reader struct {
	r     io.Reader
	count int
}

// NewReader returns a Reader that decodes from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next decodes the next waypoint. See [Decode] for the error contract.
func (r *Reader) Next() (Waypoint, error) {
	point, err := Decode(r.r)
	if err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			return Waypoint{}, fmt.Errorf("record %d: %w", r.count, err)
		}
		return Waypoint{}, err
	}
	r.count++
	return point, nil
}

// Count returns the number of waypoints decoded so far.
func (r *Reader) Count() int { return r.count }

// WriteAll encodes every waypoint in order.
func WriteAll(w io.Writer, points []Waypoint) error {
	writer := NewWriter(w)
	for _, point := range points {
		if err := writer.Write(point); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll decodes waypoints until r is exhausted. A clean end of
// stream is not an error; a truncated final record is.
func ReadAll(r io.Reader) ([]Waypoint, error) {
	reader := NewReader(r)
	var points []Waypoint
	for {
		point, err := reader.Next()
		if err == io.EOF {
			return points, nil
		}
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
}
