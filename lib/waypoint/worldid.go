// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package waypoint

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeWorldID converts the world id bytes of a record to a string.
// Standard UTF-8 is taken as-is. Otherwise the bytes are read as
// modified UTF-8, the form older JVM-based writers produced: NUL as the
// two bytes C0 80, and characters outside the BMP as a UTF-16
// surrogate pair with each half encoded in three bytes. ok is false
// when the bytes are neither.
func decodeWorldID(data []byte) (worldID string, ok bool) {
	if utf8.Valid(data) {
		return string(data), true
	}

	var builder strings.Builder
	builder.Grow(len(data))
	for i := 0; i < len(data); {
		if data[i] == 0xC0 && i+1 < len(data) && data[i+1] == 0x80 {
			builder.WriteByte(0)
			i += 2
			continue
		}
		if high, ok := surrogateAt(data, i); ok && utf16.IsSurrogate(high) {
			low, ok := surrogateAt(data, i+3)
			if !ok || high >= 0xDC00 || low < 0xDC00 {
				return "", false
			}
			builder.WriteRune(utf16.DecodeRune(high, low))
			i += 6
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return "", false
		}
		builder.WriteRune(r)
		i += size
	}
	return builder.String(), true
}

// surrogateAt decodes the three-byte sequence at data[i] if it encodes
// a UTF-16 surrogate (ED A0 80 through ED BF BF).
func surrogateAt(data []byte, i int) (rune, bool) {
	if i+3 > len(data) || data[i] != 0xED || data[i+1]&0xE0 != 0xA0 || data[i+2]&0xC0 != 0x80 {
		return 0, false
	}
	return rune(data[i]&0x0F)<<12 | rune(data[i+1]&0x3F)<<6 | rune(data[i+2]&0x3F), true
}
