package bin

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding selects how strings are stored.
type Encoding int

const (
	// ASCII stores one byte per character. Bytes above 0x7F are read and
	// written as Windows-1252, the code page the PC releases use.
	ASCII Encoding = iota
	// UTF16 stores two-byte code units in the buffer's byte order.
	UTF16
)

func (e Encoding) unit() int {
	if e == UTF16 {
		return 2
	}
	return 1
}

func (e Encoding) String() string {
	if e == UTF16 {
		return "utf-16"
	}
	return "ascii"
}

func (b *Buffer) textEncoding(e Encoding) encoding.Encoding {
	if e == UTF16 {
		endian := unicode.LittleEndian
		if b.order == binary.BigEndian {
			endian = unicode.BigEndian
		}
		return unicode.UTF16(endian, unicode.IgnoreBOM)
	}
	return charmap.Windows1252
}

// ReadString reads a null-terminated string.
//
// With maxLen > 0 the field is fixed: the cursor always advances maxLen code
// units and the string stops at the first null unit. With maxLen == 0 the
// string runs to its terminator and the cursor moves past it.
func (b *Buffer) ReadString(maxLen int, enc Encoding) string {
	if maxLen < 0 {
		b.Fail(fmt.Errorf("%w: %s string of %d units at offset %d", ErrNegativeLength, enc, maxLen, b.pos))
		return ""
	}
	unit := enc.unit()
	var raw []byte
	if maxLen > 0 {
		field := b.next(maxLen * unit)
		if field == nil {
			return ""
		}
		raw = field[:terminatorIndex(field, unit)]
	} else {
		start := b.pos
		for {
			u := b.next(unit)
			if u == nil {
				return ""
			}
			if isZero(u) {
				break
			}
		}
		raw = b.data[start : b.pos-unit]
	}
	if len(raw) == 0 {
		return ""
	}
	s, err := b.textEncoding(enc).NewDecoder().Bytes(raw)
	if err != nil {
		b.Fail(fmt.Errorf("bin: decode %s string at offset %d: %w", enc, b.pos, err))
		return ""
	}
	return string(s)
}

// WriteString writes s as a null-terminated string.
//
// With maxLen > 0 exactly maxLen code units are written: a value that does
// not fit alongside its terminator is truncated, a shorter one is padded with
// null units. With maxLen == 0 the encoded value and one terminator are written.
func (b *Buffer) WriteString(s string, maxLen int, enc Encoding) {
	if b.err != nil {
		return
	}
	if maxLen < 0 {
		b.Fail(fmt.Errorf("%w: %s string of %d units at offset %d", ErrNegativeLength, enc, maxLen, b.pos))
		return
	}
	unit := enc.unit()
	enc8 := b.textEncoding(enc).NewEncoder()
	if enc == ASCII {
		enc8 = encoding.ReplaceUnsupported(enc8)
	}
	raw, err := enc8.Bytes([]byte(s))
	if err != nil {
		b.Fail(fmt.Errorf("bin: encode %s string at offset %d: %w", enc, b.pos, err))
		return
	}
	if maxLen == 0 {
		b.WriteBytes(raw)
		b.WriteFixedBytes(nil, unit)
		return
	}
	if limit := (maxLen - 1) * unit; len(raw) > limit {
		raw = raw[:limit]
		// A surrogate pair is one character; drop both halves together.
		if enc == UTF16 && limit >= 2 && isHighSurrogate(b.order.Uint16(raw[limit-2:])) {
			raw = raw[:limit-2]
		}
	}
	b.WriteFixedBytes(raw, maxLen*unit)
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }

func terminatorIndex(p []byte, unit int) int {
	for i := 0; i+unit <= len(p); i += unit {
		if isZero(p[i : i+unit]) {
			return i
		}
	}
	return len(p) - len(p)%unit
}

func isZero(p []byte) bool {
	for _, c := range p {
		if c != 0 {
			return false
		}
	}
	return true
}
