// Package block frames save data into length-prefixed, optionally tagged
// blocks.
//
// An outer block is laid out as
//
//	[u32 length][payload][align to 4]
//
// and a tagged block as
//
//	[u32 length = n+8][tag, 4 bytes][u32 inner length = n][payload][align to 4]
//
// Lengths use the byte order of the buffer they are written to.
package block

import (
	"errors"
	"fmt"

	"github.com/samcharles93/savekit/pkg/bin"
)

const (
	// HeaderSize is the width of the outer length prefix.
	HeaderSize = 4
	// TagSize is the width of a tag.
	TagSize = 4
	// TagOverhead is the tag plus its inner length field.
	TagOverhead = TagSize + 4
)

var ErrMalformedBlock = errors.New("block: malformed block")

// EncodeTag pads s with null bytes to TagSize. Tags longer than TagSize are
// cut.
func EncodeTag(s string) [TagSize]byte {
	var t [TagSize]byte
	copy(t[:], s)
	return t
}

// DecodeTag strips trailing null bytes from a raw tag.
func DecodeTag(raw []byte) string {
	n := len(raw)
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return string(raw[:n])
}

// PayloadLen returns the value Write stores in the length prefix.
func PayloadLen(tag string, fragments ...[]byte) int {
	n := 0
	for _, f := range fragments {
		n += len(f)
	}
	if tag != "" {
		n += TagOverhead
	}
	return n
}

// Write frames the concatenation of fragments as one block and aligns the
// cursor. An empty tag writes an untagged block. It returns the number of
// bytes written including alignment.
func Write(b *bin.Buffer, tag string, fragments ...[]byte) int {
	start := b.Pos()
	n := PayloadLen(tag, fragments...)
	b.WriteU32(uint32(n))
	if tag != "" {
		WriteTag(b, tag, n-TagOverhead)
	}
	for _, f := range fragments {
		b.WriteBytes(f)
	}
	b.WriteAlign4()
	return b.Pos() - start
}

// WriteTag writes a tag and an inner length without an outer length prefix.
// Block 0 uses this form for the sub-block that follows the global variables.
func WriteTag(b *bin.Buffer, tag string, n int) {
	t := EncodeTag(tag)
	b.WriteBytes(t[:])
	b.WriteU32(uint32(n))
}

// ReadTag reads a tag and its inner length and checks the tag against want.
// It returns the inner length.
func ReadTag(b *bin.Buffer, want string) (int, error) {
	at := b.Pos()
	raw := b.ReadBytes(TagSize)
	n := b.ReadU32()
	if err := b.Err(); err != nil {
		return 0, err
	}
	if got := DecodeTag(raw); got != want {
		err := fmt.Errorf("%w: tag %q at offset %d, want %q", ErrMalformedBlock, got, at, want)
		b.Fail(err)
		return 0, err
	}
	if int64(n) > int64(b.Remaining()) {
		err := fmt.Errorf("%w: %q declares %d bytes at offset %d, %d remain", ErrMalformedBlock, want, n, at, b.Remaining())
		b.Fail(err)
		return 0, err
	}
	return int(n), nil
}

// Read reads one block and returns its payload, then aligns the cursor. When
// tag is non-empty the block must carry that tag and a consistent inner
// length; the returned payload excludes the tag overhead. The payload aliases
// the buffer.
func Read(b *bin.Buffer, tag string) ([]byte, error) {
	at := b.Pos()
	n := b.ReadU32()
	if err := b.Err(); err != nil {
		return nil, err
	}
	if int64(n) > int64(b.Remaining()) {
		err := fmt.Errorf("%w: %w: length %d at offset %d exceeds the %d remaining bytes",
			ErrMalformedBlock, bin.ErrOutOfData, n, at, b.Remaining())
		b.Fail(err)
		return nil, err
	}
	size := int(n)
	if tag != "" {
		if size < TagOverhead {
			err := fmt.Errorf("%w: %q block at offset %d is %d bytes, too short for its tag", ErrMalformedBlock, tag, at, size)
			b.Fail(err)
			return nil, err
		}
		inner, err := ReadTag(b, tag)
		if err != nil {
			return nil, err
		}
		if inner != size-TagOverhead {
			err := fmt.Errorf("%w: %q block at offset %d has inner length %d, outer %d", ErrMalformedBlock, tag, at, inner, size)
			b.Fail(err)
			return nil, err
		}
		size = inner
	}
	payload := b.Bytes()[b.Pos() : b.Pos()+size]
	b.Skip(size)
	b.ReadAlign4()
	if err := b.Err(); err != nil {
		return nil, err
	}
	return payload, nil
}
