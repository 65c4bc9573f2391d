package block

import (
	"encoding/binary"
	"fmt"

	"github.com/samcharles93/savekit/pkg/bin"
)

// Info describes one outer block found by Walk.
type Info struct {
	Index int `json:"index"`
	// Offset of the length prefix from the start of the data.
	Offset int `json:"offset"`
	// Length is the value of the length prefix.
	Length int `json:"length"`
	// Tag is set when the payload opens with a printable tag whose inner
	// length agrees with Length.
	Tag string `json:"tag,omitempty"`
}

// PayloadOffset returns the offset of the first payload byte.
func (i Info) PayloadOffset() int { return i.Offset + HeaderSize }

// End returns the aligned offset just past the block.
func (i Info) End() int { return bin.Align4(i.PayloadOffset() + i.Length) }

// Walk enumerates the outer blocks of data without decoding them. The walk
// stops when at most trailer bytes remain, which lets callers skip a trailing
// checksum.
func Walk(data []byte, order binary.ByteOrder, trailer int) ([]Info, error) {
	if order == nil {
		order = binary.LittleEndian
	}
	var out []Info
	off := 0
	for len(data)-off > trailer {
		if len(data)-off < HeaderSize {
			return out, fmt.Errorf("%w: %d stray bytes at offset %d", ErrMalformedBlock, len(data)-off, off)
		}
		n := int64(order.Uint32(data[off:]))
		if n > int64(len(data)-off-HeaderSize) {
			return out, fmt.Errorf("%w: block %d at offset %d declares %d bytes, %d remain",
				ErrMalformedBlock, len(out), off, n, len(data)-off-HeaderSize)
		}
		info := Info{Index: len(out), Offset: off, Length: int(n)}
		info.Tag = sniffTag(data[info.PayloadOffset():info.PayloadOffset()+info.Length], order)
		out = append(out, info)
		off = info.End()
	}
	return out, nil
}

func sniffTag(payload []byte, order binary.ByteOrder) string {
	if len(payload) < TagOverhead {
		return ""
	}
	if int(order.Uint32(payload[TagSize:])) != len(payload)-TagOverhead {
		return ""
	}
	tag := DecodeTag(payload[:TagSize])
	if tag == "" {
		return ""
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] < 0x20 || tag[i] > 0x7e {
			return ""
		}
	}
	return tag
}
