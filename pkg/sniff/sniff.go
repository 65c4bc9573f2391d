// Package sniff infers which format produced an untagged save file.
//
// Detection runs in two stages. Offset probing checks for each format's size
// constant and a signature tag at the offsets that format predicts, and keeps
// only the formats where both are present. When several survive, the structural
// fallback measures the element size of a counted record block and matches
// it against the per-format element sizes. A file that neither stage pins to
// exactly one format is rejected.
package sniff

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/block"
	"github.com/samcharles93/savekit/pkg/format"
)

var ErrUnrecognizedFormat = errors.New("sniff: unrecognized format")

// Probe predicts where one format stores its fingerprints.
type Probe struct {
	Format format.Format
	// SizeConst is the total game-data size constant the format embeds.
	SizeConst uint32
	// SizeOffset is the file offset of SizeConst.
	SizeOffset int
	// TagOffset is the file offset of the signature tag.
	TagOffset int
	// ElementSize is the per-record size of the counted block used by the
	// structural fallback. Zero excludes the probe from the fallback.
	ElementSize int
}

// Method names the stage that settled a detection.
type Method string

const (
	MethodOffsets   Method = "offsets"
	MethodStructure Method = "structure"
)

// Result is a successful detection.
type Result struct {
	Format     format.Format
	Method     Method
	SizeOffset int
	TagOffset  int
	// ElementSize is the measured record size, set by the structural fallback.
	ElementSize int
	// Candidates lists the formats offset probing could not tell apart.
	Candidates []format.Format
}

// Sniffer holds the probe table for one game.
type Sniffer struct {
	Probes []Probe
	// Tag is the signature tag, null padded to four bytes when searched.
	Tag string
	// ElementBlock is the index of the outer block holding the counted
	// records: a u32 count followed by count equal-sized records.
	ElementBlock int
	// Trailer is the number of bytes after the last outer block.
	Trailer int
	Log     logger.Logger
}

func (s *Sniffer) log() logger.Logger {
	if s.Log == nil {
		return logger.Discard()
	}
	return s.Log
}

// Detect returns the format data was written in.
func (s *Sniffer) Detect(data []byte) (format.Format, error) {
	res, err := s.Sniff(data)
	if err != nil {
		return format.Format{}, err
	}
	return res.Format, nil
}

// Sniff runs offset probing and, when needed, the structural fallback.
func (s *Sniffer) Sniff(data []byte) (Result, error) {
	tag := block.EncodeTag(s.Tag)

	var candidates []Probe
	for _, p := range s.Probes {
		if p.matches(data, tag) {
			candidates = append(candidates, p)
		}
	}

	tagOff := bytes.Index(data, tag[:])
	s.log().Debug("offset probing",
		"tag", s.Tag,
		"first_tag_offset", tagOff,
		"candidates", probeIDs(candidates),
	)

	switch len(candidates) {
	case 0:
		return Result{}, fmt.Errorf("%w: no format has the size constant and %q tag at its offsets (first tag at %d)",
			ErrUnrecognizedFormat, s.Tag, tagOff)
	case 1:
		p := candidates[0]
		return Result{
			Format:     p.Format,
			Method:     MethodOffsets,
			SizeOffset: p.SizeOffset,
			TagOffset:  p.TagOffset,
		}, nil
	}
	return s.structural(data, candidates)
}

// matches reports whether data holds p's size constant and tag exactly at
// p's offsets. Earlier occurrences of either value elsewhere in the file
// are ordinary game data and do not count against the probe.
func (p Probe) matches(data []byte, tag [block.TagSize]byte) bool {
	if p.SizeOffset < 0 || p.TagOffset < 0 ||
		p.SizeOffset+4 > len(data) || p.TagOffset+len(tag) > len(data) {
		return false
	}
	if p.Format.ByteOrder().Uint32(data[p.SizeOffset:]) != p.SizeConst {
		return false
	}
	return bytes.Equal(data[p.TagOffset:p.TagOffset+len(tag)], tag[:])
}

func (s *Sniffer) structural(data []byte, candidates []Probe) (Result, error) {
	forms := make([]format.Format, len(candidates))
	for i, p := range candidates {
		forms[i] = p.Format
	}
	order := candidates[0].Format.ByteOrder()

	blocks, err := block.Walk(data, order, s.Trailer)
	if err != nil {
		return Result{}, fmt.Errorf("%w: ambiguous between %s and the block structure is unreadable: %w",
			ErrUnrecognizedFormat, probeIDs(candidates), err)
	}
	if s.ElementBlock >= len(blocks) {
		return Result{}, fmt.Errorf("%w: ambiguous between %s and block %d is missing",
			ErrUnrecognizedFormat, probeIDs(candidates), s.ElementBlock)
	}
	info := blocks[s.ElementBlock]
	if info.Length < 4 {
		return Result{}, fmt.Errorf("%w: ambiguous between %s and block %d has no record count",
			ErrUnrecognizedFormat, probeIDs(candidates), s.ElementBlock)
	}
	count := int(order.Uint32(data[info.PayloadOffset():]))
	body := info.Length - 4
	if count <= 0 || body%count != 0 {
		return Result{}, fmt.Errorf("%w: ambiguous between %s and block %d holds %d bytes for %d records",
			ErrUnrecognizedFormat, probeIDs(candidates), s.ElementBlock, body, count)
	}
	elem := body / count

	var match []Probe
	for _, p := range candidates {
		if p.ElementSize != 0 && p.ElementSize == elem {
			match = append(match, p)
		}
	}

	s.log().Debug("structural fallback",
		"block", s.ElementBlock,
		"count", count,
		"element_size", elem,
		"matches", probeIDs(match),
	)

	if len(match) != 1 {
		return Result{}, fmt.Errorf("%w: ambiguous between %s, element size %d matches %d of them",
			ErrUnrecognizedFormat, probeIDs(candidates), elem, len(match))
	}
	p := match[0]
	return Result{
		Format:      p.Format,
		Method:      MethodStructure,
		SizeOffset:  p.SizeOffset,
		TagOffset:   p.TagOffset,
		ElementSize: elem,
		Candidates:  forms,
	}, nil
}

func probeIDs(ps []Probe) string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.Format.ID
	}
	return "[" + strings.Join(ids, " ") + "]"
}
