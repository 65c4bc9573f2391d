// Package format describes the platform variants a save file can be laid out for.
//
// A Format is threaded through every read and write so that field presence,
// width and order can branch per platform. Formats are plain values: two
// formats with the same platform set and flags are the same format, whatever
// their ID or label says.
package format

import (
	"encoding/binary"
	"strings"
)

// Platform is a bitset of hardware/distribution targets.
type Platform uint32

const (
	PC Platform = 1 << iota
	PS2
	PS3
	PSP
	Xbox
	Xbox360
	Android
	IOS
)

var platformNames = []struct {
	p    Platform
	name string
}{
	{PC, "PC"},
	{PS2, "PS2"},
	{PS3, "PS3"},
	{PSP, "PSP"},
	{Xbox, "Xbox"},
	{Xbox360, "Xbox360"},
	{Android, "Android"},
	{IOS, "iOS"},
}

func (p Platform) String() string {
	if p == 0 {
		return "none"
	}
	var parts []string
	for _, n := range platformNames {
		if p&n.p != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Flag is a bitset of modifiers (region, distribution channel) that refine a
// platform without changing it.
type Flag uint32

const (
	FlagSteam Flag = 1 << iota
	FlagJapan
	FlagAustralia
)

func (f Flag) String() string {
	if f == 0 {
		return ""
	}
	var parts []string
	if f&FlagSteam != 0 {
		parts = append(parts, "Steam")
	}
	if f&FlagJapan != 0 {
		parts = append(parts, "Japan")
	}
	if f&FlagAustralia != 0 {
		parts = append(parts, "Australia")
	}
	return strings.Join(parts, "|")
}

// Format identifies one compatibility class of save layout.
//
// Use Equal (or Key) to compare formats; the == operator also compares the
// decorative ID and Label.
type Format struct {
	ID        string
	Label     string
	Platforms Platform
	Flags     Flag
}

// Key is the comparable identity of a Format.
type Key struct {
	Platforms Platform
	Flags     Flag
}

func (f Format) Key() Key {
	return Key{Platforms: f.Platforms, Flags: f.Flags}
}

// Equal reports whether f and o describe the same layout.
func (f Format) Equal(o Format) bool {
	return f.Key() == o.Key()
}

// IsZero reports whether f carries no platform at all.
func (f Format) IsZero() bool {
	return f.Platforms == 0
}

func (f Format) Has(p Platform) bool {
	return f.Platforms&p != 0
}

func (f Format) HasFlag(fl Flag) bool {
	return f.Flags&fl != 0
}

func (f Format) IsPC() bool     { return f.Has(PC) }
func (f Format) IsPS2() bool    { return f.Has(PS2) }
func (f Format) IsXbox() bool   { return f.Has(Xbox) }
func (f Format) IsMobile() bool { return f.Has(Android | IOS) }

func (f Format) IsConsole() bool {
	return f.Has(PS2 | PS3 | PSP | Xbox | Xbox360)
}

func (f Format) IsSteam() bool { return f.HasFlag(FlagSteam) }
func (f Format) IsJapan() bool { return f.HasFlag(FlagJapan) }

// ByteOrder returns the byte order multi-byte values use on this format.
// Only the PowerPC consoles store big-endian data.
func (f Format) ByteOrder() binary.ByteOrder {
	if f.Has(PS3 | Xbox360) {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (f Format) String() string {
	if f.Label != "" {
		return f.Label
	}
	if f.ID != "" {
		return f.ID
	}
	s := f.Platforms.String()
	if fl := f.Flags.String(); fl != "" {
		s += " (" + fl + ")"
	}
	return s
}

// Catalogue is a fixed, ordered table of the formats one game supports.
type Catalogue []Format

// ByID finds a format by its identifier, ignoring case.
func (c Catalogue) ByID(id string) (Format, bool) {
	for _, f := range c {
		if strings.EqualFold(f.ID, id) {
			return f, true
		}
	}
	return Format{}, false
}

// Lookup returns the catalogue entry equal to f.
func (c Catalogue) Lookup(f Format) (Format, bool) {
	for _, e := range c {
		if e.Equal(f) {
			return e, true
		}
	}
	return Format{}, false
}

func (c Catalogue) IDs() []string {
	ids := make([]string, len(c))
	for i, f := range c {
		ids[i] = f.ID
	}
	return ids
}
