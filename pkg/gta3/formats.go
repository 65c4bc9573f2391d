// Package gta3 reads and writes Grand Theft Auto III save files for every
// platform release.
//
// The platform is not recorded in the file. Load sniffs it from where the
// size constant and the "SCR" script block land, falling back to the size of
// the player-ped records for the releases that share those offsets.
package gta3

import (
	"github.com/samcharles93/savekit/pkg/format"
	"github.com/samcharles93/savekit/pkg/save"
	"github.com/samcharles93/savekit/pkg/sniff"
)

var (
	PC       = format.Format{ID: "pc", Label: "PC", Platforms: format.PC}
	PCSteam  = format.Format{ID: "pc-steam", Label: "PC (Steam)", Platforms: format.PC, Flags: format.FlagSteam}
	PS2      = format.Format{ID: "ps2", Label: "PlayStation 2", Platforms: format.PS2}
	PS2Japan = format.Format{ID: "ps2-jp", Label: "PlayStation 2 (Japan)", Platforms: format.PS2, Flags: format.FlagJapan}
	Xbox     = format.Format{ID: "xbox", Label: "Xbox", Platforms: format.Xbox}
	Android  = format.Format{ID: "android", Label: "Android", Platforms: format.Android}
	IOS      = format.Format{ID: "ios", Label: "iOS", Platforms: format.IOS}
)

// Formats lists every supported release in detection order.
var Formats = format.Catalogue{PC, PCSteam, PS2, PS2Japan, Xbox, Android, IOS}

const (
	// sizeOfGame is the game-data size constant stored in SimpleVars. The
	// Japanese PS2 release stores it one lower.
	sizeOfGame      = 0x31401
	sizeOfGameJapan = 0x31400

	// MaxPaddingBlocks is the number of padding blocks every save carries.
	MaxPaddingBlocks = 4
	// WorkBufferSize bounds the payload of a single block.
	WorkBufferSize = 55000

	scriptTag = "SCR"
	pedBlock  = 1
)

// SizeConstant returns the size constant f stores in SimpleVars.
func SizeConstant(f format.Format) uint32 {
	if f.IsPS2() && f.IsJapan() {
		return sizeOfGameJapan
	}
	return sizeOfGame
}

// PayloadTotal returns the sum of block payload lengths every file in f
// reaches once padded.
func PayloadTotal(f format.Format) int {
	return int(SizeConstant(f) &^ 3)
}

// FileSize returns the length of every save file written in f.
func FileSize(f format.Format) int {
	return PayloadTotal(f) + 4*(numBlocks+MaxPaddingBlocks) + 4
}

var probes = []sniff.Probe{
	{Format: PC, SizeConst: sizeOfGame, SizeOffset: 0x44, TagOffset: 0xEC, ElementSize: 1560},
	{Format: PCSteam, SizeConst: sizeOfGame, SizeOffset: 0x44, TagOffset: 0xF0, ElementSize: 1560},
	{Format: PS2, SizeConst: sizeOfGame, SizeOffset: 0x04, TagOffset: 0xA4, ElementSize: 1560},
	{Format: PS2Japan, SizeConst: sizeOfGameJapan, SizeOffset: 0x04, TagOffset: 0xA4, ElementSize: 1560},
	{Format: Xbox, SizeConst: sizeOfGame, SizeOffset: 0x44, TagOffset: 0xF4, ElementSize: 1564},
	{Format: Android, SizeConst: sizeOfGame, SizeOffset: 0x44, TagOffset: 0xF4, ElementSize: 1576},
	{Format: IOS, SizeConst: sizeOfGame, SizeOffset: 0x44, TagOffset: 0xF4, ElementSize: 1572},
}

// Probes returns a copy of the detection table.
func Probes() []sniff.Probe {
	return append([]sniff.Probe(nil), probes...)
}

// Sniffer returns a detector for GTA III saves.
func Sniffer() *sniff.Sniffer {
	return &sniff.Sniffer{
		Probes:       Probes(),
		Tag:          scriptTag,
		ElementBlock: pedBlock,
		Trailer:      4,
	}
}

// Layout describes the GTA III file structure.
var Layout = &save.Layout{
	Name:          "GTA III",
	Catalogue:     Formats,
	Sniffer:       Sniffer(),
	PayloadTotal:  PayloadTotal,
	PaddingBlocks: MaxPaddingBlocks,
	WorkSize:      WorkBufferSize,
}

// Detect returns the release data was saved by.
func Detect(data []byte) (sniff.Result, error) {
	return save.New(Layout, save.Options{}).Detect(data)
}
