package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	NumZones      = 50
	NumZoneInfos  = 100
	NumMapZones   = 25
	NumAudioZones = 36

	zoneSize     = 56
	zoneInfoSize = 60
	zoneNameLen  = 8
	numCarTypes  = 6
	numGangs     = 9
)

// Zones is the named-area tree with its population info, stored under the
// "ZNS" tag.
type Zones struct {
	CurrentZoneIndex int32
	CurrentLevel     int32
	FindIndex        int16
	Zones            []Zone
	ZoneInfos        []ZoneInfo
	NumZones         int16
	NumZoneInfos     int16
	MapZones         []Zone
	AudioZones       [NumAudioZones]int16
	NumMapZones      int16
	NumAudioZones    int16
}

func (z *Zones) ReadData(b *bin.Buffer, f format.Format) error {
	z.CurrentZoneIndex = b.ReadI32()
	z.CurrentLevel = b.ReadI32()
	z.FindIndex = b.ReadI16()
	b.Skip(2)
	z.Zones = bin.ReadArray[Zone](b, NumZones, f)
	z.ZoneInfos = bin.ReadArray[ZoneInfo](b, NumZoneInfos, f)
	z.NumZones = b.ReadI16()
	z.NumZoneInfos = b.ReadI16()
	z.MapZones = bin.ReadArray[Zone](b, NumMapZones, f)
	copy(z.AudioZones[:], b.ReadInt16s(NumAudioZones))
	z.NumMapZones = b.ReadI16()
	z.NumAudioZones = b.ReadI16()
	return b.Err()
}

func (z *Zones) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(z.CurrentZoneIndex)
	b.WriteI32(z.CurrentLevel)
	b.WriteI16(z.FindIndex)
	b.WriteU16(0)
	bin.WriteArray(b, z.Zones, NumZones, f)
	bin.WriteArray(b, z.ZoneInfos, NumZoneInfos, f)
	b.WriteI16(z.NumZones)
	b.WriteI16(z.NumZoneInfos)
	bin.WriteArray(b, z.MapZones, NumMapZones, f)
	b.WriteInt16s(z.AudioZones[:], NumAudioZones)
	b.WriteI16(z.NumMapZones)
	b.WriteI16(z.NumAudioZones)
	return b.Err()
}

func (z *Zones) Size(format.Format) int {
	return 12 + NumZones*zoneSize + NumZoneInfos*zoneInfoSize + 4 +
		NumMapZones*zoneSize + 2*NumAudioZones + 4
}

type Zone struct {
	Name          string
	Min           Vector3
	Max           Vector3
	Type          int32
	Level         int32
	ZoneInfoDay   int16
	ZoneInfoNight int16
	Child         int32
	Parent        int32
	Next          int32
}

func (z *Zone) ReadData(b *bin.Buffer, _ format.Format) error {
	z.Name = b.ReadString(zoneNameLen, bin.ASCII)
	z.Min = readVector(b)
	z.Max = readVector(b)
	z.Type = b.ReadI32()
	z.Level = b.ReadI32()
	z.ZoneInfoDay = b.ReadI16()
	z.ZoneInfoNight = b.ReadI16()
	z.Child = b.ReadI32()
	z.Parent = b.ReadI32()
	z.Next = b.ReadI32()
	return b.Err()
}

func (z *Zone) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteString(z.Name, zoneNameLen, bin.ASCII)
	writeVector(b, z.Min)
	writeVector(b, z.Max)
	b.WriteI32(z.Type)
	b.WriteI32(z.Level)
	b.WriteI16(z.ZoneInfoDay)
	b.WriteI16(z.ZoneInfoNight)
	b.WriteI32(z.Child)
	b.WriteI32(z.Parent)
	b.WriteI32(z.Next)
	return b.Err()
}

func (z *Zone) Size(format.Format) int { return zoneSize }

// ZoneInfo is the traffic and pedestrian population mix for a zone.
type ZoneInfo struct {
	CarDensity    int16
	CarThreshold  [numCarTypes]int16
	CopThreshold  int16
	GangThreshold [numGangs]int16
	PedDensity    uint16
	CopDensity    uint16
	GangDensity   [numGangs]int16
	PedGroup      uint16
}

func (z *ZoneInfo) ReadData(b *bin.Buffer, _ format.Format) error {
	z.CarDensity = b.ReadI16()
	copy(z.CarThreshold[:], b.ReadInt16s(numCarTypes))
	z.CopThreshold = b.ReadI16()
	copy(z.GangThreshold[:], b.ReadInt16s(numGangs))
	z.PedDensity = b.ReadU16()
	z.CopDensity = b.ReadU16()
	copy(z.GangDensity[:], b.ReadInt16s(numGangs))
	z.PedGroup = b.ReadU16()
	b.Skip(2)
	return b.Err()
}

func (z *ZoneInfo) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteI16(z.CarDensity)
	b.WriteInt16s(z.CarThreshold[:], numCarTypes)
	b.WriteI16(z.CopThreshold)
	b.WriteInt16s(z.GangThreshold[:], numGangs)
	b.WriteU16(z.PedDensity)
	b.WriteU16(z.CopDensity)
	b.WriteInt16s(z.GangDensity[:], numGangs)
	b.WriteU16(z.PedGroup)
	b.WriteU16(0)
	return b.Err()
}

func (z *ZoneInfo) Size(format.Format) int { return zoneInfoSize }
