package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	NumRadarBlips = 32
	radarBlipSize = 48
)

// RadarBlips is the table of map markers, stored under the "RDR" tag.
type RadarBlips struct {
	Blips []RadarBlip
}

func (r *RadarBlips) ReadData(b *bin.Buffer, f format.Format) error {
	r.Blips = bin.ReadArray[RadarBlip](b, NumRadarBlips, f)
	return b.Err()
}

func (r *RadarBlips) WriteData(b *bin.Buffer, f format.Format) error {
	bin.WriteArray(b, r.Blips, NumRadarBlips, f)
	return b.Err()
}

func (r *RadarBlips) Size(format.Format) int { return NumRadarBlips * radarBlipSize }

type RadarBlip struct {
	Color        uint32
	Type         uint32
	EntityHandle int32
	RadarX       float32
	RadarY       float32
	Position     Vector3
	Index        uint16
	Bright       bool
	InUse        bool
	SphereRadius float32
	Scale        uint16
	Display      uint16
	Sprite       uint16
}

func (r *RadarBlip) ReadData(b *bin.Buffer, _ format.Format) error {
	r.Color = b.ReadU32()
	r.Type = b.ReadU32()
	r.EntityHandle = b.ReadI32()
	r.RadarX = b.ReadF32()
	r.RadarY = b.ReadF32()
	r.Position = readVector(b)
	r.Index = b.ReadU16()
	r.Bright = b.ReadBool(1)
	r.InUse = b.ReadBool(1)
	r.SphereRadius = b.ReadF32()
	r.Scale = b.ReadU16()
	r.Display = b.ReadU16()
	r.Sprite = b.ReadU16()
	b.Skip(2)
	return b.Err()
}

func (r *RadarBlip) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU32(r.Color)
	b.WriteU32(r.Type)
	b.WriteI32(r.EntityHandle)
	b.WriteF32(r.RadarX)
	b.WriteF32(r.RadarY)
	writeVector(b, r.Position)
	b.WriteU16(r.Index)
	b.WriteBool(r.Bright, 1)
	b.WriteBool(r.InUse, 1)
	b.WriteF32(r.SphereRadius)
	b.WriteU16(r.Scale)
	b.WriteU16(r.Display)
	b.WriteU16(r.Sprite)
	b.WriteU16(0)
	return b.Err()
}

func (r *RadarBlip) Size(format.Format) int { return radarBlipSize }
