package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	NumPedTypes  = 23
	gangSize     = 16
	pedTypeSize  = 32
	numPedThreat = 5
)

// Gangs holds the car, model and weapon overrides of each gang, stored under
// the "GNG" tag.
type Gangs struct {
	Gangs []Gang
}

func (g *Gangs) ReadData(b *bin.Buffer, f format.Format) error {
	g.Gangs = bin.ReadArray[Gang](b, numGangs, f)
	return b.Err()
}

func (g *Gangs) WriteData(b *bin.Buffer, f format.Format) error {
	bin.WriteArray(b, g.Gangs, numGangs, f)
	return b.Err()
}

func (g *Gangs) Size(format.Format) int { return numGangs * gangSize }

type Gang struct {
	VehicleModel     int32
	PedModelOverride int8
	Weapon1          int32
	Weapon2          int32
}

func (g *Gang) ReadData(b *bin.Buffer, _ format.Format) error {
	g.VehicleModel = b.ReadI32()
	g.PedModelOverride = b.ReadI8()
	b.Skip(3)
	g.Weapon1 = b.ReadI32()
	g.Weapon2 = b.ReadI32()
	return b.Err()
}

func (g *Gang) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteI32(g.VehicleModel)
	b.WriteI8(g.PedModelOverride)
	b.WriteFixedBytes(nil, 3)
	b.WriteI32(g.Weapon1)
	b.WriteI32(g.Weapon2)
	return b.Err()
}

func (g *Gang) Size(format.Format) int { return gangSize }

// PedTypes holds the relationship table between pedestrian types, stored
// under the "PTP" tag.
type PedTypes struct {
	Types []PedType
}

func (p *PedTypes) ReadData(b *bin.Buffer, f format.Format) error {
	p.Types = bin.ReadArray[PedType](b, NumPedTypes, f)
	return b.Err()
}

func (p *PedTypes) WriteData(b *bin.Buffer, f format.Format) error {
	bin.WriteArray(b, p.Types, NumPedTypes, f)
	return b.Err()
}

func (p *PedTypes) Size(format.Format) int { return NumPedTypes * pedTypeSize }

// PedType describes how one pedestrian type reacts to the others. Threat
// and Avoid are bitmasks over the type index.
type PedType struct {
	Flag   uint32
	Params [numPedThreat]float32
	Threat uint32
	Avoid  uint32
}

func (p *PedType) ReadData(b *bin.Buffer, _ format.Format) error {
	p.Flag = b.ReadU32()
	copy(p.Params[:], b.ReadFloat32s(numPedThreat))
	p.Threat = b.ReadU32()
	p.Avoid = b.ReadU32()
	return b.Err()
}

func (p *PedType) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU32(p.Flag)
	b.WriteFloat32s(p.Params[:], numPedThreat)
	b.WriteU32(p.Threat)
	b.WriteU32(p.Avoid)
	return b.Err()
}

func (p *PedType) Size(format.Format) int { return pedTypeSize }
