package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	NumCarGenerators = 160
	carGeneratorSize = 72
	carGenHeaderSize = 12
)

// CarGenerators holds the parked-car spawners, stored under the "CGN" tag.
type CarGenerators struct {
	NumCarGenerators    int32
	CurrentActiveCount  int32
	ProcessCounter      uint8
	GenerateEvenIfClose uint8
	Generators          []CarGenerator
}

func (c *CarGenerators) ReadData(b *bin.Buffer, f format.Format) error {
	c.NumCarGenerators = b.ReadI32()
	c.CurrentActiveCount = b.ReadI32()
	c.ProcessCounter = b.ReadU8()
	c.GenerateEvenIfClose = b.ReadU8()
	b.Skip(2)
	c.Generators = bin.ReadArray[CarGenerator](b, NumCarGenerators, f)
	return b.Err()
}

func (c *CarGenerators) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(c.NumCarGenerators)
	b.WriteI32(c.CurrentActiveCount)
	b.WriteU8(c.ProcessCounter)
	b.WriteU8(c.GenerateEvenIfClose)
	b.WriteU16(0)
	bin.WriteArray(b, c.Generators, NumCarGenerators, f)
	return b.Err()
}

func (c *CarGenerators) Size(format.Format) int {
	return carGenHeaderSize + NumCarGenerators*carGeneratorSize
}

type CarGenerator struct {
	ModelIndex    int32
	Position      Vector3
	Angle         float32
	Color1        int16
	Color2        int16
	ForceSpawn    bool
	AlarmChance   uint8
	LockedChance  uint8
	MinDelay      uint16
	MaxDelay      uint16
	Timer         uint32
	Handle        int32
	UsesRemaining int16
	IsBlocking    bool
	BoundMin      Vector3
	BoundMax      Vector3
}

func (c *CarGenerator) ReadData(b *bin.Buffer, _ format.Format) error {
	c.ModelIndex = b.ReadI32()
	c.Position = readVector(b)
	c.Angle = b.ReadF32()
	c.Color1 = b.ReadI16()
	c.Color2 = b.ReadI16()
	c.ForceSpawn = b.ReadBool(1)
	c.AlarmChance = b.ReadU8()
	c.LockedChance = b.ReadU8()
	b.Skip(1)
	c.MinDelay = b.ReadU16()
	c.MaxDelay = b.ReadU16()
	c.Timer = b.ReadU32()
	c.Handle = b.ReadI32()
	c.UsesRemaining = b.ReadI16()
	b.Skip(2)
	c.IsBlocking = b.ReadBool(4)
	c.BoundMin = readVector(b)
	c.BoundMax = readVector(b)
	return b.Err()
}

func (c *CarGenerator) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteI32(c.ModelIndex)
	writeVector(b, c.Position)
	b.WriteF32(c.Angle)
	b.WriteI16(c.Color1)
	b.WriteI16(c.Color2)
	b.WriteBool(c.ForceSpawn, 1)
	b.WriteU8(c.AlarmChance)
	b.WriteU8(c.LockedChance)
	b.WriteU8(0)
	b.WriteU16(c.MinDelay)
	b.WriteU16(c.MaxDelay)
	b.WriteU32(c.Timer)
	b.WriteI32(c.Handle)
	b.WriteI16(c.UsesRemaining)
	b.WriteU16(0)
	b.WriteBool(c.IsBlocking, 4)
	writeVector(b, c.BoundMin)
	writeVector(b, c.BoundMax)
	return b.Err()
}

func (c *CarGenerator) Size(format.Format) int { return carGeneratorSize }
