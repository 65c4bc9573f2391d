package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	NumGarages    = 32
	NumStoredCars = 24

	garagesHeaderSize = 4 + 4 + 4 + 4 + 4 + 4 + 16 + 4
	storedCarSize     = 4 + 12 + 12 + 4 + 8
	garageSize        = 4 + 4 + 4 + 4 + 4 + 8 + 12 + 12 + 8 + 4 + 4
)

// Garages holds the garage table and the cars parked in save garages.
type Garages struct {
	NumGarages          int32
	FreeBombs           bool
	FreeResprays        bool
	CarsCollected       int32
	BankVansCollected   int32
	PoliceCarsCollected int32
	CarTypesCollected   [4]uint32
	LastTimeHelpMessage uint32
	StoredCars          []StoredCar
	Garages             []Garage
}

func (g *Garages) ReadData(b *bin.Buffer, f format.Format) error {
	g.NumGarages = b.ReadI32()
	g.FreeBombs = b.ReadBool(4)
	g.FreeResprays = b.ReadBool(4)
	g.CarsCollected = b.ReadI32()
	g.BankVansCollected = b.ReadI32()
	g.PoliceCarsCollected = b.ReadI32()
	copy(g.CarTypesCollected[:], b.ReadUint32s(len(g.CarTypesCollected)))
	g.LastTimeHelpMessage = b.ReadU32()
	g.StoredCars = bin.ReadArray[StoredCar](b, NumStoredCars, f)
	g.Garages = bin.ReadArray[Garage](b, NumGarages, f)
	return b.Err()
}

func (g *Garages) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(g.NumGarages)
	b.WriteBool(g.FreeBombs, 4)
	b.WriteBool(g.FreeResprays, 4)
	b.WriteI32(g.CarsCollected)
	b.WriteI32(g.BankVansCollected)
	b.WriteI32(g.PoliceCarsCollected)
	b.WriteUint32s(g.CarTypesCollected[:], len(g.CarTypesCollected))
	b.WriteU32(g.LastTimeHelpMessage)
	bin.WriteArray(b, g.StoredCars, NumStoredCars, f)
	bin.WriteArray(b, g.Garages, NumGarages, f)
	return b.Err()
}

func (g *Garages) Size(format.Format) int {
	return garagesHeaderSize + NumStoredCars*storedCarSize + NumGarages*garageSize
}

// StoredCar is a vehicle parked in a safehouse garage.
type StoredCar struct {
	ModelIndex     int32
	Position       Vector3
	Angle          Vector3
	Immunities     uint32
	PrimaryColor   uint8
	SecondaryColor uint8
	RadioStation   int8
	Extra1         int8
	Extra2         int8
	BombType       uint8
}

func (c *StoredCar) ReadData(b *bin.Buffer, _ format.Format) error {
	c.ModelIndex = b.ReadI32()
	c.Position = readVector(b)
	c.Angle = readVector(b)
	c.Immunities = b.ReadU32()
	c.PrimaryColor = b.ReadU8()
	c.SecondaryColor = b.ReadU8()
	c.RadioStation = b.ReadI8()
	c.Extra1 = b.ReadI8()
	c.Extra2 = b.ReadI8()
	c.BombType = b.ReadU8()
	b.Skip(2)
	return b.Err()
}

func (c *StoredCar) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteI32(c.ModelIndex)
	writeVector(b, c.Position)
	writeVector(b, c.Angle)
	b.WriteU32(c.Immunities)
	b.WriteU8(c.PrimaryColor)
	b.WriteU8(c.SecondaryColor)
	b.WriteI8(c.RadioStation)
	b.WriteI8(c.Extra1)
	b.WriteI8(c.Extra2)
	b.WriteU8(c.BombType)
	b.WriteU16(0)
	return b.Err()
}

func (c *StoredCar) Size(format.Format) int { return storedCarSize }

type Garage struct {
	Type            uint8
	State           uint8
	MaxCarsInSave   uint8
	ClosingEmpty    bool
	Deactivated     bool
	ResprayHappened bool
	TargetModel     int32
	Door1Handle     uint32
	Door2Handle     uint32
	Min             Vector3
	Max             Vector3
	DoorOpenOffset  float32
	DoorOpenMax     float32
	DoorPosition    float32
	TargetCar       uint32
}

func (g *Garage) ReadData(b *bin.Buffer, _ format.Format) error {
	g.Type = b.ReadU8()
	g.State = b.ReadU8()
	g.MaxCarsInSave = b.ReadU8()
	b.Skip(1)
	g.ClosingEmpty = b.ReadBool(4)
	g.Deactivated = b.ReadBool(4)
	g.ResprayHappened = b.ReadBool(4)
	g.TargetModel = b.ReadI32()
	g.Door1Handle = b.ReadU32()
	g.Door2Handle = b.ReadU32()
	g.Min = readVector(b)
	g.Max = readVector(b)
	g.DoorOpenOffset = b.ReadF32()
	g.DoorOpenMax = b.ReadF32()
	g.DoorPosition = b.ReadF32()
	g.TargetCar = b.ReadU32()
	return b.Err()
}

func (g *Garage) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU8(g.Type)
	b.WriteU8(g.State)
	b.WriteU8(g.MaxCarsInSave)
	b.WriteU8(0)
	b.WriteBool(g.ClosingEmpty, 4)
	b.WriteBool(g.Deactivated, 4)
	b.WriteBool(g.ResprayHappened, 4)
	b.WriteI32(g.TargetModel)
	b.WriteU32(g.Door1Handle)
	b.WriteU32(g.Door2Handle)
	writeVector(b, g.Min)
	writeVector(b, g.Max)
	b.WriteF32(g.DoorOpenOffset)
	b.WriteF32(g.DoorOpenMax)
	b.WriteF32(g.DoorPosition)
	b.WriteU32(g.TargetCar)
	return b.Err()
}

func (g *Garage) Size(format.Format) int { return garageSize }
