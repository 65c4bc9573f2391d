package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	vehicleSize = 52
	objectSize  = 64
)

// Vehicles is the pool of persistent cars and boats.
type Vehicles struct {
	Cars  []Vehicle
	Boats []Vehicle
}

func (v *Vehicles) ReadData(b *bin.Buffer, f format.Format) error {
	numCars := int(b.ReadU32())
	numBoats := int(b.ReadU32())
	v.Cars = bin.ReadArray[Vehicle](b, numCars, f)
	v.Boats = bin.ReadArray[Vehicle](b, numBoats, f)
	return b.Err()
}

func (v *Vehicles) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteU32(uint32(len(v.Cars)))
	b.WriteU32(uint32(len(v.Boats)))
	bin.WriteArray(b, v.Cars, len(v.Cars), f)
	bin.WriteArray(b, v.Boats, len(v.Boats), f)
	return b.Err()
}

func (v *Vehicles) Size(f format.Format) int {
	return 8 + (len(v.Cars)+len(v.Boats))*bin.SizeOf[Vehicle](f)
}

// Vehicle is one saved car or boat. The mobile releases also keep the tuned
// radio station.
type Vehicle struct {
	ModelIndex     int32
	Handle         int32
	Position       Vector3
	Heading        float32
	Health         float32
	PrimaryColor   uint8
	SecondaryColor uint8
	Locked         bool
	SirenOn        bool
	Flags          uint32
	Extras         [2]int8
	Immunities     uint32
	DoorStatus     uint32
	TyreStatus     uint32
	RadioStation   int32
}

func (v *Vehicle) ReadData(b *bin.Buffer, f format.Format) error {
	v.ModelIndex = b.ReadI32()
	v.Handle = b.ReadI32()
	v.Position = readVector(b)
	v.Heading = b.ReadF32()
	v.Health = b.ReadF32()
	v.PrimaryColor = b.ReadU8()
	v.SecondaryColor = b.ReadU8()
	v.Locked = b.ReadBool(1)
	v.SirenOn = b.ReadBool(1)
	v.Flags = b.ReadU32()
	v.Extras[0] = b.ReadI8()
	v.Extras[1] = b.ReadI8()
	b.Skip(2)
	v.Immunities = b.ReadU32()
	v.DoorStatus = b.ReadU32()
	v.TyreStatus = b.ReadU32()
	v.RadioStation = 0
	if f.IsMobile() {
		v.RadioStation = b.ReadI32()
	}
	return b.Err()
}

func (v *Vehicle) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(v.ModelIndex)
	b.WriteI32(v.Handle)
	writeVector(b, v.Position)
	b.WriteF32(v.Heading)
	b.WriteF32(v.Health)
	b.WriteU8(v.PrimaryColor)
	b.WriteU8(v.SecondaryColor)
	b.WriteBool(v.Locked, 1)
	b.WriteBool(v.SirenOn, 1)
	b.WriteU32(v.Flags)
	b.WriteI8(v.Extras[0])
	b.WriteI8(v.Extras[1])
	b.WriteU16(0)
	b.WriteU32(v.Immunities)
	b.WriteU32(v.DoorStatus)
	b.WriteU32(v.TyreStatus)
	if f.IsMobile() {
		b.WriteI32(v.RadioStation)
	}
	return b.Err()
}

func (v *Vehicle) Size(f format.Format) int {
	if f.IsMobile() {
		return vehicleSize + 4
	}
	return vehicleSize
}

// Objects is the pool of mission and world objects that persist across saves.
type Objects struct {
	Objects []Object
}

func (o *Objects) ReadData(b *bin.Buffer, f format.Format) error {
	o.Objects = bin.ReadArray[Object](b, int(b.ReadU32()), f)
	return b.Err()
}

func (o *Objects) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteU32(uint32(len(o.Objects)))
	bin.WriteArray(b, o.Objects, len(o.Objects), f)
	return b.Err()
}

func (o *Objects) Size(format.Format) int { return 4 + len(o.Objects)*objectSize }

type Object struct {
	ModelIndex     int32
	Handle         int32
	Position       Vector3
	Right          Vector3
	Forward        Vector3
	Flags          uint32
	CreatedBy      uint8
	RemovalTime    uint32
	EndurancePoint uint32
	Strength       float32
}

func (o *Object) ReadData(b *bin.Buffer, _ format.Format) error {
	o.ModelIndex = b.ReadI32()
	o.Handle = b.ReadI32()
	o.Position = readVector(b)
	o.Right = readVector(b)
	o.Forward = readVector(b)
	o.Flags = b.ReadU32()
	o.CreatedBy = b.ReadU8()
	b.Skip(3)
	o.RemovalTime = b.ReadU32()
	o.EndurancePoint = b.ReadU32()
	o.Strength = b.ReadF32()
	return b.Err()
}

func (o *Object) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteI32(o.ModelIndex)
	b.WriteI32(o.Handle)
	writeVector(b, o.Position)
	writeVector(b, o.Right)
	writeVector(b, o.Forward)
	b.WriteU32(o.Flags)
	b.WriteU8(o.CreatedBy)
	b.WriteFixedBytes(nil, 3)
	b.WriteU32(o.RemovalTime)
	b.WriteU32(o.EndurancePoint)
	b.WriteF32(o.Strength)
	return b.Err()
}

func (o *Object) Size(format.Format) int { return objectSize }
