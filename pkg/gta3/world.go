package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	// DefaultPathNodes is the number of path-node flag bytes a fresh save
	// carries.
	DefaultPathNodes = 4608

	NumPickups          = 336
	numCollectedPickups = 20
	pickupSize          = 28

	NumPhones        = 50
	phoneSize        = 52
	numPhoneMessages = 6

	numRestartPoints = 8
)

// Paths holds the per-node disabled flags of the path network.
type Paths struct {
	Flags []byte
}

func (p *Paths) ReadData(b *bin.Buffer, _ format.Format) error {
	p.Flags = b.ReadBytes(int(b.ReadU32()))
	return b.Err()
}

func (p *Paths) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU32(uint32(len(p.Flags)))
	b.WriteBytes(p.Flags)
	return b.Err()
}

func (p *Paths) Size(format.Format) int { return 4 + len(p.Flags) }

// Pickups is the fixed pickup table plus the ring of recently collected ones.
type Pickups struct {
	Pickups       []Pickup
	LastCollected uint16
	Collected     [numCollectedPickups]uint32
}

func (p *Pickups) ReadData(b *bin.Buffer, f format.Format) error {
	p.Pickups = bin.ReadArray[Pickup](b, NumPickups, f)
	p.LastCollected = b.ReadU16()
	b.Skip(2)
	copy(p.Collected[:], b.ReadUint32s(numCollectedPickups))
	return b.Err()
}

func (p *Pickups) WriteData(b *bin.Buffer, f format.Format) error {
	bin.WriteArray(b, p.Pickups, NumPickups, f)
	b.WriteU16(p.LastCollected)
	b.WriteU16(0)
	b.WriteUint32s(p.Collected[:], numCollectedPickups)
	return b.Err()
}

func (p *Pickups) Size(format.Format) int {
	return NumPickups*pickupSize + 4 + 4*numCollectedPickups
}

type Pickup struct {
	Type             uint8
	HasBeenPickedUp  bool
	Quantity         uint16
	ObjectHandle     uint32
	RegenerationTime uint32
	ModelIndex       int16
	Index            uint16
	Position         Vector3
}

func (p *Pickup) ReadData(b *bin.Buffer, _ format.Format) error {
	p.Type = b.ReadU8()
	p.HasBeenPickedUp = b.ReadBool(1)
	p.Quantity = b.ReadU16()
	p.ObjectHandle = b.ReadU32()
	p.RegenerationTime = b.ReadU32()
	p.ModelIndex = b.ReadI16()
	p.Index = b.ReadU16()
	p.Position = readVector(b)
	return b.Err()
}

func (p *Pickup) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU8(p.Type)
	b.WriteBool(p.HasBeenPickedUp, 1)
	b.WriteU16(p.Quantity)
	b.WriteU32(p.ObjectHandle)
	b.WriteU32(p.RegenerationTime)
	b.WriteI16(p.ModelIndex)
	b.WriteU16(p.Index)
	writeVector(b, p.Position)
	return b.Err()
}

func (p *Pickup) Size(format.Format) int { return pickupSize }

// PhoneInfo is the payphone table used by mission scripts.
type PhoneInfo struct {
	NumPhones       int32
	NumActivePhones int32
	Phones          []Phone
}

func (p *PhoneInfo) ReadData(b *bin.Buffer, f format.Format) error {
	p.NumPhones = b.ReadI32()
	p.NumActivePhones = b.ReadI32()
	p.Phones = bin.ReadArray[Phone](b, NumPhones, f)
	return b.Err()
}

func (p *PhoneInfo) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(p.NumPhones)
	b.WriteI32(p.NumActivePhones)
	bin.WriteArray(b, p.Phones, NumPhones, f)
	return b.Err()
}

func (p *PhoneInfo) Size(format.Format) int { return 8 + NumPhones*phoneSize }

type Phone struct {
	Position                 Vector3
	Messages                 [numPhoneMessages]uint32
	RepeatedMessageStartTime uint32
	Handle                   uint32
	State                    int32
	VisibleToCam             bool
}

func (p *Phone) ReadData(b *bin.Buffer, _ format.Format) error {
	p.Position = readVector(b)
	copy(p.Messages[:], b.ReadUint32s(numPhoneMessages))
	p.RepeatedMessageStartTime = b.ReadU32()
	p.Handle = b.ReadU32()
	p.State = b.ReadI32()
	p.VisibleToCam = b.ReadBool(1)
	b.Skip(3)
	return b.Err()
}

func (p *Phone) WriteData(b *bin.Buffer, _ format.Format) error {
	writeVector(b, p.Position)
	b.WriteUint32s(p.Messages[:], numPhoneMessages)
	b.WriteU32(p.RepeatedMessageStartTime)
	b.WriteU32(p.Handle)
	b.WriteI32(p.State)
	b.WriteBool(p.VisibleToCam, 1)
	b.WriteFixedBytes(nil, 3)
	return b.Err()
}

func (p *Phone) Size(format.Format) int { return phoneSize }

// Restarts holds the hospital and police respawn points and any pending
// override set by a script.
type Restarts struct {
	Hospitals             [numRestartPoints]RestartPoint
	PoliceStations        [numRestartPoints]RestartPoint
	NumHospitals          uint16
	NumPoliceStations     uint16
	OverrideNextRestart   bool
	OverridePosition      Vector3
	OverrideHeading       float32
	FadeInAfterNextDeath  bool
	FadeInAfterNextArrest bool
	OverrideHospitalLevel uint8
	OverridePoliceLevel   uint8
}

type RestartPoint struct {
	Position Vector3
	Heading  float32
}

func readRestartPoints(b *bin.Buffer, dst *[numRestartPoints]RestartPoint) {
	for i := range dst {
		dst[i].Position = readVector(b)
	}
	for i := range dst {
		dst[i].Heading = b.ReadF32()
	}
}

func writeRestartPoints(b *bin.Buffer, src *[numRestartPoints]RestartPoint) {
	for _, p := range src {
		writeVector(b, p.Position)
	}
	for _, p := range src {
		b.WriteF32(p.Heading)
	}
}

func (r *Restarts) ReadData(b *bin.Buffer, _ format.Format) error {
	readRestartPoints(b, &r.Hospitals)
	readRestartPoints(b, &r.PoliceStations)
	r.NumHospitals = b.ReadU16()
	r.NumPoliceStations = b.ReadU16()
	r.OverrideNextRestart = b.ReadBool(4)
	r.OverridePosition = readVector(b)
	r.OverrideHeading = b.ReadF32()
	r.FadeInAfterNextDeath = b.ReadBool(4)
	r.FadeInAfterNextArrest = b.ReadBool(4)
	r.OverrideHospitalLevel = b.ReadU8()
	r.OverridePoliceLevel = b.ReadU8()
	b.Skip(2)
	return b.Err()
}

func (r *Restarts) WriteData(b *bin.Buffer, _ format.Format) error {
	writeRestartPoints(b, &r.Hospitals)
	writeRestartPoints(b, &r.PoliceStations)
	b.WriteU16(r.NumHospitals)
	b.WriteU16(r.NumPoliceStations)
	b.WriteBool(r.OverrideNextRestart, 4)
	writeVector(b, r.OverridePosition)
	b.WriteF32(r.OverrideHeading)
	b.WriteBool(r.FadeInAfterNextDeath, 4)
	b.WriteBool(r.FadeInAfterNextArrest, 4)
	b.WriteU8(r.OverrideHospitalLevel)
	b.WriteU8(r.OverridePoliceLevel)
	b.WriteU16(0)
	return b.Err()
}

func (r *Restarts) Size(format.Format) int {
	return 2*numRestartPoints*16 + 4 + 4 + 12 + 4 + 4 + 4 + 4
}
