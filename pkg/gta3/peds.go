package gta3

import (
	"errors"

	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	numWeaponSlots  = 13
	pedModelNameLen = 24
	pedDataFixed    = 12 + 4 + 4 + numWeaponSlots*16 + 4
)

// pedDataSize is the size of the engine's ped object on each platform. Only
// the leading fields are decoded; the rest is carried as Tail.
func pedDataSize(f format.Format) int {
	switch {
	case f.Has(format.Android):
		return 1536
	case f.Has(format.IOS):
		return 1532
	case f.IsXbox():
		return 1524
	default:
		return 1520
	}
}

// PedRecordSize is the size of one entry in the player-ped pool on f.
func PedRecordSize(f format.Format) int {
	return 4 + 4 + pedDataSize(f) + 4 + 4 + pedModelNameLen
}

// PlayerPeds is the pool of player-controlled peds. A valid save holds at
// least the player.
type PlayerPeds struct {
	Peds []PlayerPed
}

var errNoPlayer = errors.New("gta3: player ped pool is empty")

func (p *PlayerPeds) ReadData(b *bin.Buffer, f format.Format) error {
	p.Peds = bin.ReadArray[PlayerPed](b, int(b.ReadU32()), f)
	return b.Err()
}

func (p *PlayerPeds) WriteData(b *bin.Buffer, f format.Format) error {
	if len(p.Peds) == 0 {
		return errNoPlayer
	}
	b.WriteU32(uint32(len(p.Peds)))
	bin.WriteArray(b, p.Peds, len(p.Peds), f)
	return b.Err()
}

func (p *PlayerPeds) Size(f format.Format) int {
	return 4 + len(p.Peds)*PedRecordSize(f)
}

type PlayerPed struct {
	Handle         int32
	ModelIndex     int32
	Ped            PedData
	MaxWantedLevel int32
	MaxChaos       int32
	ModelName      string
}

func (p *PlayerPed) ReadData(b *bin.Buffer, f format.Format) error {
	p.Handle = b.ReadI32()
	p.ModelIndex = b.ReadI32()
	b.ReadEntity(&p.Ped, f)
	p.MaxWantedLevel = b.ReadI32()
	p.MaxChaos = b.ReadI32()
	p.ModelName = b.ReadString(pedModelNameLen, bin.ASCII)
	return b.Err()
}

func (p *PlayerPed) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(p.Handle)
	b.WriteI32(p.ModelIndex)
	b.WriteEntity(&p.Ped, f)
	b.WriteI32(p.MaxWantedLevel)
	b.WriteI32(p.MaxChaos)
	b.WriteString(p.ModelName, pedModelNameLen, bin.ASCII)
	return b.Err()
}

func (p *PlayerPed) Size(f format.Format) int { return PedRecordSize(f) }

// PedData is the decoded head of the engine's ped object.
type PedData struct {
	Position   Vector3
	Health     float32
	Armor      float32
	Weapons    [numWeaponSlots]Weapon
	MaxStamina float32
	// Tail holds the undecoded remainder of the object. It is resized to
	// the target platform's length on write.
	Tail []byte
}

type Weapon struct {
	Type       int32
	State      int32
	AmmoInClip int32
	AmmoTotal  int32
}

func (p *PedData) ReadData(b *bin.Buffer, f format.Format) error {
	p.Position = readVector(b)
	p.Health = b.ReadF32()
	p.Armor = b.ReadF32()
	for i := range p.Weapons {
		p.Weapons[i] = Weapon{
			Type:       b.ReadI32(),
			State:      b.ReadI32(),
			AmmoInClip: b.ReadI32(),
			AmmoTotal:  b.ReadI32(),
		}
	}
	p.MaxStamina = b.ReadF32()
	p.Tail = b.ReadBytes(pedDataSize(f) - pedDataFixed)
	return b.Err()
}

func (p *PedData) WriteData(b *bin.Buffer, f format.Format) error {
	writeVector(b, p.Position)
	b.WriteF32(p.Health)
	b.WriteF32(p.Armor)
	for _, w := range p.Weapons {
		b.WriteI32(w.Type)
		b.WriteI32(w.State)
		b.WriteI32(w.AmmoInClip)
		b.WriteI32(w.AmmoTotal)
	}
	b.WriteF32(p.MaxStamina)
	b.WriteFixedBytes(p.Tail, pedDataSize(f)-pedDataFixed)
	return b.Err()
}

func (p *PedData) Size(f format.Format) int { return pedDataSize(f) }
