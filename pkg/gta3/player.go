package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	playerInfoSize = 68
	skinNameLen    = 32

	NumIntStats     = 80
	NumFloatStats   = 16
	NumMissionTimes = 16
	missionNameLen  = 8
)

// PlayerInfo is the player's money, package count and perks. The PC
// releases also keep the chosen custom skin.
type PlayerInfo struct {
	Money                int32
	DisplayedMoney       int32
	WastedBustedState    uint8
	WastedBustedTime     uint32
	CollectedPackages    int32
	TotalPackages        int32
	NeverGetsTired       bool
	FastReload           bool
	GetOutOfJailFree     bool
	GetOutOfHospitalFree bool
	MaxHealth            uint8
	MaxArmor             uint8
	TaxiTimer            uint32
	TaxiTimerActive      bool
	TaxiPickups          int32
	LastHealthLossTime   uint32
	LastArmorLossTime    uint32
	SafehousePosition    Vector3
	SafehouseHeading     float32
	SkinName             string
}

func (p *PlayerInfo) ReadData(b *bin.Buffer, f format.Format) error {
	*p = PlayerInfo{}
	p.Money = b.ReadI32()
	p.DisplayedMoney = b.ReadI32()
	p.WastedBustedState = b.ReadU8()
	b.Skip(3)
	p.WastedBustedTime = b.ReadU32()
	p.CollectedPackages = b.ReadI32()
	p.TotalPackages = b.ReadI32()
	p.NeverGetsTired = b.ReadBool(1)
	p.FastReload = b.ReadBool(1)
	p.GetOutOfJailFree = b.ReadBool(1)
	p.GetOutOfHospitalFree = b.ReadBool(1)
	p.MaxHealth = b.ReadU8()
	p.MaxArmor = b.ReadU8()
	b.Skip(2)
	p.TaxiTimer = b.ReadU32()
	p.TaxiTimerActive = b.ReadBool(4)
	p.TaxiPickups = b.ReadI32()
	p.LastHealthLossTime = b.ReadU32()
	p.LastArmorLossTime = b.ReadU32()
	p.SafehousePosition = readVector(b)
	p.SafehouseHeading = b.ReadF32()
	if f.IsPC() {
		p.SkinName = b.ReadString(skinNameLen, bin.ASCII)
	}
	return b.Err()
}

func (p *PlayerInfo) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteI32(p.Money)
	b.WriteI32(p.DisplayedMoney)
	b.WriteU8(p.WastedBustedState)
	b.WriteFixedBytes(nil, 3)
	b.WriteU32(p.WastedBustedTime)
	b.WriteI32(p.CollectedPackages)
	b.WriteI32(p.TotalPackages)
	b.WriteBool(p.NeverGetsTired, 1)
	b.WriteBool(p.FastReload, 1)
	b.WriteBool(p.GetOutOfJailFree, 1)
	b.WriteBool(p.GetOutOfHospitalFree, 1)
	b.WriteU8(p.MaxHealth)
	b.WriteU8(p.MaxArmor)
	b.WriteU16(0)
	b.WriteU32(p.TaxiTimer)
	b.WriteBool(p.TaxiTimerActive, 4)
	b.WriteI32(p.TaxiPickups)
	b.WriteU32(p.LastHealthLossTime)
	b.WriteU32(p.LastArmorLossTime)
	writeVector(b, p.SafehousePosition)
	b.WriteF32(p.SafehouseHeading)
	if f.IsPC() {
		b.WriteString(p.SkinName, skinNameLen, bin.ASCII)
	}
	return b.Err()
}

func (p *PlayerInfo) Size(f format.Format) int {
	if f.IsPC() {
		return playerInfoSize + skinNameLen
	}
	return playerInfoSize
}

// Stats is the in-game statistics page.
type Stats struct {
	Ints                  [NumIntStats]int32
	Floats                [NumFloatStats]float32
	LastMissionPassedName string
	FastestTimes          [NumMissionTimes]uint32
	HighestScores         [NumMissionTimes]int32
}

// Indices into Stats.Ints.
const (
	StatPeopleKilledByPlayer = 0
	StatPeopleKilledByOthers = 1
	StatCarsExploded         = 2
	StatRoundsFired          = 3
	StatMissionsGiven        = 22
	StatMissionsPassed       = 23
	StatDaysPassed           = 25
	StatTotalProgress        = 44
)

func (s *Stats) ReadData(b *bin.Buffer, _ format.Format) error {
	copy(s.Ints[:], b.ReadInt32s(NumIntStats))
	copy(s.Floats[:], b.ReadFloat32s(NumFloatStats))
	s.LastMissionPassedName = b.ReadString(missionNameLen, bin.ASCII)
	copy(s.FastestTimes[:], b.ReadUint32s(NumMissionTimes))
	copy(s.HighestScores[:], b.ReadInt32s(NumMissionTimes))
	return b.Err()
}

func (s *Stats) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteInt32s(s.Ints[:], NumIntStats)
	b.WriteFloat32s(s.Floats[:], NumFloatStats)
	b.WriteString(s.LastMissionPassedName, missionNameLen, bin.ASCII)
	b.WriteUint32s(s.FastestTimes[:], NumMissionTimes)
	b.WriteInt32s(s.HighestScores[:], NumMissionTimes)
	return b.Err()
}

func (s *Stats) Size(format.Format) int {
	return 4*NumIntStats + 4*NumFloatStats + missionNameLen + 8*NumMissionTimes
}
