package gta3

import (
	"fmt"

	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	numContacts             = 16
	numCollectives          = 32
	numBuildingSwaps        = 25
	numInvisibilitySettings = 20
	numLocalVars            = 16
	stackDepth              = 6
	scriptNameLength        = 8

	// scriptsFixedSize covers everything between the variable space and the
	// running-script list.
	scriptsFixedSize = 4 + numContacts*8 + numCollectives*8 + 4 +
		numBuildingSwaps*16 + numInvisibilitySettings*8 + 4 + 4 + 4 + 4

	runningScriptSize = scriptNameLength + 4 + stackDepth*4 + 4 + numLocalVars*4 + 8 + 16 + 8
)

// Scripts is the mission script state stored in the "SCR" sub-block.
type Scripts struct {
	// GlobalVars is the script global variable space.
	GlobalVars               []int32
	OnMissionFlag            uint32
	Contacts                 [numContacts]Contact
	Collectives              [numCollectives]Collective
	NextFreeCollectiveIndex  int32
	BuildingSwaps            [numBuildingSwaps]BuildingSwap
	InvisibilitySettings     [numInvisibilitySettings]InvisibilitySetting
	UsingAMultiScriptFile    bool
	MainScriptSize           uint32
	LargestMissionScriptSize uint32
	NumberOfMissionScripts   uint16
	RunningScripts           []RunningScript
}

type Contact struct {
	OnAMissionFlag uint32
	BaseBriefID    uint32
}

type Collective struct {
	Index    int32
	PedIndex int32
}

type BuildingSwap struct {
	Type          int32
	Handle        int32
	NewModelIndex int32
	OldModelIndex int32
}

type InvisibilitySetting struct {
	Type   int32
	Handle int32
}

func (s *Scripts) ReadData(b *bin.Buffer, f format.Format) error {
	*s = Scripts{}
	varSpace := b.ReadU32()
	if varSpace%4 != 0 {
		return fmt.Errorf("gta3: script variable space of %d bytes is not a whole number of variables", varSpace)
	}
	s.GlobalVars = b.ReadInt32s(int(varSpace / 4))
	s.OnMissionFlag = b.ReadU32()
	for i := range s.Contacts {
		s.Contacts[i] = Contact{OnAMissionFlag: b.ReadU32(), BaseBriefID: b.ReadU32()}
	}
	for i := range s.Collectives {
		s.Collectives[i] = Collective{Index: b.ReadI32(), PedIndex: b.ReadI32()}
	}
	s.NextFreeCollectiveIndex = b.ReadI32()
	for i := range s.BuildingSwaps {
		s.BuildingSwaps[i] = BuildingSwap{
			Type:          b.ReadI32(),
			Handle:        b.ReadI32(),
			NewModelIndex: b.ReadI32(),
			OldModelIndex: b.ReadI32(),
		}
	}
	for i := range s.InvisibilitySettings {
		s.InvisibilitySettings[i] = InvisibilitySetting{Type: b.ReadI32(), Handle: b.ReadI32()}
	}
	s.UsingAMultiScriptFile = b.ReadBool(4)
	s.MainScriptSize = b.ReadU32()
	s.LargestMissionScriptSize = b.ReadU32()
	s.NumberOfMissionScripts = b.ReadU16()
	b.Skip(2)
	s.RunningScripts = bin.ReadArray[RunningScript](b, int(b.ReadU32()), f)
	return b.Err()
}

func (s *Scripts) WriteData(b *bin.Buffer, f format.Format) error {
	b.WriteU32(uint32(4 * len(s.GlobalVars)))
	b.WriteInt32s(s.GlobalVars, len(s.GlobalVars))
	b.WriteU32(s.OnMissionFlag)
	for _, c := range s.Contacts {
		b.WriteU32(c.OnAMissionFlag)
		b.WriteU32(c.BaseBriefID)
	}
	for _, c := range s.Collectives {
		b.WriteI32(c.Index)
		b.WriteI32(c.PedIndex)
	}
	b.WriteI32(s.NextFreeCollectiveIndex)
	for _, w := range s.BuildingSwaps {
		b.WriteI32(w.Type)
		b.WriteI32(w.Handle)
		b.WriteI32(w.NewModelIndex)
		b.WriteI32(w.OldModelIndex)
	}
	for _, v := range s.InvisibilitySettings {
		b.WriteI32(v.Type)
		b.WriteI32(v.Handle)
	}
	b.WriteBool(s.UsingAMultiScriptFile, 4)
	b.WriteU32(s.MainScriptSize)
	b.WriteU32(s.LargestMissionScriptSize)
	b.WriteU16(s.NumberOfMissionScripts)
	b.WriteU16(0)
	b.WriteU32(uint32(len(s.RunningScripts)))
	bin.WriteArray(b, s.RunningScripts, len(s.RunningScripts), f)
	return b.Err()
}

func (s *Scripts) Size(format.Format) int {
	return 4 + 4*len(s.GlobalVars) + scriptsFixedSize + 4 + runningScriptSize*len(s.RunningScripts)
}

// RunningScript is one thread of the script virtual machine.
type RunningScript struct {
	Name               string
	IP                 uint32
	Stack              [stackDepth]uint32
	StackPointer       uint16
	LocalVars          [numLocalVars]int32
	TimerA             uint32
	TimerB             uint32
	IfResult           bool
	IsMissionScript    bool
	SkipWakeTime       bool
	WakeTime           uint32
	AndOrState         uint16
	NotFlag            bool
	DeathArrestEnabled bool
	WastedOrBusted     bool
	MissionCleanup     bool
}

func (r *RunningScript) ReadData(b *bin.Buffer, _ format.Format) error {
	r.Name = b.ReadString(scriptNameLength, bin.ASCII)
	r.IP = b.ReadU32()
	copy(r.Stack[:], b.ReadUint32s(stackDepth))
	r.StackPointer = b.ReadU16()
	b.Skip(2)
	copy(r.LocalVars[:], b.ReadInt32s(numLocalVars))
	r.TimerA = b.ReadU32()
	r.TimerB = b.ReadU32()
	r.IfResult = b.ReadBool(4)
	r.IsMissionScript = b.ReadBool(4)
	r.SkipWakeTime = b.ReadBool(4)
	r.WakeTime = b.ReadU32()
	r.AndOrState = b.ReadU16()
	r.NotFlag = b.ReadBool(1)
	r.DeathArrestEnabled = b.ReadBool(1)
	r.WastedOrBusted = b.ReadBool(1)
	r.MissionCleanup = b.ReadBool(1)
	b.Skip(2)
	return b.Err()
}

func (r *RunningScript) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteString(r.Name, scriptNameLength, bin.ASCII)
	b.WriteU32(r.IP)
	b.WriteUint32s(r.Stack[:], stackDepth)
	b.WriteU16(r.StackPointer)
	b.WriteU16(0)
	b.WriteInt32s(r.LocalVars[:], numLocalVars)
	b.WriteU32(r.TimerA)
	b.WriteU32(r.TimerB)
	b.WriteBool(r.IfResult, 4)
	b.WriteBool(r.IsMissionScript, 4)
	b.WriteBool(r.SkipWakeTime, 4)
	b.WriteU32(r.WakeTime)
	b.WriteU16(r.AndOrState)
	b.WriteBool(r.NotFlag, 1)
	b.WriteBool(r.DeathArrestEnabled, 1)
	b.WriteBool(r.WastedOrBusted, 1)
	b.WriteBool(r.MissionCleanup, 1)
	b.WriteU16(0)
	return b.Err()
}

func (r *RunningScript) Size(format.Format) int { return runningScriptSize }
