package gta3

import (
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/format"
)

const (
	saveNameLength = 24
	steamMagic     = 0x3DF5C2FD

	simpleVarsCoreSize = 108
	pcPrefsSize        = 48
	ps2PrefsSize       = 40
)

// SimpleVars holds the global game state at the head of block 0.
//
// Every release stores the same core fields; the preference block and the
// trailing extras vary by platform. Fields a platform does not store are
// zero after a load.
type SimpleVars struct {
	// SaveName is the slot title shown in the load menu. The PS2 releases
	// keep it on the memory card instead.
	SaveName  string
	TimeStamp SystemTime

	CurrentLevel              int32
	CameraPosition            Vector3
	MillisecondsPerGameMinute uint32
	LastClockTick             uint32
	GameClockHours            uint8
	GameClockMinutes          uint8
	PadMode                   int16
	TimeInMilliseconds        uint32
	TimeScale                 float32
	TimeStep                  float32
	TimeStepNonClipped        float32
	FrameCounter              uint32
	TimeStep2                 float32
	FramesPerUpdate           float32
	TimeScale2                float32
	OldWeatherType            int16
	NewWeatherType            int16
	ForcedWeatherType         int16
	WeatherInterpolation      float32
	CompileDateAndTime        [6]int32
	WeatherTypeInList         int32
	InCarCameraMode           float32
	OnFootCameraMode          float32

	BlurOn           bool
	MusicVolume      int32
	SfxVolume        int32
	RadioStation     int32
	Language         int32
	ControllerConfig int32
	Subtitles        bool
	ShowHud          bool
	Widescreen       bool
	Brightness       int32
	DrawDistance     float32
	FrameLimiter     bool
	Vibration        bool
	StereoOutput     bool

	XboxProfileSlot uint32
	IsQuickSave     bool
	TouchLayout     int32

	LastSaveTick uint32
	CheatsUsed   bool
	SteamMagic   uint32
}

func (s *SimpleVars) ReadData(b *bin.Buffer, f format.Format) error {
	*s = SimpleVars{}
	if !f.IsPS2() {
		s.SaveName = b.ReadString(saveNameLength, bin.UTF16)
		s.TimeStamp = readSystemTime(b)
	}
	b.ReadU32() // size constant, rewritten from the format on save

	s.CurrentLevel = b.ReadI32()
	s.CameraPosition = readVector(b)
	s.MillisecondsPerGameMinute = b.ReadU32()
	s.LastClockTick = b.ReadU32()
	s.GameClockHours = b.ReadU8()
	s.GameClockMinutes = b.ReadU8()
	s.PadMode = b.ReadI16()
	s.TimeInMilliseconds = b.ReadU32()
	s.TimeScale = b.ReadF32()
	s.TimeStep = b.ReadF32()
	s.TimeStepNonClipped = b.ReadF32()
	s.FrameCounter = b.ReadU32()
	s.TimeStep2 = b.ReadF32()
	s.FramesPerUpdate = b.ReadF32()
	s.TimeScale2 = b.ReadF32()
	s.OldWeatherType = b.ReadI16()
	s.NewWeatherType = b.ReadI16()
	s.ForcedWeatherType = b.ReadI16()
	b.Skip(2)
	s.WeatherInterpolation = b.ReadF32()
	copy(s.CompileDateAndTime[:], b.ReadInt32s(len(s.CompileDateAndTime)))
	s.WeatherTypeInList = b.ReadI32()
	s.InCarCameraMode = b.ReadF32()
	s.OnFootCameraMode = b.ReadF32()

	if f.IsPS2() {
		s.MusicVolume = b.ReadI32()
		s.SfxVolume = b.ReadI32()
		s.RadioStation = b.ReadI32()
		s.Language = b.ReadI32()
		s.Subtitles = b.ReadBool(4)
		s.ShowHud = b.ReadBool(4)
		s.Widescreen = b.ReadBool(4)
		s.Brightness = b.ReadI32()
		s.Vibration = b.ReadBool(4)
		s.StereoOutput = b.ReadBool(4)
	} else {
		s.BlurOn = b.ReadBool(4)
		s.MusicVolume = b.ReadI32()
		s.SfxVolume = b.ReadI32()
		s.RadioStation = b.ReadI32()
		s.Language = b.ReadI32()
		s.ControllerConfig = b.ReadI32()
		s.Subtitles = b.ReadBool(4)
		s.ShowHud = b.ReadBool(4)
		s.Widescreen = b.ReadBool(4)
		s.Brightness = b.ReadI32()
		s.DrawDistance = b.ReadF32()
		s.FrameLimiter = b.ReadBool(4)
	}

	s.LastSaveTick = b.ReadU32()
	s.CheatsUsed = b.ReadBool(4)

	switch {
	case f.IsSteam():
		s.SteamMagic = b.ReadU32()
	case f.IsXbox():
		s.XboxProfileSlot = b.ReadU32()
		s.Vibration = b.ReadBool(4)
	case f.IsMobile():
		s.IsQuickSave = b.ReadBool(4)
		s.TouchLayout = b.ReadI32()
	}
	return b.Err()
}

func (s *SimpleVars) WriteData(b *bin.Buffer, f format.Format) error {
	if !f.IsPS2() {
		b.WriteString(s.SaveName, saveNameLength, bin.UTF16)
		writeSystemTime(b, s.TimeStamp)
	}
	b.WriteU32(SizeConstant(f))

	b.WriteI32(s.CurrentLevel)
	writeVector(b, s.CameraPosition)
	b.WriteU32(s.MillisecondsPerGameMinute)
	b.WriteU32(s.LastClockTick)
	b.WriteU8(s.GameClockHours)
	b.WriteU8(s.GameClockMinutes)
	b.WriteI16(s.PadMode)
	b.WriteU32(s.TimeInMilliseconds)
	b.WriteF32(s.TimeScale)
	b.WriteF32(s.TimeStep)
	b.WriteF32(s.TimeStepNonClipped)
	b.WriteU32(s.FrameCounter)
	b.WriteF32(s.TimeStep2)
	b.WriteF32(s.FramesPerUpdate)
	b.WriteF32(s.TimeScale2)
	b.WriteI16(s.OldWeatherType)
	b.WriteI16(s.NewWeatherType)
	b.WriteI16(s.ForcedWeatherType)
	b.WriteI16(0)
	b.WriteF32(s.WeatherInterpolation)
	b.WriteInt32s(s.CompileDateAndTime[:], len(s.CompileDateAndTime))
	b.WriteI32(s.WeatherTypeInList)
	b.WriteF32(s.InCarCameraMode)
	b.WriteF32(s.OnFootCameraMode)

	if f.IsPS2() {
		b.WriteI32(s.MusicVolume)
		b.WriteI32(s.SfxVolume)
		b.WriteI32(s.RadioStation)
		b.WriteI32(s.Language)
		b.WriteBool(s.Subtitles, 4)
		b.WriteBool(s.ShowHud, 4)
		b.WriteBool(s.Widescreen, 4)
		b.WriteI32(s.Brightness)
		b.WriteBool(s.Vibration, 4)
		b.WriteBool(s.StereoOutput, 4)
	} else {
		b.WriteBool(s.BlurOn, 4)
		b.WriteI32(s.MusicVolume)
		b.WriteI32(s.SfxVolume)
		b.WriteI32(s.RadioStation)
		b.WriteI32(s.Language)
		b.WriteI32(s.ControllerConfig)
		b.WriteBool(s.Subtitles, 4)
		b.WriteBool(s.ShowHud, 4)
		b.WriteBool(s.Widescreen, 4)
		b.WriteI32(s.Brightness)
		b.WriteF32(s.DrawDistance)
		b.WriteBool(s.FrameLimiter, 4)
	}

	b.WriteU32(s.LastSaveTick)
	b.WriteBool(s.CheatsUsed, 4)

	switch {
	case f.IsSteam():
		magic := s.SteamMagic
		if magic == 0 {
			magic = steamMagic
		}
		b.WriteU32(magic)
	case f.IsXbox():
		b.WriteU32(s.XboxProfileSlot)
		b.WriteBool(s.Vibration, 4)
	case f.IsMobile():
		b.WriteBool(s.IsQuickSave, 4)
		b.WriteI32(s.TouchLayout)
	}
	return b.Err()
}

func (s *SimpleVars) Size(f format.Format) int {
	n := 4 + simpleVarsCoreSize + 8
	if f.IsPS2() {
		return n + ps2PrefsSize
	}
	n += 2*saveNameLength + systemTimeSize + pcPrefsSize
	switch {
	case f.IsSteam():
		n += 4
	case f.IsXbox(), f.IsMobile():
		n += 8
	}
	return n
}
