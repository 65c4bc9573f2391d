package gta3

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/samcharles93/savekit/internal/mmapfile"
	"github.com/samcharles93/savekit/pkg/format"
	"github.com/samcharles93/savekit/pkg/save"
)

const (
	// numBlocks is the number of outer data blocks before padding.
	numBlocks = 16

	// MaxFileSize bounds what Open will read.
	MaxFileSize = 1 << 20

	defaultGlobalVars = 1024
)

// SaveFile is a GTA III save. Bucket fields may be edited freely between
// Load and Save; the embedded save.File reads into and writes from them.
type SaveFile struct {
	*save.File

	SimpleVars    SimpleVars
	Scripts       Scripts
	PlayerPeds    PlayerPeds
	Garages       Garages
	Vehicles      Vehicles
	Objects       Objects
	Paths         Paths
	Pickups       Pickups
	PhoneInfo     PhoneInfo
	Restarts      Restarts
	RadarBlips    RadarBlips
	Zones         Zones
	Gangs         Gangs
	CarGenerators CarGenerators
	PlayerInfo    PlayerInfo
	Stats         Stats
	PedTypes      PedTypes
}

// New returns a fresh PC save with an empty world and a single player ped.
func New(opts save.Options) *SaveFile {
	sf := &SaveFile{File: save.New(Layout, opts)}
	sf.SimpleVars = SimpleVars{
		SaveName:                  "New Game",
		CurrentLevel:              1,
		MillisecondsPerGameMinute: 1000,
		GameClockHours:            12,
		TimeScale:                 1,
		TimeStep:                  1,
		TimeStepNonClipped:        1,
		FramesPerUpdate:           1,
		TimeScale2:                1,
		MusicVolume:               102,
		SfxVolume:                 102,
		Brightness:                256,
		DrawDistance:              1.2,
		ShowHud:                   true,
		Subtitles:                 true,
	}
	sf.Scripts.GlobalVars = make([]int32, defaultGlobalVars)
	sf.PlayerPeds.Peds = []PlayerPed{{
		ModelName: "player",
		Ped:       PedData{Health: 100},
	}}
	sf.Garages.StoredCars = make([]StoredCar, NumStoredCars)
	sf.Garages.Garages = make([]Garage, NumGarages)
	sf.Paths.Flags = make([]byte, DefaultPathNodes)
	sf.Pickups.Pickups = make([]Pickup, NumPickups)
	sf.PhoneInfo.Phones = make([]Phone, NumPhones)
	sf.RadarBlips.Blips = make([]RadarBlip, NumRadarBlips)
	sf.Zones.Zones = make([]Zone, NumZones)
	sf.Zones.ZoneInfos = make([]ZoneInfo, NumZoneInfos)
	sf.Zones.MapZones = make([]Zone, NumMapZones)
	sf.Gangs.Gangs = make([]Gang, numGangs)
	sf.CarGenerators.Generators = make([]CarGenerator, NumCarGenerators)
	sf.PlayerInfo.MaxHealth = 100
	sf.PedTypes.Types = make([]PedType, NumPedTypes)

	// The bucket list is static, so a registration error is a programming error.
	if err := sf.Register(
		save.Bucket{Name: "SimpleVars", Entity: &sf.SimpleVars},
		save.Bucket{Name: "Scripts", Tag: scriptTag, Nested: true, Entity: &sf.Scripts},
		save.Bucket{Name: "PlayerPeds", Entity: &sf.PlayerPeds},
		save.Bucket{Name: "Garages", Entity: &sf.Garages},
		save.Bucket{Name: "Vehicles", Entity: &sf.Vehicles},
		save.Bucket{Name: "Objects", Entity: &sf.Objects},
		save.Bucket{Name: "Paths", Entity: &sf.Paths},
		save.Bucket{Name: "Pickups", Entity: &sf.Pickups},
		save.Bucket{Name: "PhoneInfo", Entity: &sf.PhoneInfo},
		save.Bucket{Name: "Restarts", Entity: &sf.Restarts},
		save.Bucket{Name: "RadarBlips", Tag: "RDR", Entity: &sf.RadarBlips},
		save.Bucket{Name: "Zones", Tag: "ZNS", Entity: &sf.Zones},
		save.Bucket{Name: "Gangs", Tag: "GNG", Entity: &sf.Gangs},
		save.Bucket{Name: "CarGenerators", Tag: "CGN", Entity: &sf.CarGenerators},
		save.Bucket{Name: "PlayerInfo", Entity: &sf.PlayerInfo},
		save.Bucket{Name: "Stats", Entity: &sf.Stats},
		save.Bucket{Name: "PedTypes", Tag: "PTP", Entity: &sf.PedTypes},
	); err != nil {
		panic(err)
	}
	sf.SetFormat(PC)
	return sf
}

// Load detects the release data was saved by and decodes it.
func Load(data []byte, opts save.Options) (*SaveFile, error) {
	sf := New(opts)
	if err := sf.File.Load(data); err != nil {
		return nil, err
	}
	return sf, nil
}

// LoadAs decodes data as f without detection.
func LoadAs(data []byte, f format.Format, opts save.Options) (*SaveFile, error) {
	sf := New(opts)
	if err := sf.File.LoadAs(data, f); err != nil {
		return nil, err
	}
	return sf, nil
}

// Open maps the file at path and loads it.
func Open(path string, opts save.Options) (*SaveFile, error) {
	mf, err := mmapfile.Open(path, MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("gta3: open %s: %w", path, err)
	}
	defer mf.Close()
	return Load(mf.Data, opts)
}

// WriteFile saves sf in format f to path. The zero Format keeps the loaded
// format.
func (sf *SaveFile) WriteFile(path string, f format.Format) error {
	data, err := sf.Save(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Summary is a short description of a save, suitable for listings.
type Summary struct {
	Format         string    `json:"format"`
	FormatLabel    string    `json:"format_label"`
	SaveName       string    `json:"save_name,omitempty"`
	SavedAt        time.Time `json:"saved_at,omitzero"`
	Level          int32     `json:"level"`
	GameTime       string    `json:"game_time"`
	Money          int32     `json:"money"`
	Packages       int32     `json:"packages"`
	MissionsPassed int32     `json:"missions_passed"`
	LastMission    string    `json:"last_mission,omitempty"`
	Health         float32   `json:"health"`
	Armor          float32   `json:"armor"`
	GlobalVars     int       `json:"global_vars"`
	RunningScripts int       `json:"running_scripts"`
	Cars           int       `json:"cars"`
	Boats          int       `json:"boats"`
	Objects        int       `json:"objects"`
	CheatsUsed     bool      `json:"cheats_used"`
}

func (sf *SaveFile) Summary() Summary {
	s := Summary{
		Format:         sf.Format().ID,
		FormatLabel:    sf.Format().Label,
		SaveName:       sf.SimpleVars.SaveName,
		SavedAt:        sf.SimpleVars.TimeStamp.Time(),
		Level:          sf.SimpleVars.CurrentLevel,
		GameTime:       fmt.Sprintf("%02d:%02d", sf.SimpleVars.GameClockHours, sf.SimpleVars.GameClockMinutes),
		Money:          sf.PlayerInfo.Money,
		Packages:       sf.PlayerInfo.CollectedPackages,
		MissionsPassed: sf.Stats.Ints[StatMissionsPassed],
		LastMission:    sf.Stats.LastMissionPassedName,
		GlobalVars:     len(sf.Scripts.GlobalVars),
		RunningScripts: len(sf.Scripts.RunningScripts),
		Cars:           len(sf.Vehicles.Cars),
		Boats:          len(sf.Vehicles.Boats),
		Objects:        len(sf.Objects.Objects),
		CheatsUsed:     sf.SimpleVars.CheatsUsed,
	}
	if len(sf.PlayerPeds.Peds) > 0 {
		s.Health = sf.PlayerPeds.Peds[0].Ped.Health
		s.Armor = sf.PlayerPeds.Peds[0].Ped.Armor
	}
	return s
}

// Digest returns the hex BLAKE2b-256 of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
