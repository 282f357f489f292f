// Package progress owns the persisted player record: upgrade levels, the
// mutable resources spent during play, run counters and the formulas that turn
// upgrade levels into stats.
package progress

import (
	"math"

	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
)

// SaveData is everything that survives between sessions.
type SaveData struct {
	Level int `yaml:"level" json:"level"` // Depth of the current run
	Money int `yaml:"money" json:"money"`

	RangeLevel   int `yaml:"range_level" json:"range_level"`
	BatteryLevel int `yaml:"battery_level" json:"battery_level"`
	AttackLevel  int `yaml:"attack_level" json:"attack_level"`
	Fire         int `yaml:"fire" json:"fire"`
	Water        int `yaml:"water" json:"water"`
	Grass        int `yaml:"grass" json:"grass"`

	FireUses  int `yaml:"fire_uses" json:"fire_uses"`
	WaterUses int `yaml:"water_uses" json:"water_uses"`
	GrassUses int `yaml:"grass_uses" json:"grass_uses"`
	Battery   int `yaml:"battery" json:"battery"`

	AttackSelected enemy.Element `yaml:"attack_selected" json:"attack_selected"`

	EnemiesKilled   int `yaml:"enemies_killed" json:"enemies_killed"`
	LevelsCompleted int `yaml:"levels_completed" json:"levels_completed"`
	Deaths          int `yaml:"deaths" json:"deaths"`
}

// NewSaveData returns a fresh profile with a full battery.
func NewSaveData() SaveData {
	return SaveData{Battery: MaxBattery(0), AttackSelected: enemy.Basic}
}

// MaxRange is the deepest level with a full connection.
func MaxRange(level int) int { return 3 + level }

// MaxBattery is the battery capacity.
func MaxBattery(level int) int { return 25 + 50*level }

// Attack is the base damage of one hit.
func Attack(level int) float64 { return 1 + 0.5*float64(level) }

func (s *SaveData) MaxRange() int { return MaxRange(s.RangeLevel) }

func (s *SaveData) MaxBattery() int { return MaxBattery(s.BatteryLevel) }

func (s *SaveData) Attack() float64 { return Attack(s.AttackLevel) }

// BatteryEmpty reports whether the run is out of battery.
func (s *SaveData) BatteryEmpty() bool { return s.Battery <= 0 }

// ElementLevel is the upgrade level bought for e; Basic has none.
func (s *SaveData) ElementLevel(e enemy.Element) int {
	switch e {
	case enemy.Fire:
		return s.Fire
	case enemy.Water:
		return s.Water
	case enemy.Grass:
		return s.Grass
	}
	return 0
}

func (s *SaveData) elementLevelPtr(e enemy.Element) *int {
	switch e {
	case enemy.Fire:
		return &s.Fire
	case enemy.Water:
		return &s.Water
	case enemy.Grass:
		return &s.Grass
	}
	return nil
}

func (s *SaveData) usesPtr(e enemy.Element) *int {
	switch e {
	case enemy.Fire:
		return &s.FireUses
	case enemy.Water:
		return &s.WaterUses
	case enemy.Grass:
		return &s.GrassUses
	}
	return nil
}

// Uses returns the remaining charges for e. Basic is unlimited and reports
// math.MaxInt.
func (s *SaveData) Uses(e enemy.Element) int {
	if p := s.usesPtr(e); p != nil {
		return *p
	}
	return math.MaxInt
}

// SpendUse takes one charge of e. Returns false, leaving the counter alone,
// when none are left. Basic always succeeds.
func (s *SaveData) SpendUse(e enemy.Element) bool {
	p := s.usesPtr(e)
	if p == nil {
		return true
	}
	if *p <= 0 {
		return false
	}
	*p--
	return true
}

// DrainBattery removes up to n battery, never going below zero, and returns
// the amount actually removed.
func (s *SaveData) DrainBattery(n int) int {
	if n <= 0 {
		return 0
	}
	if n > s.Battery {
		n = s.Battery
	}
	s.Battery -= n
	return n
}

// RestoreBattery adds up to n battery without passing capacity and returns the
// amount added.
func (s *SaveData) RestoreBattery(n int) int {
	if n <= 0 {
		return 0
	}
	room := s.MaxBattery() - s.Battery
	if room <= 0 {
		return 0
	}
	if n > room {
		n = room
	}
	s.Battery += n
	return n
}

// Restart begins a new run from the shop: back to the first level with a full
// battery and charges refilled from the element levels.
func (s *SaveData) Restart(usesPerLevel int) {
	s.Level = 0
	s.Battery = s.MaxBattery()
	s.FireUses = s.Fire * usesPerLevel
	s.WaterUses = s.Water * usesPerLevel
	s.GrassUses = s.Grass * usesPerLevel
}

// GameOver applies the out-of-battery penalty: half the money, rounded in the
// player's disfavour, is lost and a death is counted.
func (s *SaveData) GameOver() (lost int) {
	lost = s.Money - s.Money/2
	s.Money /= 2
	s.Deaths++
	return lost
}

// Score is the end-of-game score.
func (s *SaveData) Score() int {
	return (s.LevelsCompleted+1)*s.EnemiesKilled*100 - s.Deaths*200
}

// Connection is the signal status for the current depth.
type Connection int

const (
	ConnectionOK Connection = iota
	ConnectionLow
	ConnectionEmpty
)

func (c Connection) String() string {
	switch c {
	case ConnectionLow:
		return "low"
	case ConnectionEmpty:
		return "empty"
	default:
		return "ok"
	}
}

// ConnectionAt rates depth against the range upgrade.
func ConnectionAt(depth, rangeLevel int) Connection {
	maxRange := MaxRange(rangeLevel)
	switch {
	case depth >= maxRange:
		return ConnectionEmpty
	case depth+2 >= maxRange:
		return ConnectionLow
	default:
		return ConnectionOK
	}
}

// Connection rates the current level.
func (s *SaveData) Connection() Connection {
	return ConnectionAt(s.Level, s.RangeLevel)
}
