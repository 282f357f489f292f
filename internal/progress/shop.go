package progress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
)

// Price is indexed by the current upgrade level.
var Price = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 999}

// MaxStatLevel caps range, battery and attack.
const MaxStatLevel = 10

var (
	ErrNotEnoughMoney = errors.New("not enough money")
	ErrMaxLevel       = errors.New("upgrade at max level")
	ErrNothingToSell  = errors.New("upgrade already at level 0")
)

// Upgrade names a shop row.
type Upgrade int

const (
	UpgradeRange Upgrade = iota
	UpgradeBattery
	UpgradeAttack
	UpgradeFire
	UpgradeWater
	UpgradeGrass
)

// AllUpgrades returns the shop rows in display order.
func AllUpgrades() []Upgrade {
	return []Upgrade{UpgradeRange, UpgradeBattery, UpgradeAttack, UpgradeFire, UpgradeWater, UpgradeGrass}
}

func (u Upgrade) String() string {
	switch u {
	case UpgradeRange:
		return "range"
	case UpgradeBattery:
		return "battery"
	case UpgradeAttack:
		return "attack"
	case UpgradeFire:
		return "fire"
	case UpgradeWater:
		return "water"
	case UpgradeGrass:
		return "grass"
	default:
		return "unknown"
	}
}

// ParseUpgrade is the inverse of String.
func ParseUpgrade(s string) (Upgrade, error) {
	for _, u := range AllUpgrades() {
		if u.String() == strings.ToLower(s) {
			return u, nil
		}
	}
	return UpgradeRange, fmt.Errorf("unknown upgrade %q", s)
}

// cap is the highest level the upgrade can reach.
func (u Upgrade) cap() int {
	switch u {
	case UpgradeFire, UpgradeWater, UpgradeGrass:
		return len(Price) - 1
	}
	return MaxStatLevel
}

func (s *SaveData) upgradePtr(u Upgrade) *int {
	switch u {
	case UpgradeRange:
		return &s.RangeLevel
	case UpgradeBattery:
		return &s.BatteryLevel
	case UpgradeAttack:
		return &s.AttackLevel
	case UpgradeFire:
		return s.elementLevelPtr(enemy.Fire)
	case UpgradeWater:
		return s.elementLevelPtr(enemy.Water)
	case UpgradeGrass:
		return s.elementLevelPtr(enemy.Grass)
	}
	return nil
}

// UpgradeLevel returns the current level of u.
func (s *SaveData) UpgradeLevel(u Upgrade) int {
	if p := s.upgradePtr(u); p != nil {
		return *p
	}
	return 0
}

// NextPrice is the cost of the next level of u, or -1 at the cap.
func (s *SaveData) NextPrice(u Upgrade) int {
	lvl := s.UpgradeLevel(u)
	if lvl >= u.cap() {
		return -1
	}
	return Price[lvl]
}

// Buy raises u by one level if affordable.
func (s *SaveData) Buy(u Upgrade) error {
	p := s.upgradePtr(u)
	if p == nil {
		return fmt.Errorf("unknown upgrade %d", u)
	}
	if *p >= u.cap() {
		return ErrMaxLevel
	}
	cost := Price[*p]
	if s.Money < cost {
		return fmt.Errorf("%w: %s costs %d", ErrNotEnoughMoney, u, cost)
	}
	s.Money -= cost
	*p++
	return nil
}

// Refund lowers u by one level and returns what that level cost.
func (s *SaveData) Refund(u Upgrade) error {
	p := s.upgradePtr(u)
	if p == nil {
		return fmt.Errorf("unknown upgrade %d", u)
	}
	if *p <= 0 {
		return ErrNothingToSell
	}
	*p--
	s.Money += Price[*p]
	return nil
}
