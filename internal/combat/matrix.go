// Package combat resolves player hits against enemies and pickups: the
// elemental matchup, damage clamping, death rewards and the player-side
// costs of a bad matchup.
package combat

import "github.com/lawnchairsociety/nightmareinsilver/internal/enemy"

// SuperEffective is the damage multiplier when the attack element beats the
// defender's.
const SuperEffective = 1.5

// Matchup classifies an attack element against a defender element.
type Matchup int

const (
	Neutral   Matchup = iota // Full base damage
	Effective                // SuperEffective × base damage
	Resisted                 // No damage, attacker drained by base damage
	NoUses                   // Elemental attack without charges: no damage, no drain
)

func (m Matchup) String() string {
	switch m {
	case Neutral:
		return "neutral"
	case Effective:
		return "effective"
	case Resisted:
		return "resisted"
	case NoUses:
		return "no_uses"
	default:
		return "unknown"
	}
}

// Classify returns the matchup of selected against defender. Basic on either
// side, and same-element hits, are neutral.
func Classify(selected, defender enemy.Element) Matchup {
	switch {
	case selected == enemy.Basic || defender == enemy.Basic || selected == defender:
		return Neutral
	case selected.Beats(defender):
		return Effective
	case defender.Beats(selected):
		return Resisted
	}
	return Neutral
}

// Damage computes the damage to the defender and the battery cost to the
// attacker for one hit. hasUses is whether the attacker could pay a charge for
// a non-Basic selection.
func Damage(selected, defender enemy.Element, base float64, hasUses bool) (dmg, drain float64, m Matchup) {
	if selected != enemy.Basic && !hasUses {
		return 0, 0, NoUses
	}
	m = Classify(selected, defender)
	switch m {
	case Effective:
		return base * SuperEffective, 0, m
	case Resisted:
		return 0, base, m
	}
	return base, 0, m
}

// Clamp applies dmg to health without overkill. It returns the new health and
// the damage actually dealt; health never goes negative.
func Clamp(health, dmg float64) (after, dealt float64) {
	if dmg < 0 {
		dmg = 0
	}
	if health < 0 {
		health = 0
	}
	dealt = min(dmg, health)
	return health - dealt, dealt
}
