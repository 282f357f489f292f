// Package balance provides Monte Carlo simulation tools for game balance
// testing. Fights go through the real enemy factory and combat resolver, so
// the numbers follow the live stat table.
package balance

import (
	"fmt"

	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// Strategy decides which attack the simulated player uses on an enemy.
type Strategy int

const (
	BasicOnly Strategy = iota // Never spends charges
	Counter                   // Uses the element that beats the enemy while charges last
	Fixed                     // Keeps the element it started with, basic once it runs dry
)

func (s Strategy) String() string {
	switch s {
	case BasicOnly:
		return "basic"
	case Counter:
		return "counter"
	case Fixed:
		return "fixed"
	}
	return "unknown"
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range AllStrategies() {
		if st.String() == s {
			return st, nil
		}
	}
	return BasicOnly, fmt.Errorf("unknown strategy %q", s)
}

// AllStrategies returns every strategy.
func AllStrategies() []Strategy {
	return []Strategy{BasicOnly, Counter, Fixed}
}

// Choose returns the attack to use against defender. preferred is the
// element the run started with. The result always has charges, so a hit
// can never be a no-op.
func (s Strategy) Choose(defender, preferred enemy.Element, save *progress.SaveData) enemy.Element {
	switch s {
	case Counter:
		for _, e := range enemy.AllElements() {
			if e != enemy.Basic && e.Beats(defender) && save.Uses(e) > 0 {
				return e
			}
		}
	case Fixed:
		if save.Uses(preferred) > 0 {
			return preferred
		}
	}
	return enemy.Basic
}
