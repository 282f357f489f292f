package enemy

import (
	"fmt"
	"strings"
)

// Element is the attack/resistance typing shared by enemies and the player's
// selected attack. Successor order is Basic, Fire, Water, Grass.
type Element int

const (
	Basic Element = iota
	Fire
	Water
	Grass
)

// NumElements is the cycle length.
const NumElements = 4

// String returns the string representation of an Element
func (e Element) String() string {
	switch e {
	case Basic:
		return "basic"
	case Fire:
		return "fire"
	case Water:
		return "water"
	case Grass:
		return "grass"
	default:
		return "unknown"
	}
}

// Next is the cyclic successor.
func (e Element) Next() Element {
	return Element((int(e) + 1) % NumElements)
}

// Prev is the cyclic predecessor.
func (e Element) Prev() Element {
	return Element((int(e) + NumElements - 1) % NumElements)
}

// Beats reports whether e is super-effective against other.
func (e Element) Beats(other Element) bool {
	switch e {
	case Water:
		return other == Fire
	case Fire:
		return other == Grass
	case Grass:
		return other == Water
	}
	return false
}

// AllElements returns the four elements in cycle order.
func AllElements() []Element {
	return []Element{Basic, Fire, Water, Grass}
}

// ParseElement is the inverse of String.
func ParseElement(s string) (Element, error) {
	for _, e := range AllElements() {
		if strings.EqualFold(e.String(), s) {
			return e, nil
		}
	}
	return Basic, fmt.Errorf("unknown element %q", s)
}
