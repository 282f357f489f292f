package rng

import (
	"fmt"
	"regexp"
	"strconv"
)

// Dice is a parsed "NdM+K" expression.
type Dice struct {
	Count    int
	Sides    int
	Modifier int
}

// diceNotationRegex matches dice notation like "1d6", "2d4+1", "1d8-2"
var diceNotationRegex = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Roll rolls n dice with the specified number of sides and returns the total
func Roll(src Source, n, sides int) int {
	if sides <= 0 {
		return 0
	}
	total := 0
	for i := 0; i < n; i++ {
		total += src.Intn(sides) + 1
	}
	return total
}

// ParseDice parses dice notation such as "1d6", "2d4+1" or "3d4-2".
// The empty string parses to the zero Dice, which always rolls 0.
func ParseDice(notation string) (Dice, error) {
	if notation == "" {
		return Dice{}, nil
	}

	matches := diceNotationRegex.FindStringSubmatch(notation)
	if matches == nil {
		return Dice{}, fmt.Errorf("invalid dice notation %q", notation)
	}

	count, _ := strconv.Atoi(matches[1])
	sides, _ := strconv.Atoi(matches[2])
	if sides == 0 {
		return Dice{}, fmt.Errorf("invalid dice notation %q: zero-sided die", notation)
	}

	bonus := 0
	if matches[3] != "" {
		bonus, _ = strconv.Atoi(matches[3])
	}

	return Dice{Count: count, Sides: sides, Modifier: bonus}, nil
}

// MustParseDice is ParseDice for built-in tables.
func MustParseDice(notation string) Dice {
	d, err := ParseDice(notation)
	if err != nil {
		panic(err)
	}
	return d
}

// Roll rolls the expression. Results never drop below zero.
func (d Dice) Roll(src Source) int {
	total := Roll(src, d.Count, d.Sides) + d.Modifier
	if total < 0 {
		return 0
	}
	return total
}

// Min is the smallest possible roll.
func (d Dice) Min() int {
	return max(0, d.Count+d.Modifier)
}

// Max is the largest possible roll.
func (d Dice) Max() int {
	return max(0, d.Count*d.Sides+d.Modifier)
}

func (d Dice) String() string {
	if d.Count == 0 && d.Modifier == 0 {
		return ""
	}
	switch {
	case d.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", d.Count, d.Sides, d.Modifier)
	case d.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", d.Count, d.Sides, d.Modifier)
	default:
		return fmt.Sprintf("%dd%d", d.Count, d.Sides)
	}
}

// MarshalYAML writes dice in notation form.
func (d Dice) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts dice notation.
func (d *Dice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDice(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
