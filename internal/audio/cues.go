package audio

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/combat"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

const ms = time.Millisecond

// deathBase is the first note of each death-sound pool.
var deathBase = map[string]float64{
	"chicken": 880,
	"cat":     660,
	"dog":     330,
	"man":     220,
}

var elementFreq = [enemy.NumElements]float64{
	enemy.Basic: 440,
	enemy.Fire:  660,
	enemy.Water: 523.25,
	enemy.Grass: 392,
}

var elementWave = [enemy.NumElements]Wave{
	enemy.Basic: WaveSine,
	enemy.Fire:  WaveSaw,
	enemy.Water: WaveSine,
	enemy.Grass: WaveSquare,
}

// RecipeFor returns the sound for a cue, or nil for a silent one.
func RecipeFor(c game.Cue) Recipe {
	switch c.Kind {
	case game.CueStep:
		return Recipe{{Freq: 180, Duration: 30 * ms, Wave: WaveSine, Gain: 0.3}}
	case game.CueBump:
		return Recipe{{Freq: 110, Duration: 40 * ms, Wave: WaveSquare, Gain: 0.2}}
	case game.CueAttack:
		el := element(c.Element)
		return Recipe{{Freq: elementFreq[el], Duration: 60 * ms, Wave: elementWave[el], Gain: 0.35}}
	case game.CueDamage:
		if c.Label == combat.ResistedLabel {
			return Recipe{{Duration: 80 * ms, Wave: WaveNoise, Gain: 0.25}}
		}
		return Recipe{{Freq: 880, Duration: 40 * ms, Wave: WaveSine, Gain: 0.3}}
	case game.CueDeath:
		return deathRecipe(c.Sound)
	case game.CuePickup:
		return Recipe{
			{Freq: 987.77, Duration: 60 * ms, Wave: WaveSquare, Gain: 0.2},
			{Freq: 1318.51, Duration: 120 * ms, Wave: WaveSquare, Gain: 0.2},
		}
	case game.CueHurt:
		return Recipe{{Freq: 150, Duration: 120 * ms, Wave: WaveSaw, Gain: 0.35}}
	case game.CueWrongMove:
		return Recipe{{Duration: 60 * ms, Wave: WaveNoise, Gain: 0.2}}
	case game.CueSelect:
		el := element(c.Element)
		return Recipe{{Freq: elementFreq[el] * 2, Duration: 30 * ms, Wave: elementWave[el], Gain: 0.2}}
	case game.CueStatus:
		return statusRecipe(c.Label)
	}
	return nil
}

func element(e enemy.Element) enemy.Element {
	if e < 0 || e >= enemy.NumElements {
		return enemy.Basic
	}
	return e
}

// deathRecipe voices keys like "cat_2": the pool picks the pitch and each
// variant sits two semitones above the previous one.
func deathRecipe(key string) Recipe {
	name, idx, _ := strings.Cut(key, "_")
	base, ok := deathBase[name]
	if !ok {
		return nil
	}
	if n, err := strconv.Atoi(idx); err == nil && n > 0 {
		base *= math.Pow(2, float64(2*n)/12)
	}
	return Recipe{
		{Freq: base, Duration: 70 * ms, Wave: WaveSaw, Gain: 0.3},
		{Freq: base * 0.75, Duration: 70 * ms, Wave: WaveSaw, Gain: 0.25},
		{Freq: base * 0.5, Duration: 140 * ms, Wave: WaveSaw, Gain: 0.2},
	}
}

func statusRecipe(label string) Recipe {
	beeps, freq := 0, 0.0
	switch label {
	case progress.ConnectionLow.String():
		beeps, freq = 2, 440
	case progress.ConnectionEmpty.String():
		beeps, freq = 3, 220
	default:
		return nil
	}
	var r Recipe
	for i := 0; i < beeps; i++ {
		r = append(r,
			Note{Freq: freq, Duration: 80 * ms, Wave: WaveSquare, Gain: 0.2},
			Note{Duration: 60 * ms, Wave: WaveSine, Gain: 0})
	}
	return r
}
