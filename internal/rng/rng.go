// Package rng holds the random draws used by level generation, enemy spawning
// and combat. Every function takes its Source explicitly so a seeded
// *rand.Rand (or a scripted fake in tests) decides all outcomes.
package rng

import (
	"math/rand"
	"time"
)

// Source is the subset of *rand.Rand the game draws from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// New returns a generator for seed; seed 0 picks one from the clock.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Weighted draws an integer in [0, sum(weights)) and returns the index of the
// first weight whose running sum exceeds it. Returns -1 when no weight is
// positive.
func Weighted(src Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	return WeightedDraw(src.Intn(total), weights)
}

// WeightedDraw is the cumulative walk behind Weighted for a known draw.
// A draw past the end of the table resolves to the last positive weight.
func WeightedDraw(draw int, weights []int) int {
	sum := 0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		sum += w
		last = i
		if sum > draw {
			return i
		}
	}
	return last
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Between returns a uniform integer in [lo, hi]. Swapped bounds are tolerated.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Pick returns a uniform index in [0, n), or -1 for an empty range.
func Pick(src Source, n int) int {
	if n <= 0 {
		return -1
	}
	return src.Intn(n)
}
