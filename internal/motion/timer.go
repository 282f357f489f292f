// Package motion animates entities between tiles. Each MoveTo runs a
// one-shot timer and reports a world position every tick until it finishes.
package motion

// Timer is a one-shot countdown in seconds.
type Timer struct {
	Duration float64
	elapsed  float64
	finished bool
}

// NewTimer creates a timer of d seconds.
func NewTimer(d float64) Timer {
	return Timer{Duration: d}
}

// Tick advances the timer and reports true only on the tick it finishes.
func (t *Timer) Tick(dt float64) bool {
	if t.finished {
		return false
	}
	if dt > 0 {
		t.elapsed += dt
	}
	if t.elapsed >= t.Duration {
		t.elapsed = t.Duration
		t.finished = true
		return true
	}
	return false
}

// Fraction is elapsed/Duration in [0, 1]. A zero-length timer reads 1.
func (t *Timer) Fraction() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return t.elapsed / t.Duration
}

// Elapsed returns seconds run so far.
func (t *Timer) Elapsed() float64 { return t.elapsed }

// Finished reports whether the timer has run out.
func (t *Timer) Finished() bool { return t.finished }

// Reset rewinds the timer.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
}
