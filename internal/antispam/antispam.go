// Package antispam throttles how fast one connection may send messages.
package antispam

import (
	"sync"
	"time"
)

// Config bounds message traffic for a single connection.
type Config struct {
	Enabled       bool    `yaml:"enabled"`
	MaxMessages   int     `yaml:"max_messages"`   // Messages allowed per window
	WindowSeconds float64 `yaml:"window_seconds"` // Length of the sliding window
	MaxDropped    int     `yaml:"max_dropped"`    // Drops before the client is cut off, 0 never
}

// DefaultConfig allows a held-down key at any sane repeat rate.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MaxMessages:   40,
		WindowSeconds: 1,
		MaxDropped:    200,
	}
}

func (c Config) window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.WindowSeconds * float64(time.Second))
}

// Verdict is the outcome of Check.
type Verdict int

const (
	Allow Verdict = iota
	Warn          // First drop of a burst; tell the client once
	Drop
	Kick // Too many drops; close the connection
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Warn:
		return "warn"
	case Drop:
		return "drop"
	case Kick:
		return "kick"
	}
	return "unknown"
}

// Tracker counts messages for one connection over a sliding window.
type Tracker struct {
	mu      sync.Mutex
	config  Config
	times   []time.Time
	dropped int
	warned  bool

	now func() time.Time
}

// NewTracker creates a tracker with the given config.
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config: config,
		times:  make([]time.Time, 0, max(config.MaxMessages, 0)),
		now:    time.Now,
	}
}

// Check records one message and reports what to do with it.
func (t *Tracker) Check() Verdict {
	if !t.config.Enabled || t.config.MaxMessages <= 0 {
		return Allow
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.expire(now)

	if len(t.times) < t.config.MaxMessages {
		t.times = append(t.times, now)
		t.warned = false
		return Allow
	}

	t.dropped++
	if t.config.MaxDropped > 0 && t.dropped >= t.config.MaxDropped {
		return Kick
	}
	if !t.warned {
		t.warned = true
		return Warn
	}
	return Drop
}

// expire drops timestamps older than the window.
func (t *Tracker) expire(now time.Time) {
	cutoff := now.Add(-t.config.window())
	i := 0
	for i < len(t.times) && !t.times[i].After(cutoff) {
		i++
	}
	t.times = append(t.times[:0], t.times[i:]...)
}

// Dropped returns how many messages have been refused so far.
func (t *Tracker) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Reset clears all tracking data.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.times = t.times[:0]
	t.dropped = 0
	t.warned = false
}
