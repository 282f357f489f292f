// Package audio turns game cues into short synthesized sounds played through
// beep. There are no sample files; every cue maps to a small recipe of tones.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Note is one tone of a recipe.
type Note struct {
	Freq     float64
	Duration time.Duration
	Wave     Wave
	Gain     float64 // 0..1
}

// Recipe is a sequence of notes played back to back.
type Recipe []Note

// Duration is the total length of the recipe.
func (r Recipe) Duration() time.Duration {
	var d time.Duration
	for _, n := range r {
		d += n.Duration
	}
	return d
}

// oscillator is a finite waveform generator. Noise uses a fixed LCG so the
// same recipe always renders the same samples.
type oscillator struct {
	freq  float64
	phase float64
	left  int
	wave  Wave
	rate  beep.SampleRate
	seed  uint32
}

func newOscillator(n Note, rate beep.SampleRate) *oscillator {
	return &oscillator{freq: n.Freq, left: rate.N(n.Duration), wave: n.Wave, rate: rate, seed: 22222}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.left <= 0 {
		return 0, false
	}
	for i := range samples {
		if o.left <= 0 {
			return i, true
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			o.seed = o.seed*1664525 + 1013904223
			v = float64(o.seed)/float64(math.MaxUint32)*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.left--
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a finite stream in and out linearly over its first and last
// samples to avoid clicks.
type envelope struct {
	s            beep.Streamer
	pos, total   int
	attack, tail int
	gain         float64
}

func newEnvelope(s beep.Streamer, total int, gain float64, rate beep.SampleRate) *envelope {
	fade := rate.N(5 * time.Millisecond)
	if 2*fade > total {
		fade = total / 2
	}
	return &envelope{s: s, total: total, attack: fade, tail: fade, gain: gain}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := e.gain
		switch {
		case e.pos < e.attack:
			vol *= float64(e.pos) / float64(e.attack)
		case e.pos >= e.total-e.tail:
			vol *= float64(e.total-e.pos) / float64(e.tail)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// Stream renders one note. Sine notes use beep's own generator.
func (n Note) Stream(rate beep.SampleRate) beep.Streamer {
	total := rate.N(n.Duration)
	var src beep.Streamer
	if n.Wave == WaveSine {
		if sine, err := generators.SineTone(rate, n.Freq); err == nil {
			src = beep.Take(total, sine)
		}
	}
	if src == nil {
		src = newOscillator(n, rate)
	}
	return newEnvelope(src, total, n.Gain, rate)
}

// Stream renders the whole recipe.
func (r Recipe) Stream(rate beep.SampleRate) beep.Streamer {
	parts := make([]beep.Streamer, len(r))
	for i, n := range r {
		parts[i] = n.Stream(rate)
	}
	return beep.Seq(parts...)
}
