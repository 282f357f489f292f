package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
)

// maxVoices caps overlapping cues; extra cues are dropped.
const maxVoices = 8

// Player is a game.Sink that plays cues on the default output device.
// Until Start succeeds every cue is silently dropped.
type Player struct {
	mu          sync.Mutex
	cfg         config.AudioConfig
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
	dropped     int
}

// NewPlayer creates a player for cfg. Nothing touches the device yet.
func NewPlayer(cfg config.AudioConfig) *Player {
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = 44100
	}
	return &Player{cfg: cfg, rate: rate, mixer: &beep.Mixer{}}
}

// Start opens the speaker. A disabled player stays silent and returns nil.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	speaker.Play(&effects.Volume{Streamer: p.mixer, Base: 2, Volume: p.cfg.Volume})
	p.initialized = true
	logger.Debug("Audio started", "sample_rate", int(p.rate), "volume", p.cfg.Volume)
	return nil
}

// Cue implements game.Sink.
func (p *Player) Cue(c game.Cue) {
	r := RecipeFor(c)
	if len(r) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}

	speaker.Lock()
	full := p.mixer.Len() >= maxVoices
	if !full {
		p.mixer.Add(r.Stream(p.rate))
	}
	speaker.Unlock()

	if full {
		p.dropped++
	}
}

// Dropped is the number of cues skipped because too many were playing.
func (p *Player) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close stops playback and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
