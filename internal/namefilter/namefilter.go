// Package namefilter rejects profile names that are reserved or contain
// banned words.
package namefilter

import (
	"errors"
	"strings"
)

var (
	ErrReservedName = errors.New("that profile name is reserved")
	ErrBannedWord   = errors.New("that profile name contains a word that is not allowed")
)

// Config lists the names to refuse. Matching ignores case.
type Config struct {
	Enabled       bool     `yaml:"enabled"`
	BannedWords   []string `yaml:"banned_words"`   // Substring match
	ReservedNames []string `yaml:"reserved_names"` // Exact match
}

// DefaultConfig reserves the names the hosts use for themselves.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		ReservedNames: []string{"admin", "server", "system", "nightmare"},
	}
}

// Filter checks profile names against a Config.
type Filter struct {
	enabled  bool
	words    []string
	reserved map[string]bool
}

// New builds a filter. A nil config allows every name.
func New(cfg *Config) *Filter {
	if cfg == nil || !cfg.Enabled {
		return &Filter{}
	}
	f := &Filter{enabled: true, reserved: make(map[string]bool, len(cfg.ReservedNames))}
	for _, w := range cfg.BannedWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			f.words = append(f.words, w)
		}
	}
	for _, n := range cfg.ReservedNames {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			f.reserved[n] = true
		}
	}
	return f
}

// Check returns nil when name may be used.
func (f *Filter) Check(name string) error {
	if !f.enabled {
		return nil
	}
	lower := strings.ToLower(name)
	if f.reserved[lower] {
		return ErrReservedName
	}
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			return ErrBannedWord
		}
	}
	return nil
}

func (f *Filter) Enabled() bool { return f.enabled }
