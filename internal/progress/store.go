package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrProfileNotFound is returned by Load for an unknown profile.
var ErrProfileNotFound = errors.New("profile not found")

// Store persists SaveData per profile name. Profile names are case-insensitive.
type Store interface {
	Load(ctx context.Context, profile string) (SaveData, error)
	Save(ctx context.Context, profile string, data SaveData) error
	Close() error
}

// MemoryStore keeps profiles in process memory; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]SaveData
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]SaveData)}
}

func (m *MemoryStore) Load(ctx context.Context, profile string) (SaveData, error) {
	if err := ctx.Err(); err != nil {
		return SaveData{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.profiles[strings.ToLower(profile)]
	if !ok {
		return SaveData{}, ErrProfileNotFound
	}
	return data, nil
}

func (m *MemoryStore) Save(ctx context.Context, profile string, data SaveData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[strings.ToLower(profile)] = data
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// LoadOrNew loads profile, starting a fresh record if it does not exist.
func LoadOrNew(ctx context.Context, store Store, profile string) (SaveData, error) {
	data, err := store.Load(ctx, profile)
	if errors.Is(err, ErrProfileNotFound) {
		return NewSaveData(), nil
	}
	return data, err
}
