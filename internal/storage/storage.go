// Package storage is the key-value port behind every piece of
// client-persisted state (comments, theme).
package storage

import (
	"context"
	"sync"
)

// Port is the minimal get/set surface the rest of the site persists through.
type Port interface {
	// Get reports ok=false for a key that was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Provider hands out a Port scoped to one client profile.
type Provider interface {
	For(profile string) Port
}

// Memory is an in-process Provider. Profiles never see each other's keys.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) For(profile string) Port {
	return memoryPort{m: m, profile: profile}
}

type memoryPort struct {
	m       *Memory
	profile string
}

func (p memoryPort) Get(_ context.Context, key string) (string, bool, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	v, ok := p.m.data[p.profile][key]
	return v, ok, nil
}

func (p memoryPort) Set(_ context.Context, key, value string) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	ns, ok := p.m.data[p.profile]
	if !ok {
		ns = make(map[string]string)
		p.m.data[p.profile] = ns
	}
	ns[key] = value
	return nil
}
