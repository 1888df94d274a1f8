package repo

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{slots: make(map[string]string)}
}

func (r *MemoryRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.slots[key]
	return v, ok, nil
}

func (r *MemoryRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[key] = value
	return nil
}
