// relay - website event relay for Telegram forum threads
// Copyright (C) 2026  jredh-dev contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// Package store caches resolved thread ids by client address.
package store

import (
	"context"
	"sync"
)

// Store is the key/value cache behind topic resolution. Implementations
// absorb backend failures: a failed read is a miss and a failed write is
// dropped, so resolution degrades to extra remote calls rather than failed
// requests.
type Store interface {
	Get(ctx context.Context, key string) (int64, bool)
	Set(ctx context.Context, key string, id int64)
}

// Memory is the in-process default: non-durable, never evicted, not shared
// across instances. Two instances can race to create a topic for the same
// address; the resolver's refind fallback tolerates that.
type Memory struct {
	mu      sync.RWMutex
	threads map[string]int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{threads: make(map[string]int64)}
}

func (m *Memory) Get(_ context.Context, key string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.threads[key]
	return id, ok
}

func (m *Memory) Set(_ context.Context, key string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[key] = id
}
