// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/actuarial/reinsurance-engine/underwriting"
)

// =============================================================================
// MEMORY STORE - In-memory implementation
// =============================================================================

// Memory is a RecordStore backed by a map. Iterations running in parallel
// may share one Memory; every read and write copies the records.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]*underwriting.Record
}

var _ underwriting.RecordStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]*underwriting.Record),
	}
}

// Put replaces the list under key.
func (m *Memory) Put(_ context.Context, key string, records []*underwriting.Record) error {
	copied := underwriting.CopyAll(records)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = copied
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]*underwriting.Record, bool, error) {
	m.mu.RLock()
	stored, ok := m.records[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	return underwriting.CopyAll(stored), true, nil
}

// Keys lists stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops everything, e.g. between simulation runs.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string][]*underwriting.Record)
}
