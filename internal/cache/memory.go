package cache

import (
	"sync"
	"time"

	"github.com/varoOP/kinobot/internal/domain"
)

type entry struct {
	record   domain.MovieRecord
	storedAt time.Time
}

// Memory is a process-lifetime result cache with a time-to-live.
// A TTL of zero or less keeps entries forever.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

var _ domain.ResultCache = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Get returns the record stored under key. Expired entries are evicted
// and reported as a miss.
func (m *Memory) Get(key string) (domain.MovieRecord, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return domain.MovieRecord{}, false
	}

	if m.expired(e) {
		m.mu.Lock()
		// another writer may have refreshed the entry meanwhile
		if cur, ok := m.entries[key]; ok && m.expired(cur) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return domain.MovieRecord{}, false
	}

	return e.record, true
}

// Put stores record under key, replacing any previous entry
func (m *Memory) Put(key string, record domain.MovieRecord) {
	m.mu.Lock()
	m.entries[key] = entry{record: record, storedAt: m.now()}
	m.mu.Unlock()
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet evicted
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e entry) bool {
	return m.ttl > 0 && m.now().Sub(e.storedAt) >= m.ttl
}
