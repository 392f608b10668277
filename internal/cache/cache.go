// Package cache provides the bounded, time-expiring extraction result store.
package cache

import (
	"sort"
	"sync"
	"time"
)

// Store is the injection point for the extraction cache. Values are opaque
// serialized records so every backend returns copies, never shared objects.
type Store interface {
	// Get returns the value for key, or false when absent or expired.
	Get(key string) ([]byte, bool)
	// Put stores a value under key, evicting under capacity pressure.
	Put(key string, value []byte)
	// Clear removes all values.
	Clear()
	// Stats returns current cache statistics.
	Stats() Stats
}

// Stats holds cache performance metrics.
type Stats struct {
	Size      int           `json:"size"`
	Capacity  int           `json:"maxSize"`
	TTL       time.Duration `json:"-"`
	TTLMillis int64         `json:"ttl"`
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Evictions int64         `json:"evictions"`
}

// evictFraction is the share of entries dropped when capacity maintenance
// still finds the store over capacity after purging expired entries.
const evictFraction = 0.2

type entry struct {
	value          []byte
	insertedAt     time.Time
	lastAccessedAt time.Time
	hitCount       int64
	seq            uint64 // insertion order, tie-breaker for eviction
}

// memoryStore is the process-local Store implementation.
type memoryStore struct {
	mu       sync.Mutex
	entries  map[string]*entry
	ttl      time.Duration
	capacity int
	seq      uint64
	stats    Stats
	now      func() time.Time // overridable for tests
}

// NewMemoryStore creates an in-memory Store with the given TTL and capacity.
func NewMemoryStore(ttl time.Duration, capacity int) Store {
	return &memoryStore{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

func (s *memoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found {
		s.stats.Misses++
		return nil, false
	}
	now := s.now()
	if now.Sub(e.insertedAt) > s.ttl {
		// Expired entries are treated as absent and removed lazily.
		delete(s.entries, key)
		s.stats.Evictions++
		s.stats.Misses++
		return nil, false
	}

	e.lastAccessedAt = now
	e.hitCount++
	s.stats.Hits++

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

func (s *memoryStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		s.maintain()
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	now := s.now()
	s.seq++
	s.entries[key] = &entry{
		value:          stored,
		insertedAt:     now,
		lastAccessedAt: now,
		seq:            s.seq,
	}
}

// maintain runs capacity maintenance: purge expired entries first, then drop
// the lowest-hit-count fraction of what remains. Caller holds the lock.
func (s *memoryStore) maintain() {
	now := s.now()
	for key, e := range s.entries {
		if now.Sub(e.insertedAt) > s.ttl {
			delete(s.entries, key)
			s.stats.Evictions++
		}
	}
	if len(s.entries) < s.capacity {
		return
	}

	type victim struct {
		key string
		e   *entry
	}
	victims := make([]victim, 0, len(s.entries))
	for key, e := range s.entries {
		victims = append(victims, victim{key, e})
	}
	sort.Slice(victims, func(i, j int) bool {
		if victims[i].e.hitCount != victims[j].e.hitCount {
			return victims[i].e.hitCount < victims[j].e.hitCount
		}
		return victims[i].e.seq < victims[j].e.seq
	})

	drop := int(float64(len(victims)) * evictFraction)
	if drop < 1 {
		drop = 1
	}
	for _, v := range victims[:drop] {
		delete(s.entries, v.key)
		s.stats.Evictions++
	}
}

func (s *memoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

func (s *memoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.Size = len(s.entries)
	stats.Capacity = s.capacity
	stats.TTL = s.ttl
	stats.TTLMillis = s.ttl.Milliseconds()
	return stats
}

// noOpStore disables caching.
type noOpStore struct{}

// NewNoOpStore creates a Store that never retains anything.
func NewNoOpStore() Store {
	return noOpStore{}
}

func (noOpStore) Get(string) ([]byte, bool) { return nil, false }
func (noOpStore) Put(string, []byte)        {}
func (noOpStore) Clear()                    {}
func (noOpStore) Stats() Stats              { return Stats{} }
