package session

import (
	"github.com/patrickmn/go-cache"
)

// Store maps session ids to sessions.
type Store interface {
	// GetOrCreate returns the session for id, creating it if unseen. Any
	// string, including the empty string, is a valid id.
	GetOrCreate(id string) *Session

	// Lookup returns the session for id without creating it.
	Lookup(id string) (*Session, bool)

	// Len returns the number of sessions.
	Len() int
}

// MemoryStore is an unbounded in-memory Store. Sessions are never evicted.
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	// No expiration and no janitor: sessions live for the process lifetime.
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

// GetOrCreate implements Store.
func (m *MemoryStore) GetOrCreate(id string) *Session {
	if s, ok := m.Lookup(id); ok {
		return s
	}

	s := newSession(id)
	if err := m.cache.Add(id, s, cache.NoExpiration); err != nil {
		// Another request created it first.
		if existing, ok := m.Lookup(id); ok {
			return existing
		}
	}
	SessionsActive.Set(float64(m.cache.ItemCount()))
	return s
}

// Lookup implements Store.
func (m *MemoryStore) Lookup(id string) (*Session, bool) {
	x, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	return x.(*Session), true
}

// Len implements Store.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
