package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_GetOrCreate(t *testing.T) {
	store := NewMemoryStore()

	a := store.GetOrCreate("abc")
	assert.Equal(t, "abc", a.ID())
	assert.Same(t, a, store.GetOrCreate("abc"))
	assert.Equal(t, 1, store.Len())

	// Any string is a valid id.
	empty := store.GetOrCreate("")
	assert.NotSame(t, a, empty)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Lookup(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len(), "lookup creates nothing")

	s := store.GetOrCreate("present")
	got, ok := store.Lookup("present")
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := store.GetOrCreate(fmt.Sprintf("s%d", i%5))
			s.AddFiles(fmt.Sprintf("/up/%d.pdf", i))
			s.AppendTurn("q", "a")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, store.Len())
	total := 0
	for i := 0; i < 5; i++ {
		s, ok := store.Lookup(fmt.Sprintf("s%d", i))
		assert.True(t, ok)
		total += len(s.Files())
		assert.Len(t, s.History(), 10)
	}
	assert.Equal(t, 50, total)
}

func TestMemoryStore_ConcurrentCreateReturnsOneSession(t *testing.T) {
	store := NewMemoryStore()

	const n = 32
	got := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = store.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, store.Len())
}
