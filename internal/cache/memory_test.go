package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/varoOP/kinobot/internal/domain"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemory_GetPut(t *testing.T) {
	m := NewMemory(time.Hour)

	if _, ok := m.Get("inception"); ok {
		t.Fatal("expected miss on empty cache")
	}

	rec := domain.MovieRecord{Title: "Начало", Source: domain.SourceKinopoisk}
	m.Put("inception", rec)

	got, ok := m.Get("inception")
	if !ok || got != rec {
		t.Fatalf("Get = %+v, %v", got, ok)
	}
}

func TestMemory_Replace(t *testing.T) {
	m := NewMemory(time.Hour)
	m.Put("k", domain.MovieRecord{Title: "old"})
	m.Put("k", domain.MovieRecord{Title: "new"})

	got, _ := m.Get("k")
	if got.Title != "new" {
		t.Fatalf("Title = %q, want new", got.Title)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(time.Hour).WithClock(c.now)

	m.Put("k", domain.MovieRecord{Title: "t"})

	c.advance(59 * time.Minute)
	if _, ok := m.Get("k"); !ok {
		t.Fatal("expected hit before ttl")
	}

	c.advance(time.Minute)
	if _, ok := m.Get("k"); ok {
		t.Fatal("expected miss at ttl")
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry not evicted, Len = %d", m.Len())
	}
}

func TestMemory_NoTTL(t *testing.T) {
	c := &clock{t: time.Now()}
	m := NewMemory(0).WithClock(c.now)
	m.Put("k", domain.MovieRecord{Title: "t"})

	c.advance(24 * 365 * time.Hour)
	if _, ok := m.Get("k"); !ok {
		t.Fatal("entries without ttl must not expire")
	}
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory(time.Hour)
	m.Put("k", domain.MovieRecord{Title: "t"})
	m.Delete("k")
	if _, ok := m.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			m.Put(key, domain.MovieRecord{Title: key})
			m.Get(key)
		}(i)
	}
	wg.Wait()

	if m.Len() != 5 {
		t.Fatalf("Len = %d, want 5", m.Len())
	}
}
