// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ik5/audtl/timeline"
)

// Cache shares decoded files between nodes and bounds the memory held by
// materialized sources.
type Cache struct {
	opener    Opener
	format    timeline.Format
	budget    int64
	lazyAfter time.Duration
	log       *slog.Logger

	// mu guards every field below and the accounting fields of each Source.
	// Lock order is Cache.mu before Source.mu.
	mu      sync.Mutex
	entries map[sourceKey]*Source
	live    map[*Source]struct{}
	total   int64
	tick    uint64
	closed  bool
}

func NewCache(opener Opener, format timeline.Format, opts ...CacheOption) *Cache {
	c := &Cache{
		opener:    opener,
		format:    format,
		budget:    DefaultBudget,
		lazyAfter: DefaultLazyThreshold,
		log:       slog.New(slog.DiscardHandler),
		entries:   make(map[sourceKey]*Source),
		live:      make(map[*Source]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Format() timeline.Format { return c.format }
func (c *Cache) Budget() int64           { return c.budget }

// lazyLimit is the lazy threshold in frames; zero disables lazy decoding.
func (c *Cache) lazyLimit() int {
	return int(c.lazyAfter.Seconds() * float64(c.format.SampleRate))
}

// TotalBytes is the size of every materialized buffer currently loaded.
func (c *Cache) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Len is the number of paths registered in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup returns the source registered for path and opts without taking a
// reference.
func (c *Cache) Lookup(path string, opts ...SourceOption) (*Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[newKey(path, opts)]
	return s, ok
}

// Open returns the source for path, creating it on first use, and takes a
// reference to it. Every Open must be paired with a Release.
func (c *Cache) Open(path string, opts ...SourceOption) (*Source, error) {
	s, _, err := c.open(newKey(path, opts))
	return s, err
}

// open also reports whether the source was created by this call.
func (c *Cache) open(key sourceKey) (*Source, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false, ErrCacheClosed
	}

	s, ok := c.entries[key]
	if !ok {
		s = newSource(c, key)
		c.entries[key] = s
		c.live[s] = struct{}{}
	}
	s.refs++
	return s, !ok, nil
}

// sole reports whether the caller holds the only reference to s and no
// other source is registered under path with the same options.
func (c *Cache) sole(s *Source, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || s.refs != 1 {
		return false
	}
	key := s.key
	key.path = path
	_, taken := c.entries[key]
	return !taken
}

// Release drops a reference taken by Open. The last release unloads the
// source and removes it from the cache.
func (c *Cache) Release(s *Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.refs--
	if s.refs > 0 {
		return
	}

	c.unloadLocked(s)
	c.forgetLocked(s)
	delete(c.live, s)
}

// acquire takes another reference to an already open s.
func (c *Cache) acquire(s *Source) {
	c.mu.Lock()
	s.refs++
	c.mu.Unlock()
}

// Close unloads every source. Sources stay usable by their holders but
// are no longer cached; Open fails from now on.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for s := range c.live {
		c.unloadLocked(s)
	}
	clear(c.entries)
	clear(c.live)
	c.closed = true
	return nil
}

// touch stamps an access on s.
func (c *Cache) touch(s *Source) {
	c.mu.Lock()
	c.tick++
	s.tick, s.lastAccess = c.tick, time.Now()
	c.mu.Unlock()
}

// register accounts a freshly materialized s and evicts other sources
// until the budget is met.
func (c *Cache) register(s *Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	s.mu.Lock()
	if !s.loaded || s.lazy != nil || s.counted {
		s.mu.Unlock()
		return
	}
	s.counted = true
	size := s.bytes()
	s.mu.Unlock()

	c.total += size
	c.tick++
	s.tick, s.lastAccess = c.tick, time.Now()
	if _, ok := c.entries[s.key]; !ok {
		c.entries[s.key] = s
	}

	c.evictLocked(s)
}

// evictLocked unloads the least recently accessed materialized sources,
// never protected, until the total fits the budget or nothing is left.
func (c *Cache) evictLocked(protected *Source) {
	if c.total <= c.budget {
		return
	}

	var candidates []*Source
	for s := range c.live {
		if s != protected && s.counted {
			candidates = append(candidates, s)
		}
	}
	slices.SortFunc(candidates, func(a, b *Source) int {
		switch {
		case a.tick < b.tick:
			return -1
		case a.tick > b.tick:
			return 1
		}
		return 0
	})

	for _, s := range candidates {
		if c.total <= c.budget {
			break
		}
		size := c.unloadLocked(s)
		c.log.Debug("evicted file", "path", s.Path(), "bytes", size, "total", c.total)
	}
}

// unloadLocked releases the buffer or decoder of s and returns the bytes
// freed.
func (c *Cache) unloadLocked(s *Source) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return 0
	}

	var size int64
	if s.counted {
		size = s.bytes()
		c.total -= size
		s.counted = false
	}
	if s.lazy != nil {
		if err := s.lazy.dec.Close(); err != nil {
			c.log.Debug("close decoder", "path", s.key.path, "error", err)
		}
		s.lazy = nil
	}
	s.data = nil
	s.loaded = false
	return size
}

func (c *Cache) forgetLocked(s *Source) {
	if c.entries[s.key] == s {
		delete(c.entries, s.key)
	}
}
