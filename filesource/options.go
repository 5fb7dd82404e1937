// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"log/slog"
	"time"
)

const (
	// DefaultBudget is the materialized byte budget of a cache.
	DefaultBudget = 500 * 1024 * 1024
	// DefaultLazyThreshold is the file length from which sources are
	// decoded on demand instead of held in memory.
	DefaultLazyThreshold = 5 * time.Minute
)

type CacheOption func(*Cache)

// WithBudget sets the materialized byte budget.
func WithBudget(bytes int64) CacheOption {
	return func(c *Cache) { c.budget = bytes }
}

func WithLazyThreshold(d time.Duration) CacheOption {
	return func(c *Cache) { c.lazyAfter = d }
}

func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// SourceOption configures a Source at first open. Options are part of the
// cache key, so two opens of one path with different lengths yield two
// sources.
type SourceOption func(*sourceKey)

// WithFrames forces the source length to n frames, truncating or padding
// the decoded content with silence.
func WithFrames(n int) SourceOption {
	return func(k *sourceKey) { k.frames = max(n, 0) }
}

type sourceKey struct {
	path   string
	frames int
}

func newKey(path string, opts []SourceOption) sourceKey {
	k := sourceKey{path: path, frames: -1}
	for _, opt := range opts {
		opt(&k)
	}
	return k
}
