// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	log, buf := bufferLogger()
	c := NewCache(threeFiles(), format, WithBudget(fileBytes*5/2), WithLogger(log))
	a, b, cc := open(t, c, "a.wav"), open(t, c, "b.wav"), open(t, c, "c.wav")

	a.Load()
	b.Load()
	if c.TotalBytes() != 2*fileBytes {
		t.Fatalf("TotalBytes() = %d with two files", c.TotalBytes())
	}

	cc.Load()
	if a.Loaded() || !b.Loaded() || !cc.Loaded() {
		t.Errorf("resident a=%v b=%v c=%v, want b and c", a.Loaded(), b.Loaded(), cc.Loaded())
	}
	if c.TotalBytes() != 2*fileBytes {
		t.Errorf("TotalBytes() = %d after eviction", c.TotalBytes())
	}
	if !strings.Contains(buf.String(), "evicted file") {
		t.Errorf("log = %q, want an eviction", buf.String())
	}
}

func TestCache_AccessRefreshesOrder(t *testing.T) {
	t.Parallel()

	c := NewCache(threeFiles(), format, WithBudget(fileBytes*5/2))
	a, b, cc := open(t, c, "a.wav"), open(t, c, "b.wav"), open(t, c, "c.wav")

	a.Load()
	b.Load()
	a.Range(0, 1)
	cc.Load()

	if !a.Loaded() || b.Loaded() {
		t.Errorf("resident a=%v b=%v, want a only", a.Loaded(), b.Loaded())
	}
}

func TestCache_BudgetOfOneAndAHalfFiles(t *testing.T) {
	t.Parallel()

	c := NewCache(threeFiles(), format, WithBudget(fileBytes*3/2))

	var loaded []*Source
	for _, path := range []string{"a.wav", "b.wav", "c.wav"} {
		s := open(t, c, path)
		s.Load()
		loaded = append(loaded, s)

		if c.TotalBytes() > c.Budget() {
			t.Fatalf("after %s: TotalBytes() = %d over budget", path, c.TotalBytes())
		}
	}

	if loaded[0].Loaded() || loaded[1].Loaded() || !loaded[2].Loaded() {
		t.Error("only the newest file should stay resident")
	}
}

func TestCache_ProtectedSourceStays(t *testing.T) {
	t.Parallel()

	c := NewCache(threeFiles(), format, WithBudget(10))
	s := open(t, c, "a.wav")
	s.Load()

	if !s.Loaded() || c.TotalBytes() != fileBytes {
		t.Errorf("loaded %v, total %d", s.Loaded(), c.TotalBytes())
	}
}

func TestCache_LazySourcesCostNothing(t *testing.T) {
	t.Parallel()

	o := newMemOpener(map[string]memFile{
		"long.wav":  {frames: 500},
		"short.wav": {frames: 10},
	})
	c := NewCache(o, format, WithBudget(1), WithLazyThreshold(50*time.Millisecond))

	long, short := open(t, c, "long.wav"), open(t, c, "short.wav")
	long.Load()
	short.Load()

	if long.Mode() != Lazy || short.Mode() != Materialized {
		t.Fatalf("modes long=%v short=%v", long.Mode(), short.Mode())
	}
	if c.TotalBytes() != short.Bytes() {
		t.Errorf("TotalBytes() = %d, want %d", c.TotalBytes(), short.Bytes())
	}
}

func TestCache_OpenSharesSources(t *testing.T) {
	t.Parallel()

	c := NewCache(threeFiles(), format)
	s1, s2 := open(t, c, "a.wav"), open(t, c, "a.wav")
	if s1 != s2 || c.Len() != 1 {
		t.Fatalf("sources differ or Len() = %d", c.Len())
	}

	s1.Load()
	c.Release(s1)
	if got, ok := c.Lookup("a.wav"); !ok || got != s2 || !s2.Loaded() {
		t.Fatal("source dropped while still referenced")
	}

	c.Release(s2)
	if _, ok := c.Lookup("a.wav"); ok || c.TotalBytes() != 0 || c.Len() != 0 {
		t.Errorf("released source still cached, total %d", c.TotalBytes())
	}
}

func TestCache_Close(t *testing.T) {
	t.Parallel()

	c := NewCache(threeFiles(), format)
	s := open(t, c, "a.wav")
	s.Load()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.TotalBytes() != 0 || c.Len() != 0 || s.Loaded() {
		t.Errorf("after close: total %d, len %d, loaded %v", c.TotalBytes(), c.Len(), s.Loaded())
	}
	if _, err := c.Open("a.wav"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Open() error = %v, want ErrCacheClosed", err)
	}

	s.Load()
	if c.TotalBytes() != 0 {
		t.Errorf("closed cache accounted %d bytes", c.TotalBytes())
	}
}

func TestCache_TotalMatchesResidentBuffers(t *testing.T) {
	t.Parallel()

	c := NewCache(threeFiles(), format, WithBudget(fileBytes*2))
	paths := []string{"a.wav", "b.wav", "c.wav"}

	var sources []*Source
	for _, p := range paths {
		sources = append(sources, open(t, c, p))
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for j := range 100 {
				s := sources[(i+j)%len(sources)]
				if j%7 == 0 {
					s.Unload()
					continue
				}
				s.Range(j%100, j%100+10)
			}
		})
	}
	wg.Wait()

	var want int64
	for _, s := range sources {
		if s.Mode() == Materialized {
			want += s.Bytes()
		}
	}
	if got := c.TotalBytes(); got != want {
		t.Errorf("TotalBytes() = %d, resident buffers hold %d", got, want)
	}
	if c.TotalBytes() > c.Budget() {
		t.Errorf("TotalBytes() = %d over budget %d", c.TotalBytes(), c.Budget())
	}
}
