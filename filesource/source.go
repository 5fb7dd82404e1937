// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"fmt"
	"sync"
	"time"

	"github.com/viterin/vek/vek32"
)

// Mode tells how a loaded source holds its samples.
type Mode int

const (
	Unloaded Mode = iota
	// Materialized sources hold the whole file in memory.
	Materialized
	// Lazy sources decode each requested range from disk.
	Lazy
)

func (m Mode) String() string {
	switch m {
	case Unloaded:
		return "unloaded"
	case Materialized:
		return "materialized"
	case Lazy:
		return "lazy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type lazyReader struct {
	dec  Decoder
	mult float32
}

// Source is one decoded file shared by every node playing it.
// Obtain one with Cache.Open.
type Source struct {
	cache *Cache

	mu        sync.Mutex
	key       sourceKey
	amplitude float32
	natural   int
	loaded    bool
	data      []float32
	lazy      *lazyReader

	// Guarded by cache.mu. counted is also only written with mu held.
	refs       int
	counted    bool
	tick       uint64
	lastAccess time.Time
}

func newSource(c *Cache, key sourceKey) *Source {
	return &Source{cache: c, key: key, amplitude: 1, natural: -1}
}

func (s *Source) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key.path
}

// RequestedFrames is the forced length, if any.
func (s *Source) RequestedFrames() (int, bool) {
	return s.key.frames, s.key.frames >= 0
}

func (s *Source) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.loaded:
		return Unloaded
	case s.lazy != nil:
		return Lazy
	default:
		return Materialized
	}
}

func (s *Source) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Bytes is the size of the materialized buffer.
func (s *Source) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes()
}

func (s *Source) bytes() int64 { return int64(len(s.data)) * 4 }

func (s *Source) LastAccess() time.Time {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	return s.lastAccess
}

// Frames is the playable length: the requested length when one was
// given, otherwise the natural length of the file. A file that cannot be
// decoded has no frames.
func (s *Source) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames()
}

func (s *Source) frames() int {
	if s.key.frames >= 0 {
		return s.key.frames
	}
	if s.natural < 0 {
		s.measure()
	}
	return s.natural
}

func (s *Source) measure() {
	dec, err := s.cache.opener.Open(s.key.path)
	if err != nil {
		s.cache.log.Warn("cannot read file length", "path", s.key.path, "error", err)
		s.natural = 0
		return
	}
	s.natural = dec.Frames()
	_ = dec.Close()
}

// Load decodes the file unless it is already loaded, and stamps an access.
// Decode failures leave an empty buffer, or a silent one of the requested
// length, and are only logged.
func (s *Source) Load() {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		s.cache.touch(s)
		return
	}
	materialized := s.load()
	s.mu.Unlock()

	if materialized {
		s.cache.register(s)
	} else {
		s.cache.touch(s)
	}
}

// load reports whether s ended up materialized.
func (s *Source) load() bool {
	c := s.cache
	path := s.key.path

	dec, err := c.opener.Open(path)
	if err != nil {
		c.log.Warn("decode failed", "path", path, "error", err)
		if s.natural < 0 {
			s.natural = 0
		}
		s.data = s.fit(nil)
		s.loaded = true
		return true
	}
	s.natural = dec.Frames()

	if limit := c.lazyLimit(); limit > 0 && s.natural >= limit {
		s.lazy = &lazyReader{dec: dec, mult: s.amplitude}
		s.loaded = true
		c.log.Info("decoding file on demand", "path", path, "frames", s.natural)
		return false
	}

	data, err := dec.DecodeRange(0, s.natural)
	if err != nil {
		c.log.Warn("decode failed", "path", path, "error", err)
		data = nil
	}
	if err := dec.Close(); err != nil {
		c.log.Debug("close decoder", "path", path, "error", err)
	}

	data = s.fit(data)
	if s.amplitude != 1 && len(data) > 0 {
		vek32.MulNumber_Inplace(data, s.amplitude)
	}
	s.data = data
	s.loaded = true
	return true
}

// fit truncates or pads data to the requested length.
func (s *Source) fit(data []float32) []float32 {
	if s.key.frames < 0 {
		return data
	}

	want := s.cache.format.Samples(s.key.frames)
	if len(data) >= want {
		return data[:want:want]
	}
	return append(data, make([]float32, want-len(data))...)
}

// Unload releases the decoded samples. It is safe on an unloaded source.
func (s *Source) Unload() {
	s.cache.mu.Lock()
	s.cache.unloadLocked(s)
	s.cache.mu.Unlock()
}

// Rename points the source at another file. A materialized source is
// unloaded and reloads on next access. A lazy source swaps its decoder in
// place and keeps its amplitude.
func (s *Source) Rename(path string) {
	c := s.cache

	s.mu.Lock()
	lazy := s.lazy != nil
	s.mu.Unlock()

	var dec Decoder
	if lazy {
		var err error
		if dec, err = c.opener.Open(path); err != nil {
			c.log.Warn("decode failed", "path", path, "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.forgetLocked(s)
	if dec == nil {
		c.unloadLocked(s)
	}

	s.mu.Lock()
	s.key.path = path
	s.natural = -1
	if dec != nil && s.lazy != nil {
		if err := s.lazy.dec.Close(); err != nil {
			c.log.Debug("close decoder", "error", err)
		}
		s.lazy.dec = dec
		s.natural = dec.Frames()
	} else if dec != nil {
		_ = dec.Close()
	}
	s.mu.Unlock()

	if _, taken := c.entries[s.key]; !taken && !c.closed {
		c.entries[s.key] = s
	}
}

func (s *Source) Amplitude() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amplitude
}

// SetAmplitude scales every sample the source produces by a.
func (s *Source) SetAmplitude(a float32) {
	s.mu.Lock()
	old := s.amplitude
	s.amplitude = a

	reload := false
	switch {
	case old == a:
	case s.lazy != nil:
		s.lazy.mult = a
	case s.loaded && old != 0:
		if len(s.data) > 0 {
			vek32.MulNumber_Inplace(s.data, a/old)
		}
	case s.loaded:
		reload = true
	}
	s.mu.Unlock()

	if reload {
		s.Unload()
	}
}

// CopyRange copies frames from start into dst, loading the source first,
// and returns the number of frames copied. Nothing is copied at or past
// the end of the source.
func (s *Source) CopyRange(dst []float32, start int) int {
	s.Load()

	ch := s.cache.format.Channels
	s.mu.Lock()
	defer s.mu.Unlock()

	start = max(start, 0)
	end := min(start+len(dst)/ch, s.frames())
	if start >= end {
		return 0
	}

	if s.lazy != nil {
		data, err := s.lazy.dec.DecodeRange(start, end)
		if err != nil {
			s.cache.log.Warn("decode failed", "path", s.key.path, "error", err)
			return 0
		}
		n := copy(dst, data)
		if s.lazy.mult != 1 {
			vek32.MulNumber_Inplace(dst[:n], s.lazy.mult)
		}
		return n / ch
	}

	end = min(end, len(s.data)/ch)
	if start >= end {
		return 0
	}
	return copy(dst, s.data[start*ch:end*ch]) / ch
}

// Range returns frames [start, end). The result is shorter than asked,
// possibly empty, where the range runs past the end of the source.
func (s *Source) Range(start, end int) []float32 {
	start = max(start, 0)
	if end <= start {
		return nil
	}

	buf := make([]float32, s.cache.format.Samples(end-start))
	n := s.CopyRange(buf, start)
	return buf[:s.cache.format.Samples(n)]
}

// Frame returns the frame at at. Past the end it is silent. Lazy
// sources decode just that frame.
func (s *Source) Frame(at int) []float32 {
	s.Load()

	ch := s.cache.format.Channels
	frame := make([]float32, ch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if at < 0 || at >= s.frames() {
		return frame
	}

	if s.lazy == nil {
		if end := (at + 1) * ch; end <= len(s.data) {
			copy(frame, s.data[at*ch:end])
		}
		return frame
	}

	data, err := s.lazy.dec.DecodeFrame(at)
	if err != nil {
		s.cache.log.Warn("decode failed", "path", s.key.path, "error", err)
		return frame
	}
	n := copy(frame, data)
	if s.lazy.mult != 1 {
		vek32.MulNumber_Inplace(frame[:n], s.lazy.mult)
	}
	return frame
}
