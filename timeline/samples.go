// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"slices"
	"sync"

	"github.com/ik5/audtl/beat"
	"github.com/viterin/vek/vek32"
)

// Samples is a leaf node playing a fixed in-memory buffer.
type Samples struct {
	*Base

	mu     sync.RWMutex
	data   []float32
	frames int
}

// NewSamples takes ownership of data, which must be interleaved in format's
// channel count. A trailing partial frame is dropped.
func NewSamples(format Format, data []float32, name string) *Samples {
	frames := format.Frames(len(data))
	return &Samples{
		Base:   NewBase(format, name),
		data:   data[:format.Samples(frames)],
		frames: frames,
	}
}

// Frames is the length of the buffer content.
func (s *Samples) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

func (s *Samples) Duration() int { return s.DurationOr(s.Frames()) }

func (s *Samples) Render(req Request) *Message {
	return RenderLeaf(s, req, s.Frames(), s.segment)
}

func (s *Samples) segment(from, n int) *Message {
	f := s.Format()
	msg := NewMessage(f, n)

	s.mu.RLock()
	end := min(from+n, s.frames)
	if from < end {
		copy(msg.Samples, s.data[f.Samples(from):f.Samples(end)])
	}
	s.mu.RUnlock()

	return msg
}

// ShapeTail multiplies the content from frame start by env, one gain per
// frame, silences everything after the envelope and truncates the node to
// the envelope's end. It returns the new duration.
func (s *Samples) ShapeTail(start int, env []float32) int {
	ch := s.Format().Channels

	s.mu.Lock()
	start = min(max(start, 0), s.frames)
	seg := min(len(env), s.frames-start)

	if seg > 0 {
		gains := make([]float32, seg*ch)
		for i := range seg {
			for c := range ch {
				gains[i*ch+c] = env[i]
			}
		}
		vek32.Mul_Inplace(s.data[start*ch:(start+seg)*ch], gains)
	}
	clear(s.data[(start+seg)*ch:])

	end := start + seg
	s.frames = end
	s.mu.Unlock()

	s.SetDuration(end)
	return end
}

func (s *Samples) Clone() Node {
	s.mu.RLock()
	data := slices.Clone(s.data[:s.Format().Samples(s.frames)])
	s.mu.RUnlock()

	c := NewSamples(s.Format(), data, s.Name())
	s.CopyStateTo(c.Base)
	return c
}

func (s *Samples) Destroy() {
	s.mu.Lock()
	s.data, s.frames = nil, 0
	s.mu.Unlock()
}

func (s *Samples) RecomputeTime(*beat.Beat) {}
