// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds synthetic sources shared by the package tests.
// It deliberately does not import audio so that package can use it too.
package audiotest

import (
	"errors"
	"io"
	"math"
	"sync/atomic"
)

// Waveform returns the value of channel ch at frame.
type Waveform func(frame, ch int) float32

// Source is a finite, seekable generator satisfying audio.Source,
// audio.Lengther and audio.FrameSeeker.
type Source struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       Waveform

	// Closed counts Close calls.
	Closed atomic.Int32
}

func NewSource(sampleRate, channels, frames int, wave Waveform) *Source {
	return &Source{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		wave:       wave,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *Source {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *Source {
	return NewSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func NewSineSource(sampleRate, channels, frames int, frequency float64) *Source {
	return NewSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewRampSource encodes the frame index into every sample as frame/scale,
// plus ch/1000 so channels stay distinguishable.
func NewRampSource(sampleRate, channels, frames int, scale float32) *Source {
	return NewSource(sampleRate, channels, frames, func(frame, ch int) float32 {
		return float32(frame)/scale + float32(ch)/1000
	})
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }
func (s *Source) Frames() int64   { return int64(s.frames) }

func (s *Source) Close() error {
	s.Closed.Add(1)
	return nil
}

func (s *Source) SeekFrame(frame int64) error {
	s.pos = int(min(max(frame, 0), int64(s.frames)))
	return nil
}

// Reset rewinds to the first frame.
func (s *Source) Reset() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	count := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range count {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}

	s.pos += count
	n := count * s.channels
	if s.pos >= s.frames {
		return n, io.EOF
	}
	return n, nil
}

// Stream exposes only the audio.Source methods of a Source,
// hiding its length and seeking.
type Stream struct {
	src *Source
}

func NewStream(src *Source) Stream { return Stream{src: src} }

func (s Stream) SampleRate() int                        { return s.src.SampleRate() }
func (s Stream) Channels() int                          { return s.src.Channels() }
func (s Stream) BufSize() int                           { return s.src.BufSize() }
func (s Stream) Close() error                           { return s.src.Close() }
func (s Stream) ReadSamples(dst []float32) (int, error) { return s.src.ReadSamples(dst) }

var ErrBroken = errors.New("audiotest: broken source")

// Broken fails every read.
type Broken struct {
	Rate, Chans int
}

func (b Broken) SampleRate() int                    { return b.Rate }
func (b Broken) Channels() int                      { return b.Chans }
func (b Broken) BufSize() int                       { return 0 }
func (b Broken) Close() error                       { return nil }
func (b Broken) ReadSamples([]float32) (int, error) { return 0, ErrBroken }
