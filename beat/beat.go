// SPDX-License-Identifier: EPL-2.0

// Package beat maps between beats, sample counts and pixel coordinates for a
// given tempo, sample rate and zoom level.
package beat

import (
	"iter"
	"math"
	"sync"
)

// DefaultDivisions is the number of grid subdivisions per beat.
const DefaultDivisions = 4

// Beat holds a tempo context. Derived units are recomputed whenever one of
// the inputs changes. It is safe for concurrent use.
type Beat struct {
	mu sync.RWMutex

	bpm            float64
	sampleRate     float64
	pixelPerSample float64
	divisions      int

	samplesPerBeat float64
	divSampleUnit  float64
	beatPixelUnit  float64
	divPixelUnit   float64
}

type Option func(*Beat)

// WithDivisions sets the subdivisions per beat. Values below 1 are ignored.
func WithDivisions(n int) Option {
	return func(b *Beat) {
		if n >= 1 {
			b.divisions = n
		}
	}
}

func New(bpm, sampleRate, pixelPerSample float64, opts ...Option) *Beat {
	b := &Beat{
		bpm:            bpm,
		sampleRate:     sampleRate,
		pixelPerSample: pixelPerSample,
		divisions:      DefaultDivisions,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.calculate()
	return b
}

func (b *Beat) SetBPM(bpm float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bpm = bpm
	b.calculate()
}

func (b *Beat) SetSampleRate(sampleRate float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sampleRate = sampleRate
	b.calculate()
}

func (b *Beat) SetPixelPerSample(pps float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pixelPerSample = pps
	b.calculate()
}

// calculate must run with mu held for writing.
func (b *Beat) calculate() {
	b.samplesPerBeat = 0
	if b.bpm > 0 && b.sampleRate > 0 {
		b.samplesPerBeat = 60 / b.bpm * b.sampleRate
	}

	b.divSampleUnit = b.samplesPerBeat / float64(b.divisions)
	b.beatPixelUnit = b.samplesPerBeat * b.pixelPerSample
	b.divPixelUnit = b.beatPixelUnit / float64(b.divisions)
}

func (b *Beat) BPM() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bpm
}

func (b *Beat) SampleRate() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sampleRate
}

func (b *Beat) PixelPerSample() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pixelPerSample
}

func (b *Beat) Divisions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.divisions
}

// SamplesPerBeat is the length of one beat in samples.
func (b *Beat) SamplesPerBeat() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.samplesPerBeat
}

// DivSampleUnit is the length of one subdivision in samples.
func (b *Beat) DivSampleUnit() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.divSampleUnit
}

// BeatPixelUnit is the width of one beat in pixels.
func (b *Beat) BeatPixelUnit() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.beatPixelUnit
}

// DivPixelUnit is the width of one subdivision in pixels.
func (b *Beat) DivPixelUnit() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.divPixelUnit
}

// ToSample converts a pixel coordinate to samples, quantized down to the
// start of its subdivision.
func (b *Beat) ToSample(pixel float64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.pixelPerSample <= 0 || b.divSampleUnit <= 0 {
		return 0
	}

	sample := pixel / b.pixelPerSample
	return int(math.Floor(sample/b.divSampleUnit) * b.divSampleUnit)
}

// ToPixel converts a sample count to a pixel coordinate.
func (b *Beat) ToPixel(sample int) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return float64(sample) * b.pixelPerSample
}

func (b *Beat) BeatsToSamples(beats float64) int {
	return int(math.Round(beats * b.SamplesPerBeat()))
}

func (b *Beat) SamplesToBeats(samples int) float64 {
	spb := b.SamplesPerBeat()
	if spb <= 0 {
		return 0
	}
	return float64(samples) / spb
}

func (b *Beat) SecondsToSamples(seconds float64) int {
	return int(math.Round(seconds * b.SampleRate()))
}

func (b *Beat) SamplesToSeconds(samples int) float64 {
	sr := b.SampleRate()
	if sr <= 0 {
		return 0
	}
	return float64(samples) / sr
}

// BeatPositions yields the pixel coordinate of every beat line in
// [start, end), starting from the beat at or before start.
func (b *Beat) BeatPositions(start, end float64) iter.Seq[float64] {
	return grid(b.BeatPixelUnit(), start, end)
}

// SubdivisionPositions yields the pixel coordinate of every subdivision line
// in [start, end), starting from the subdivision at or before start.
func (b *Beat) SubdivisionPositions(start, end float64) iter.Seq[float64] {
	return grid(b.DivPixelUnit(), start, end)
}

// grid snapshots unit so a sequence stays stable across tempo changes.
func grid(unit, start, end float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if unit <= 0 {
			return
		}

		first := math.Floor(start/unit) * unit
		for i := 0; ; i++ {
			p := first + float64(i)*unit
			if p >= end || !yield(p) {
				return
			}
		}
	}
}
