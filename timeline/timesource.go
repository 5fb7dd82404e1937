// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"fmt"
	"strings"

	"github.com/ik5/audtl/beat"
)

type Unit int

const (
	UnitSample Unit = iota
	UnitBeat
	UnitSecond
)

func (u Unit) String() string {
	switch u {
	case UnitSample:
		return "sample"
	case UnitBeat:
		return "beat"
	case UnitSecond:
		return "second"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sample", "samples":
		return UnitSample, nil
	case "beat", "beats":
		return UnitBeat, nil
	case "second", "seconds", "s":
		return UnitSecond, nil
	}
	return UnitSample, fmt.Errorf("unknown time unit %q", s)
}

// TimeSource is a position expressed in samples, beats or seconds together
// with its resolved sample count. The sample count goes stale when tempo or
// sample rate change until Recompute runs.
type TimeSource struct {
	value   float64
	unit    Unit
	samples int
}

func NewTimeSource(value float64, unit Unit, b *beat.Beat) TimeSource {
	t := TimeSource{value: value, unit: unit}
	t.Recompute(b)
	return t
}

func (t TimeSource) Value() float64   { return t.value }
func (t TimeSource) Unit() Unit       { return t.unit }
func (t TimeSource) SampleCount() int { return t.samples }

func (t *TimeSource) SetValue(v float64, b *beat.Beat) {
	t.value = v
	t.Recompute(b)
}

// SetUnit keeps the sample position and re-expresses the value in u.
func (t *TimeSource) SetUnit(u Unit, b *beat.Beat) {
	t.unit = u
	t.value = express(t.samples, u, b)
}

func (t *TimeSource) SetSampleCount(n int, b *beat.Beat) {
	t.samples = n
	t.value = express(n, t.unit, b)
}

// Recompute resolves the sample count from the value and unit.
func (t *TimeSource) Recompute(b *beat.Beat) {
	switch t.unit {
	case UnitBeat:
		t.samples = b.BeatsToSamples(t.value)
	case UnitSecond:
		t.samples = b.SecondsToSamples(t.value)
	default:
		t.samples = int(t.value)
	}
}

func express(samples int, u Unit, b *beat.Beat) float64 {
	switch u {
	case UnitBeat:
		return b.SamplesToBeats(samples)
	case UnitSecond:
		return b.SamplesToSeconds(samples)
	default:
		return float64(samples)
	}
}
