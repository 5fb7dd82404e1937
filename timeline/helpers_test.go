// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"testing"

	"github.com/ik5/audtl/beat"
)

var (
	mono   = Format{SampleRate: 1000, Channels: 1, FramesPerBuffer: 256}
	stereo = Format{SampleRate: 1000, Channels: 2, FramesPerBuffer: 256}
)

func testBeat() *beat.Beat { return beat.New(60, 1000, 1) }

// constant returns a node of frames frames holding v on every channel.
func constant(f Format, frames int, v float32) *Samples {
	data := make([]float32, f.Samples(frames))
	for i := range data {
		data[i] = v
	}
	return NewSamples(f, data, "")
}

// ramp returns a mono node whose frame i holds float32(i).
func ramp(frames int) *Samples {
	data := make([]float32, frames)
	for i := range data {
		data[i] = float32(i)
	}
	return NewSamples(mono, data, "")
}

// eventNode emits one NoteOn at frame 5 of every render long enough to contain it.
type eventNode struct {
	*Base
	frames int
}

func newEventNode(frames int) *eventNode {
	return &eventNode{Base: NewBase(mono, "events"), frames: frames}
}

func (e *eventNode) Duration() int { return e.DurationOr(e.frames) }
func (e *eventNode) Clone() Node   { return newEventNode(e.frames) }
func (e *eventNode) Destroy()      {}

func (e *eventNode) RecomputeTime(*beat.Beat) {}

func (e *eventNode) Render(req Request) *Message {
	msg := NewMessage(e.Format(), req.Frames)
	if req.Frames > 5 {
		msg.Events = append(msg.Events, Event{Kind: NoteOn, Delay: 5, Note: 60})
	}
	return msg
}

func assertRun(t *testing.T, msg *Message, ch, from, to int, want float32) {
	t.Helper()

	for f := from; f < to; f++ {
		for c := range ch {
			if got := msg.Samples[f*ch+c]; got != want {
				t.Fatalf("frame %d ch %d = %v, want %v", f, c, got, want)
			}
		}
	}
}
