// SPDX-License-Identifier: EPL-2.0

package keypad

import (
	"sync"
	"time"

	"github.com/ik5/audtl/timeline"
	"github.com/ik5/audtl/utils"
)

const (
	// MaxVoiceLength caps the buffer a voice plays.
	MaxVoiceLength = 10 * time.Minute

	releaseLength = 250 * time.Millisecond
	// releaseLead starts the fade this many frames behind the cursor.
	releaseLead = 20
)

var releaseShape = []utils.Breakpoint{
	{At: 0, Level: 1},
	{At: 0.25, Level: 0.75},
	{At: 0.5, Level: 0.5},
	{At: 1, Level: 0},
}

// Voice is one triggered note. It never loops.
type Voice struct {
	*timeline.Samples

	note    int
	channel int

	mu       sync.Mutex
	released bool
}

func newVoice(format timeline.Format, data []float32, note, channel int) *Voice {
	return &Voice{
		Samples: timeline.NewSamples(format, data, ""),
		note:    note,
		channel: channel,
	}
}

func (v *Voice) Note() int    { return v.note }
func (v *Voice) Channel() int { return v.channel }

// Stopped reports whether the cursor reached the end of the voice.
func (v *Voice) Stopped() bool { return v.Position() >= v.Duration() }

func (v *Voice) Released() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.released
}

// SetLoop is ignored; voices never loop.
func (v *Voice) SetLoop(timeline.LoopMode) {}

// Render plays the buffer and, for voices bound to a channel, reports a
// NoteOn where the window covers the first frame and a NoteOff where it
// covers the end.
func (v *Voice) Render(req timeline.Request) *timeline.Message {
	start := v.Position()
	if req.HasStart {
		start = req.Start
	}

	msg := v.Samples.Render(req.WithoutLoop())
	if msg == nil || v.channel < 0 {
		return msg
	}

	end := start + req.Frames
	if start <= 0 && end > 0 {
		msg.Events = append(msg.Events, timeline.Event{Kind: timeline.NoteOn, Delay: -start, Note: v.note, Channel: v.channel})
	}
	if dur := v.Duration(); start < dur && dur <= end {
		msg.Events = append(msg.Events, timeline.Event{Kind: timeline.NoteOff, Delay: dur - start, Note: v.note, Channel: v.channel})
	}
	return msg
}

// release fades the voice out from just behind its cursor. It runs once;
// later calls and calls on stopped voices do nothing.
func (v *Voice) release(sampleRate int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.released || v.Stopped() {
		return
	}
	v.released = true

	pos := v.Position()
	frames := v.Frames()
	if pos >= frames {
		v.SetDuration(pos)
		return
	}

	start := max(pos-releaseLead, 0)
	seg := min(frames-start, int(releaseLength.Seconds()*float64(sampleRate)))
	v.ShapeTail(start, utils.Envelope(seg, releaseShape...))
}

func (v *Voice) Clone() timeline.Node {
	return &Voice{
		Samples: v.Samples.Clone().(*timeline.Samples),
		note:    v.note,
		channel: v.channel,
	}
}
