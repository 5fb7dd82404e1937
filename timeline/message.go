// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"github.com/viterin/vek/vek32"
)

type EventKind uint8

const (
	NoteOn EventKind = iota + 1
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	default:
		return "unknown"
	}
}

// Event is a note event produced by a node during a render.
// Delay is in frames from the start of the returned buffer.
type Event struct {
	Kind    EventKind
	Delay   int
	Note    int
	Channel int
}

// Marker reports where a node's cursor stood at the end of a render.
type Marker struct {
	Node     Node
	Position int
}

// Message is the result of a render.
type Message struct {
	// Samples holds Frames interleaved frames.
	Samples []float32
	Frames  int
	Events  []Event
	Markers []Marker
}

// NewMessage returns a silent message of frames frames.
func NewMessage(f Format, frames int) *Message {
	frames = max(frames, 0)
	return &Message{
		Samples: make([]float32, f.Samples(frames)),
		Frames:  frames,
	}
}

// MixAt adds src into m starting at frame offset. Event delays are shifted
// by offset; markers are carried over unchanged.
func (m *Message) MixAt(src *Message, offset, channels int) {
	if src == nil {
		return
	}

	frames := min(src.Frames, m.Frames-offset)
	if frames > 0 && offset >= 0 {
		dst := m.Samples[offset*channels : (offset+frames)*channels]
		vek32.Add_Inplace(dst, src.Samples[:len(dst)])
	}

	for _, ev := range src.Events {
		ev.Delay += offset
		m.Events = append(m.Events, ev)
	}
	m.Markers = append(m.Markers, src.Markers...)
}

// Mark appends a marker for n at pos.
func (m *Message) Mark(n Node, pos int) {
	m.Markers = append(m.Markers, Marker{Node: n, Position: pos})
}
