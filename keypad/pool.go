// SPDX-License-Identifier: EPL-2.0

package keypad

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/audtl/beat"
	"github.com/ik5/audtl/timeline"
)

// Record is the onset and offset of one voice. End is zero while the
// voice still sounds.
type Record struct {
	Voice   uuid.UUID
	Note    int
	Channel int
	Start   time.Time
	End     time.Time
}

type Option func(*Pool)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// Pool is a group of voices that removes each voice once it has played.
type Pool struct {
	*timeline.Group

	log *slog.Logger
	now func() time.Time

	mu        sync.Mutex
	voices    []*Voice
	recording bool
	history   map[uuid.UUID]*Record
}

func NewPool(arena *timeline.Arena, b *beat.Beat, format timeline.Format, opts ...Option) *Pool {
	p := &Pool{
		Group:   timeline.NewGroup(arena, b, format, "keypad"),
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
		history: make(map[uuid.UUID]*Record),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Trigger starts a voice playing a copy of samples from the next render.
// A negative channel produces no note events.
func (p *Pool) Trigger(samples []float32, note, channel int) *Voice {
	f := p.Format()
	limit := f.Samples(int(MaxVoiceLength.Seconds() * float64(f.SampleRate)))
	data := slices.Clone(samples[:min(len(samples), limit)])

	v := newVoice(f, data, note, channel)
	p.Add(v, float64(p.playhead()), timeline.UnitSample)

	p.mu.Lock()
	p.voices = append(p.voices, v)
	if p.recording {
		p.history[v.ID()] = &Record{Voice: v.ID(), Note: note, Channel: channel, Start: p.now()}
	}
	p.mu.Unlock()

	return v
}

// playhead is where the next render of the pool starts. Parents render
// their children with explicit starts and leave their cursors alone, so a
// nested pool reads the window off the root cursor, less its offset.
func (p *Pool) playhead() int {
	var n timeline.Node = p
	offset := 0
	for g := p.Parent(); g != nil; g = g.Parent() {
		at, ok := g.PositionOf(n)
		if !ok {
			return p.Position()
		}
		offset += at
		n = g
	}
	return max(n.Position()-offset, 0)
}

// Voices lists the sounding voices.
func (p *Pool) Voices() []*Voice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.voices)
}

// Render mixes the voices, moves each voice cursor along with the pool
// and reclaims the voices that reached their end.
func (p *Pool) Render(req timeline.Request) *timeline.Message {
	start := p.Position()
	if req.HasStart {
		start = req.Start
	}

	msg := p.Group.Render(req)
	if msg == nil {
		return nil
	}

	end := start + req.Frames
	for _, v := range p.Voices() {
		at, ok := p.PositionOf(v)
		if !ok {
			continue
		}
		v.SetPosition(min(max(end-at, 0), v.Duration()))
	}

	p.reclaim()
	return msg
}

func (p *Pool) reclaim() {
	p.mu.Lock()
	var done []*Voice
	p.voices = slices.DeleteFunc(p.voices, func(v *Voice) bool {
		if !v.Stopped() {
			return false
		}
		done = append(done, v)
		if r, ok := p.history[v.ID()]; ok && p.recording {
			r.End = p.now()
		}
		return true
	})
	p.mu.Unlock()

	for _, v := range done {
		p.Remove(v)
		v.Destroy()
		p.log.Debug("voice reclaimed", "note", v.note, "voice", v.ID())
	}
}

// Release fades v out over a quarter of a second. Releasing a stopped or
// already released voice does nothing.
func (p *Pool) Release(v *Voice) {
	v.release(p.Format().SampleRate)
}

// ReleaseNote releases every sounding voice playing note.
func (p *Pool) ReleaseNote(note int) {
	for _, v := range p.Voices() {
		if v.note == note {
			p.Release(v)
		}
	}
}

// SetRecording starts or stops recording. Stopping returns the records
// gathered since the last start, ordered by onset, and clears them.
func (p *Pool) SetRecording(enabled bool) []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.recording = enabled
	if enabled {
		clear(p.history)
		return nil
	}

	out := make([]Record, 0, len(p.history))
	for _, r := range p.history {
		out = append(out, *r)
	}
	clear(p.history)

	slices.SortFunc(out, func(a, b Record) int { return a.Start.Compare(b.Start) })
	return out
}

func (p *Pool) Recording() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recording
}

// Clone returns an empty pool sharing the arena, tempo and format.
func (p *Pool) Clone() timeline.Node {
	c := NewPool(p.Arena(), p.Beat(), p.Format(), WithLogger(p.log), WithClock(p.now))
	c.SetName(p.Name())
	return c
}

func (p *Pool) Destroy() {
	p.mu.Lock()
	p.voices = nil
	p.mu.Unlock()

	p.Group.Destroy()
}
