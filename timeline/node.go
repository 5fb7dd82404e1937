// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ik5/audtl/beat"
)

// Node is a unit of the render tree.
type Node interface {
	ID() uuid.UUID
	Name() string
	SetName(name string)
	Format() Format

	// Duration is the complete consumable length in frames.
	Duration() int
	// SetDuration assigns an explicit length; a negative n clears it.
	SetDuration(n int)

	Position() int
	SetPosition(pos int)
	Paused() bool
	SetPaused(paused bool)
	Loop() LoopMode
	SetLoop(mode LoopMode)

	// Parent is the group that currently owns the node, if any.
	Parent() *Group

	// Render produces exactly req.Frames frames, or nil while paused.
	Render(req Request) *Message
	// Clone returns an independent copy with fresh playback state.
	Clone() Node
	Destroy()
	RecomputeTime(b *beat.Beat)

	base() *Base
}

// Base holds the per-instance playback state shared by every node type.
// Node implementations embed a *Base created by NewBase.
type Base struct {
	id     uuid.UUID
	format Format

	nameMu sync.RWMutex
	name   string

	position atomic.Int64
	paused   atomic.Bool
	loop     atomic.Int32
	assigned atomic.Int64
	owner    atomic.Pointer[Group]
}

func NewBase(format Format, name string) *Base {
	b := &Base{
		id:     uuid.New(),
		format: format,
		name:   name,
	}
	b.assigned.Store(-1)
	return b
}

func (b *Base) base() *Base { return b }

func (b *Base) ID() uuid.UUID  { return b.id }
func (b *Base) Format() Format { return b.format }

func (b *Base) Name() string {
	b.nameMu.RLock()
	defer b.nameMu.RUnlock()
	return b.name
}

func (b *Base) SetName(name string) {
	b.nameMu.Lock()
	b.name = name
	b.nameMu.Unlock()
}

func (b *Base) Position() int { return int(b.position.Load()) }

func (b *Base) SetPosition(pos int) { b.position.Store(int64(max(pos, 0))) }

func (b *Base) Paused() bool          { return b.paused.Load() }
func (b *Base) SetPaused(paused bool) { b.paused.Store(paused) }

func (b *Base) Loop() LoopMode        { return LoopMode(b.loop.Load()) }
func (b *Base) SetLoop(mode LoopMode) { b.loop.Store(int32(mode)) }

func (b *Base) Parent() *Group { return b.owner.Load() }

// AssignedDuration reports the explicit duration, if one was set.
func (b *Base) AssignedDuration() (int, bool) {
	n := b.assigned.Load()
	return int(n), n >= 0
}

// SetDuration assigns an explicit duration and lets the owning group
// recompute its own. A negative n clears the assignment.
func (b *Base) SetDuration(n int) {
	b.assigned.Store(int64(max(n, -1)))
	b.Changed()
}

// DurationOr is the assigned duration, or natural when none is set.
func (b *Base) DurationOr(natural int) int {
	if n, ok := b.AssignedDuration(); ok {
		return n
	}
	return natural
}

// Changed tells the owning group that this node's length may have changed.
func (b *Base) Changed() {
	if g := b.owner.Load(); g != nil {
		g.calculateDuration()
	}
}

// CopyStateTo copies the name, loop mode and assigned duration to dst.
// The cursor and pause flag are per instance and are not copied.
func (b *Base) CopyStateTo(dst *Base) {
	dst.SetName(b.Name())
	dst.SetLoop(b.Loop())
	dst.assigned.Store(b.assigned.Load())
}

// Detach clears the owner back-reference.
func (b *Base) Detach() { b.owner.Store(nil) }

// Advance moves the cursor to pos unless req carried an explicit start.
func (b *Base) Advance(req Request, pos int) {
	if !req.HasStart {
		b.SetPosition(pos)
	}
}

// SkipRender reports whether req should yield no samples because the node is paused.
func (b *Base) SkipRender(req Request) bool {
	return b.Paused() && !req.IgnorePause
}
