// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/ik5/audtl/beat"
)

// Group positions child nodes on a timeline and mixes them.
type Group struct {
	*Base

	arena  *Arena
	beat   atomic.Pointer[beat.Beat]
	list   atomic.Uint64
	linked atomic.Bool
}

// Child is a snapshot of one child and its start time.
type Child struct {
	Node Node
	At   TimeSource
}

func NewGroup(arena *Arena, b *beat.Beat, format Format, name string) *Group {
	g := &Group{Base: NewBase(format, name), arena: arena}
	g.beat.Store(b)
	g.list.Store(uint64(arena.create(g)))
	return g
}

type grouper interface{ group() *Group }

func (g *Group) group() *Group { return g }

// AsGroup returns the Group behind n, including types that embed one.
func AsGroup(n Node) *Group {
	if gr, ok := n.(grouper); ok {
		return gr.group()
	}
	return nil
}

func (g *Group) Arena() *Arena    { return g.arena }
func (g *Group) Beat() *beat.Beat { return g.beat.Load() }
func (g *Group) ListID() ListID   { return ListID(g.list.Load()) }
func (g *Group) IsLinked() bool   { return g.linked.Load() }
func (g *Group) lst() *childList  { return g.arena.get(g.ListID()) }
func (g *Group) Duration() int    { return g.DurationOr(g.InclusiveDuration()) }
func (g *Group) Clone() Node      { return g.Copy(false) }
func (g *Group) String() string   { return fmt.Sprintf("group %q", g.Name()) }
func (g *Group) Len() int         { return len(g.snapshot()) }
func (g *Group) snapshot() []entry {
	if l := g.lst(); l != nil {
		return l.snapshot()
	}
	return nil
}

// InclusiveDuration is the natural length of the content:
// the latest child end, ignoring any assigned duration.
func (g *Group) InclusiveDuration() int {
	if l := g.lst(); l != nil {
		return l.length()
	}
	return 0
}

// Master is the group whose children this instance borrows, or nil.
func (g *Group) Master() *Group {
	if !g.IsLinked() {
		return nil
	}
	if l := g.lst(); l != nil {
		l.mu.RLock()
		defer l.mu.RUnlock()
		return l.master
	}
	return nil
}

// LinkedInstances lists the groups borrowing this master's children.
func (g *Group) LinkedInstances() []*Group {
	if g.IsLinked() {
		return nil
	}
	if l := g.lst(); l != nil {
		l.mu.RLock()
		defer l.mu.RUnlock()
		return slices.Clone(l.instances)
	}
	return nil
}

// reaches reports whether rendering g can visit the child list id.
func (g *Group) reaches(id ListID) bool {
	if g.ListID() == id {
		return true
	}
	for _, e := range g.snapshot() {
		if c := AsGroup(e.node); c != nil && c.reaches(id) {
			return true
		}
	}
	return false
}

// Add inserts n at the given time. It returns false when n is already a
// child or when n would contain this group.
func (g *Group) Add(n Node, at float64, unit Unit) bool {
	if c := AsGroup(n); c != nil && c.reaches(g.ListID()) {
		return false
	}

	l := g.lst()
	if l == nil {
		return false
	}

	l.mu.Lock()
	if l.index(n) >= 0 {
		l.mu.Unlock()
		return false
	}
	l.entries = append(l.entries, entry{node: n, at: NewTimeSource(at, unit, g.Beat())})
	l.mu.Unlock()

	n.base().owner.Store(g)
	g.calculateDuration()
	return true
}

// Remove detaches n. It returns false when n is not a child.
func (g *Group) Remove(n Node) bool {
	l := g.lst()
	if l == nil {
		return false
	}

	l.mu.Lock()
	i := l.index(n)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	l.mu.Unlock()

	n.base().Detach()
	g.calculateDuration()
	return true
}

// update applies fn to the start time of n and recomputes the duration.
func (g *Group) update(n Node, fn func(*TimeSource, *beat.Beat)) bool {
	l := g.lst()
	if l == nil {
		return false
	}

	l.mu.Lock()
	i := l.index(n)
	if i >= 0 {
		fn(&l.entries[i].at, g.Beat())
	}
	l.mu.Unlock()

	if i < 0 {
		return false
	}
	g.calculateDuration()
	return true
}

// SetPositionOf moves child n to value expressed in unit.
func (g *Group) SetPositionOf(n Node, value float64, unit Unit) bool {
	return g.update(n, func(t *TimeSource, b *beat.Beat) {
		t.SetUnit(unit, b)
		t.SetValue(value, b)
	})
}

// SetPositionSamples moves child n to an absolute sample position,
// keeping the unit it is expressed in.
func (g *Group) SetPositionSamples(n Node, samples int) bool {
	return g.update(n, func(t *TimeSource, b *beat.Beat) {
		t.SetSampleCount(samples, b)
	})
}

// Stretch makes child n end at newEnd by assigning it a duration.
func (g *Group) Stretch(n Node, newEnd int) bool {
	start, ok := g.PositionOf(n)
	if !ok {
		return false
	}

	n.SetDuration(max(newEnd-start, 0))
	g.calculateDuration()
	return true
}

func (g *Group) PositionOf(n Node) (int, bool) {
	t, ok := g.TimeOf(n)
	return t.SampleCount(), ok
}

func (g *Group) TimeOf(n Node) (TimeSource, bool) {
	for _, e := range g.snapshot() {
		if e.node == n {
			return e.at, true
		}
	}
	return TimeSource{}, false
}

func (g *Group) Children() []Child {
	entries := g.snapshot()
	out := make([]Child, len(entries))
	for i, e := range entries {
		out[i] = Child{Node: e.node, At: e.at}
	}
	return out
}

// HasChildLinkedTo reports whether a direct child is a linked instance of master.
func (g *Group) HasChildLinkedTo(master *Group) bool {
	for _, e := range g.snapshot() {
		if c := AsGroup(e.node); c != nil && c.Master() == master {
			return true
		}
	}
	return false
}

// SetChildName renames child n unless another child already uses name.
func (g *Group) SetChildName(n Node, name string) bool {
	for _, e := range g.snapshot() {
		if e.node != n && e.node.Name() == name {
			return false
		}
	}
	n.SetName(name)
	return true
}

// calculateDuration recomputes the shared inclusive duration and notifies
// the parents of the master and of every linked instance.
func (g *Group) calculateDuration() {
	l := g.lst()
	if l == nil {
		return
	}

	dur := 0
	for i := 0; ; i++ {
		e, ok := l.at(i)
		if !ok {
			break
		}
		dur = max(dur, e.at.SampleCount()+e.node.Duration())
	}

	l.mu.Lock()
	l.inclusive = dur
	l.mu.Unlock()

	for _, s := range l.sharers() {
		s.Changed()
	}
}

func (g *Group) Render(req Request) *Message {
	if g.SkipRender(req) {
		return nil
	}

	start := req.startFor(g.Position())

	if mode := req.loopFor(g.Loop()); mode != LoopNone && !req.NoLoop {
		period := g.InclusiveDuration()
		if req.HasOverride {
			period = g.Duration()
		}

		msg, pos := renderLoop(g.Format(), mode, start, req.Frames, period, g.Duration(), g.mix)
		g.Advance(req, pos)
		msg.Mark(g, pos)
		return msg
	}

	msg := g.mix(start, req.Frames)
	end := start + req.Frames
	g.Advance(req, min(end, g.Duration()))
	msg.Mark(g, end)
	return msg
}

// mix sums every child overlapping [start, start+frames).
func (g *Group) mix(start, frames int) *Message {
	f := g.Format()
	msg := NewMessage(f, frames)

	l := g.lst()
	if l == nil {
		return msg
	}

	for i := 0; ; i++ {
		e, ok := l.at(i)
		if !ok {
			break
		}

		at := e.at.SampleCount()
		if start+frames <= at {
			continue
		}

		dur := e.node.Duration()
		if e.node.Loop() == LoopInfinite {
			if dur <= 0 {
				continue
			}
			if at < start {
				at += (start - at) / dur * dur
			}
		} else if at+dur <= start {
			continue
		}

		pad := max(at-start, 0)
		seg := e.node.Render(Frames(frames - pad).From(start + pad - at))
		msg.MixAt(seg, pad, f.Channels)
	}

	return msg
}

// Copy returns a deep copy, or with linked set a new instance sharing this
// group's children. Copying a linked instance always yields another
// instance of the same master.
func (g *Group) Copy(linked bool) *Group {
	if m := g.Master(); m != nil {
		c := m.Copy(true)
		g.CopyStateTo(c.Base)
		return c
	}

	c := &Group{Base: NewBase(g.Format(), g.Name()), arena: g.arena}
	c.beat.Store(g.Beat())
	g.CopyStateTo(c.Base)

	l := g.lst()
	if l != nil && linked {
		c.list.Store(uint64(g.ListID()))
		c.linked.Store(true)

		l.mu.Lock()
		l.instances = append(l.instances, c)
		l.mu.Unlock()
		return c
	}

	id := g.arena.create(c)
	c.list.Store(uint64(id))
	if l == nil {
		return c
	}

	var entries []entry
	for _, e := range l.snapshot() {
		child := e.node.Clone()
		child.base().owner.Store(c)
		entries = append(entries, entry{node: child, at: e.at})
	}

	cl := g.arena.get(id)
	cl.mu.Lock()
	cl.entries = entries
	cl.inclusive = l.length()
	cl.mu.Unlock()
	return c
}

// LinkTo turns an empty, unlinked group into a linked instance of master.
func (g *Group) LinkTo(master *Group) error {
	switch {
	case master == nil || master == g:
		return fmt.Errorf("%w: group cannot link to itself", ErrInvalidLink)
	case g.IsLinked():
		return fmt.Errorf("%w: %q is already linked", ErrInvalidLink, g.Name())
	case master.IsLinked():
		return fmt.Errorf("%w: %q is itself a linked instance", ErrInvalidLink, master.Name())
	case master.arena != g.arena:
		return fmt.Errorf("%w: groups belong to different arenas", ErrInvalidLink)
	case g.Len() > 0:
		return fmt.Errorf("%w: %q already has children", ErrInvalidLink, g.Name())
	case master.reaches(g.ListID()):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidLink, master.Name(), g.Name())
	}

	l := master.lst()
	if l == nil {
		return fmt.Errorf("%w: %q was destroyed", ErrInvalidLink, master.Name())
	}

	g.arena.drop(g.ListID())
	g.list.Store(uint64(master.ListID()))
	g.linked.Store(true)

	l.mu.Lock()
	l.instances = append(l.instances, g)
	l.mu.Unlock()

	g.Changed()
	return nil
}

// Destroy releases the group. A master destroys its linked instances and
// then its children; an instance only detaches from its master.
func (g *Group) Destroy() {
	l := g.lst()
	if l == nil {
		return
	}

	if g.IsLinked() {
		l.mu.Lock()
		l.instances = slices.DeleteFunc(l.instances, func(x *Group) bool { return x == g })
		l.mu.Unlock()
		g.list.Store(0)
		return
	}

	l.mu.Lock()
	instances, entries := l.instances, l.entries
	l.instances, l.entries, l.inclusive = nil, nil, 0
	l.mu.Unlock()

	for _, inst := range instances {
		inst.Destroy()
	}
	for _, e := range entries {
		e.node.base().Detach()
		e.node.Destroy()
	}

	g.arena.drop(g.ListID())
	g.list.Store(0)
}

// RecomputeTime re-resolves every start time against b, depth first.
func (g *Group) RecomputeTime(b *beat.Beat) {
	g.beat.Store(b)

	if m := g.Master(); m != nil {
		m.RecomputeTime(b)
		return
	}

	l := g.lst()
	if l == nil {
		return
	}

	l.mu.Lock()
	children := make([]Node, len(l.entries))
	for i := range l.entries {
		l.entries[i].at.Recompute(b)
		children[i] = l.entries[i].node
	}
	l.mu.Unlock()

	for _, c := range children {
		c.RecomputeTime(b)
	}
	g.calculateDuration()
}
