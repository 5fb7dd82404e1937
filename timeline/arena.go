// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"slices"
	"sync"
)

// ListID names a child list inside an Arena.
type ListID uint64

// Arena owns the child lists of every group built on it. A master group
// owns its list by id; linked instances hold the same id.
type Arena struct {
	mu    sync.Mutex
	next  ListID
	lists map[ListID]*childList
}

func NewArena() *Arena {
	return &Arena{lists: make(map[ListID]*childList)}
}

// Len is the number of live child lists.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.lists)
}

func (a *Arena) create(master *Group) ListID {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.next++
	a.lists[a.next] = &childList{master: master}
	return a.next
}

func (a *Arena) get(id ListID) *childList {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lists[id]
}

func (a *Arena) drop(id ListID) {
	a.mu.Lock()
	delete(a.lists, id)
	a.mu.Unlock()
}

type entry struct {
	node Node
	at   TimeSource
}

// childList is the shared content of a master group and its linked
// instances. mu guards every field and is never held across a render.
type childList struct {
	mu        sync.RWMutex
	entries   []entry
	inclusive int
	master    *Group
	instances []*Group
}

// at returns entry i, or false once i runs past the end.
func (l *childList) at(i int) (entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i >= len(l.entries) {
		return entry{}, false
	}
	return l.entries[i], true
}

func (l *childList) index(n Node) int {
	return slices.IndexFunc(l.entries, func(e entry) bool { return e.node == n })
}

func (l *childList) snapshot() []entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

func (l *childList) length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inclusive
}

// sharers is the master followed by its linked instances.
func (l *childList) sharers() []*Group {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Group, 0, 1+len(l.instances))
	if l.master != nil {
		out = append(out, l.master)
	}
	return append(out, l.instances...)
}
