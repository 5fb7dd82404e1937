// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"path/filepath"
	"sync/atomic"

	"github.com/ik5/audtl/beat"
	"github.com/ik5/audtl/timeline"
)

// Node plays a Source on a timeline.
type Node struct {
	*timeline.Base

	cache *Cache
	src   atomic.Pointer[Source]
}

// NewNode opens path in cache and wraps it in a node named after the file.
func NewNode(cache *Cache, path string, opts ...SourceOption) (*Node, error) {
	src, err := cache.Open(path, opts...)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Base:  timeline.NewBase(cache.Format(), filepath.Base(path)),
		cache: cache,
	}
	n.src.Store(src)
	return n, nil
}

// Source is nil once the node is destroyed.
func (n *Node) Source() *Source { return n.src.Load() }

func (n *Node) Path() string {
	if src := n.Source(); src != nil {
		return src.Path()
	}
	return ""
}

// Rename switches the node to another file, keeping the requested length
// and the amplitude. A source only this node uses is re-pointed in place,
// so a lazy source keeps its decoder slot and multiplier.
func (n *Node) Rename(path string) error {
	old := n.Source()
	if old != nil && n.cache.sole(old, path) {
		old.Rename(path)
		n.Changed()
		return nil
	}

	key := newKey(path, nil)
	if old != nil {
		key.frames = old.key.frames
	}

	src, created, err := n.cache.open(key)
	if err != nil {
		return err
	}
	if created && old != nil {
		src.SetAmplitude(old.Amplitude())
	}

	if prev := n.src.Swap(src); prev != nil {
		n.cache.Release(prev)
	}
	n.Changed()
	return nil
}

func (n *Node) Duration() int {
	frames := 0
	if src := n.Source(); src != nil {
		frames = src.Frames()
	}
	return n.DurationOr(frames)
}

func (n *Node) Render(req timeline.Request) *timeline.Message {
	src := n.Source()
	if src == nil {
		return timeline.RenderLeaf(n, req, 0, silence)
	}

	src.Load()
	return timeline.RenderLeaf(n, req, src.Frames(), func(from, count int) *timeline.Message {
		msg := timeline.NewMessage(n.Format(), count)
		src.CopyRange(msg.Samples, from)
		return msg
	})
}

// Clone shares the source with the original node.
func (n *Node) Clone() timeline.Node {
	c := &Node{
		Base:  timeline.NewBase(n.Format(), n.Name()),
		cache: n.cache,
	}
	if src := n.Source(); src != nil {
		n.cache.acquire(src)
		c.src.Store(src)
	}
	n.CopyStateTo(c.Base)
	return c
}

func (n *Node) Destroy() {
	if src := n.src.Swap(nil); src != nil {
		n.cache.Release(src)
	}
}

func (n *Node) RecomputeTime(*beat.Beat) {}

func silence(int, int) *timeline.Message { return nil }
