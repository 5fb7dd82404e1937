// SPDX-License-Identifier: EPL-2.0

package timeline

// Request describes a render call. Build one with Frames:
//
//	timeline.Frames(512).From(0).WithoutLoop()
type Request struct {
	Frames int

	// Start is used instead of the node's cursor when HasStart is set.
	// Renders with an explicit start leave the cursor untouched.
	Start    int
	HasStart bool

	NoLoop       bool
	LoopOverride LoopMode
	HasOverride  bool

	IgnorePause bool
}

func Frames(n int) Request { return Request{Frames: n} }

func (r Request) From(start int) Request {
	r.Start, r.HasStart = start, true
	return r
}

func (r Request) WithoutLoop() Request {
	r.NoLoop = true
	return r
}

// WithLoop forces a loop mode instead of the node's own.
func (r Request) WithLoop(m LoopMode) Request {
	r.LoopOverride, r.HasOverride = m, true
	return r
}

// Unpausable renders even when the node is paused.
func (r Request) Unpausable() Request {
	r.IgnorePause = true
	return r
}

// startFor resolves the start frame against a cursor.
func (r Request) startFor(cursor int) int {
	if r.HasStart {
		return r.Start
	}
	return cursor
}

func (r Request) loopFor(own LoopMode) LoopMode {
	if r.HasOverride {
		return r.LoopOverride
	}
	return own
}
