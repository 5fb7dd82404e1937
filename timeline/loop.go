// SPDX-License-Identifier: EPL-2.0

package timeline

import (
	"fmt"
	"strings"
)

type LoopMode int32

const (
	LoopNone LoopMode = iota
	// LoopInfinite wraps the read position around the content length forever.
	LoopInfinite
	// LoopStretch cycles the content but stops emitting at the assigned duration.
	LoopStretch
)

func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case LoopInfinite:
		return "infinite"
	case LoopStretch:
		return "stretch"
	default:
		return fmt.Sprintf("LoopMode(%d)", int32(m))
	}
}

func ParseLoopMode(s string) (LoopMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LoopNone, nil
	case "infinite":
		return LoopInfinite, nil
	case "stretch":
		return LoopStretch, nil
	}
	return LoopNone, fmt.Errorf("unknown loop mode %q", s)
}

// SegmentFunc renders n frames of content starting at from, without looping.
// It may return nil for silence.
type SegmentFunc func(from, n int) *Message

// renderLoop fills frames frames from periodic content of length period.
// In LoopStretch mode pos advances monotonically and emission stops at
// limit; the shortfall stays silent. It returns the message and the
// position after the last emitted frame.
func renderLoop(f Format, mode LoopMode, pos, frames, period, limit int, segment SegmentFunc) (*Message, int) {
	msg := NewMessage(f, frames)
	if period <= 0 {
		return msg, pos
	}

	filled := 0
	for filled < frames {
		var read int
		if mode == LoopStretch {
			if pos >= limit {
				break
			}
			read = wrap(pos, period)
		} else {
			pos = wrap(pos, period)
			read = pos
		}

		n := min(frames-filled, period-read)
		if mode == LoopStretch {
			n = min(n, limit-pos)
		}

		msg.MixAt(segment(read, n), filled, f.Channels)
		pos += n
		filled += n
	}

	return msg, pos
}

// wrap is a modulo that stays non-negative.
func wrap(pos, period int) int {
	r := pos % period
	if r < 0 {
		r += period
	}
	return r
}

// RenderLeaf implements Render for a node whose content is a flat run of
// content frames read through segment. It handles pausing, both loop modes,
// truncation to the node's duration and the cursor update.
func RenderLeaf(n Node, req Request, content int, segment SegmentFunc) *Message {
	b := n.base()
	if b.SkipRender(req) {
		return nil
	}

	f := b.Format()
	start := req.startFor(b.Position())
	dur := n.Duration()

	if mode := req.loopFor(b.Loop()); mode != LoopNone && !req.NoLoop {
		period := content
		if req.HasOverride {
			period = dur
		}

		msg, pos := renderLoop(f, mode, start, req.Frames, period, dur, segment)
		b.Advance(req, pos)
		msg.Mark(n, pos)
		return msg
	}

	msg := NewMessage(f, req.Frames)
	offset := max(-start, 0)
	from := max(start, 0)
	if count := min(req.Frames-offset, min(content, dur)-from); count > 0 {
		msg.MixAt(segment(from, count), offset, f.Channels)
	}

	end := start + req.Frames
	b.Advance(req, min(end, dur))
	msg.Mark(n, end)
	return msg
}
