// SPDX-License-Identifier: EPL-2.0

// Package timeline implements the render tree: composable nodes that, on
// demand, produce fixed-size blocks of interleaved float32 samples together
// with note events and transport markers.
//
// # Nodes
//
// Every node embeds a *Base carrying its per-instance playback state
// (cursor, pause flag, loop mode, assigned duration) and is driven through
// Render:
//
//	msg := root.Render(timeline.Frames(1024))
//	if msg == nil {
//	    // paused
//	}
//
// Render always returns exactly the requested number of frames,
// silence-padded where no content covers the window. A nil message means the
// node is paused, which callers can tell apart from silence.
//
// # Groups
//
// A Group positions children on a timeline, mixes them by plain addition and
// optionally loops its content (LoopInfinite wraps forever; LoopStretch keeps
// cycling but stops at the assigned duration). Child lists live in an Arena;
// linked instances created by Copy(true) or LinkTo share their master's list
// and therefore see every edit to it immediately, while keeping their own
// cursor, pause flag, loop mode and assigned duration.
//
// A group's lock is held only around single list accesses and never across
// a child's Render, so nested groups cannot deadlock. A child removed while
// a render is in flight is skipped.
package timeline
