// SPDX-License-Identifier: EPL-2.0

package audtl_test

import (
	"fmt"

	"github.com/ik5/audtl"
	"github.com/ik5/audtl/beat"
	"github.com/ik5/audtl/timeline"
)

// Example_bounce mixes two clips in a group and renders the result offline.
func Example_bounce() {
	format := timeline.Format{SampleRate: 8000, Channels: 1, FramesPerBuffer: 256}
	b := beat.New(120, 8000, 0.01)

	root := timeline.NewGroup(timeline.NewArena(), b, format, "demo")
	defer root.Destroy()

	kick := timeline.NewSamples(format, make([]float32, 4000), "kick")
	snare := timeline.NewSamples(format, make([]float32, 4000), "snare")
	root.Add(kick, 0, timeline.UnitBeat)
	root.Add(snare, 1, timeline.UnitBeat) // one beat at 120 bpm is 4000 samples

	out := audtl.Bounce(root, format, root.Duration(), 0)
	fmt.Printf("%d frames, %.1f seconds\n", len(out), b.SamplesToSeconds(len(out)))
	// Output: 8000 frames, 1.0 seconds
}
