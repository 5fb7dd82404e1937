// SPDX-License-Identifier: EPL-2.0

package audtl

import (
	"fmt"
	"io"

	"github.com/ik5/audtl/formats/wav"
	"github.com/ik5/audtl/timeline"
)

// Bounce renders frames frames of n starting at 0 and returns them
// interleaved. Looping and pause are ignored. bufferSize is the block size
// in frames; values < 1 use the format's FramesPerBuffer.
func Bounce(n timeline.Node, format timeline.Format, frames, bufferSize int) []float32 {
	frames = max(frames, 0)
	out := make([]float32, 0, format.Samples(frames))

	bounce(n, format, frames, bufferSize, func(block []float32) error {
		out = append(out, block...)
		return nil
	})

	return out
}

// BounceToWAV writes the full duration of n to w as PCM WAV at the given
// bit depth (16, 24 or 32).
func BounceToWAV(w io.WriteSeeker, n timeline.Node, format timeline.Format, bitDepth int) error {
	enc, err := wav.NewWriter(w, format.SampleRate, format.Channels, bitDepth)
	if err != nil {
		return err
	}

	if err := bounce(n, format, n.Duration(), format.FramesPerBuffer, enc.Write); err != nil {
		return fmt.Errorf("bounce %q: %w", n.Name(), err)
	}

	return enc.Close()
}

func bounce(n timeline.Node, format timeline.Format, frames, bufferSize int, emit func([]float32) error) error {
	if bufferSize < 1 {
		bufferSize = format.FramesPerBuffer
	}
	bufferSize = max(bufferSize, 1)
	buf := make([]float32, format.Samples(bufferSize))

	for pos := 0; pos < frames; pos += bufferSize {
		size := min(bufferSize, frames-pos)
		msg := n.Render(timeline.Frames(size).From(pos).WithoutLoop().Unpausable())

		block := buf[:format.Samples(size)]
		clear(block)
		if msg != nil {
			copy(block, msg.Samples)
		}
		if err := emit(block); err != nil {
			return err
		}
	}

	return nil
}
