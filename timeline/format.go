// SPDX-License-Identifier: EPL-2.0

package timeline

// Format is the process-wide stream layout every node renders in.
type Format struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// DefaultFormat is 44.1 kHz stereo in 1024-frame buffers.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2, FramesPerBuffer: 1024}

// Samples is the interleaved length of frames frames.
func (f Format) Samples(frames int) int { return frames * f.Channels }

// Bytes is the in-memory size of frames float32 frames.
func (f Format) Bytes(frames int) int64 { return int64(frames) * int64(f.Channels) * 4 }

// Frames is the number of whole frames in n interleaved samples.
func (f Format) Frames(n int) int {
	if f.Channels <= 0 {
		return 0
	}
	return n / f.Channels
}
