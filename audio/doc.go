// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM stream primitives the decoders and the
// timeline are built on.
//
// # Source Interface
//
// Every decoder and stream processor implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in [-1, 1]. ReadSamples returns
// the number of values written, and io.EOF once the stream is drained.
//
// Sources may also implement Lengther (total frame count) and FrameSeeker
// (absolute frame positioning). SeekFrames falls back to reading and
// discarding when a source cannot seek.
//
// # Conforming Streams
//
// Conform adapts any source to the engine's sample rate and channel count
// by chaining a ChannelMixer and a cubic Resampler:
//
//	src = audio.Conform(src, 44100, 2)
//	buf := make([]float32, 2048)
//	n, err := audio.ReadFull(src, buf)
//
// # Format Registry
//
// A Registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("kick.wav")
package audio
