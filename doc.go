// SPDX-License-Identifier: EPL-2.0

// Package audtl is a real-time audio timeline engine.
//
// A timeline is a tree of nodes rendered block by block. Leaves hold audio
// (in-memory buffers, cached audio files, keypad voices) and groups mix
// their children at positions given in samples, beats or seconds.
//
// # Packages
//
//   - timeline: the node model, groups, loop modes and render requests
//   - filesource: a shared, budgeted cache of decoded audio files and the
//     file-backed leaf node
//   - keypad: a group of short-lived voices triggered at the cursor
//   - beat: tempo and zoom conversions between samples, beats and pixels
//   - project: YAML save and load of a group tree
//   - config: engine settings from the environment
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders
//
// # Quick Start
//
//	arena := timeline.NewArena()
//	b := beat.New(120, 44100, 0.01)
//	cache := filesource.NewCache(filesource.NewFormatOpener(timeline.DefaultFormat), timeline.DefaultFormat)
//
//	root := timeline.NewGroup(arena, b, timeline.DefaultFormat, "song")
//	drums, _ := filesource.NewNode(cache, "drums.wav")
//	root.Add(drums, 0, timeline.UnitBeat)
//
//	for {
//		msg := root.Render(timeline.Frames(1024))
//		play(msg.Samples)
//	}
//
// # Offline Rendering
//
// Bounce renders a node into memory and BounceToWAV streams its full
// duration into a PCM WAV file. Both use explicit starts, so the node's
// cursor is left where it was.
package audtl
