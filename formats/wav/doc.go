// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// The decoder handles 8, 16, 24 and 32-bit PCM with any channel count and
// sample rate. Decoded sources report their length in frames and can seek
// to an absolute frame, which the file cache relies on for lazy playback of
// long files:
//
//	f, _ := os.Open("loop.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // handle
//	}
//	defer src.Close() // closes f
//
//	src.(audio.FrameSeeker).SeekFrame(44100)
//
// WriteWAV and Writer encode float samples back to PCM; the writer must be
// seekable so the RIFF sizes can be patched on Close.
package wav
