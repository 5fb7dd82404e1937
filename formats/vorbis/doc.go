// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Seekable inputs expose their length in frames and support
// audio.FrameSeeker, which the file cache uses to decode sub-ranges of long
// files on demand.
//
//	f, _ := os.Open("pad.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    // handle
//	}
//	defer src.Close()
//
//	src.(audio.FrameSeeker).SeekFrame(48000)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package vorbis
