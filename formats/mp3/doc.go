// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// The decoder always produces interleaved 16-bit stereo converted to
// float32. When the input is seekable the source reports its length in
// frames and implements audio.FrameSeeker; otherwise Frames returns -1 and
// SeekFrame fails with audio.ErrNotSeekable.
package mp3
