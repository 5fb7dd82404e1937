// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Conform adapts src to the given sample rate and channel count.
// The channel mapping runs before resampling.
func Conform(src Source, sampleRate, channels int) Source {
	out := src
	if out.Channels() != channels {
		out = NewChannelMixer(out, channels)
	}
	if out.SampleRate() != sampleRate {
		out = NewResampler(out, sampleRate)
	}
	return out
}

// SeekFrames moves src to frame. Sources without FrameSeeker are assumed
// to sit at frame zero and are advanced by reading and discarding.
func SeekFrames(src Source, frame int64) error {
	if s, ok := src.(FrameSeeker); ok {
		return s.SeekFrame(frame)
	}

	ch := src.Channels()
	buf := make([]float32, 1024*ch)
	left := frame * int64(ch)

	for left > 0 {
		chunk := buf
		if int64(len(chunk)) > left {
			chunk = chunk[:left]
		}

		n, err := src.ReadSamples(chunk)
		left -= int64(n)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("skip frames: %w", err)
		}
		if n == 0 {
			return ErrNotSeekable
		}
	}

	return nil
}

// ReadFull reads until dst is filled or the stream ends.
// It returns io.EOF only when dst could not be filled.
func ReadFull(src Source, dst []float32) (int, error) {
	total := 0
	stalls := 0

	for total < len(dst) {
		n, err := src.ReadSamples(dst[total:])
		total += n
		if err == io.EOF {
			return total, io.EOF
		}
		if err != nil {
			return total, fmt.Errorf("read full: %w", err)
		}

		if n == 0 {
			stalls++
			if stalls > 8 {
				return total, io.ErrNoProgress
			}
			continue
		}
		stalls = 0
	}

	return total, nil
}
