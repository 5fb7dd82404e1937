// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audtl/utils"
)

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples and preserves the channel count.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// window holds t-1, t0, t+1, t+2 around the read position.
	window [4][]float32
	// real marks window slots holding decoded frames rather than edge copies.
	real   [4]bool
	primed bool
	frac   float64

	in           []float32
	inPos, inLen int
	eof          bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, 1024*channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// Frames reports the output length when the wrapped source knows its own.
func (r *Resampler) Frames() int64 {
	l, ok := r.src.(Lengther)
	if !ok {
		return -1
	}

	n := l.Frames()
	if n < 0 {
		return -1
	}
	return int64(math.Ceil(float64(n) / r.step))
}

// SeekFrame positions the resampler at output frame frame.
func (r *Resampler) SeekFrame(frame int64) error {
	pos := float64(frame) * r.step
	whole := int64(pos)

	if err := SeekFrames(r.src, whole); err != nil {
		return fmt.Errorf("resampler seek: %w", err)
	}

	r.primed = false
	r.eof = false
	r.inPos, r.inLen = 0, 0
	r.frac = pos - float64(whole)
	return nil
}

// next copies the next source frame into dst. It returns false once the source is drained.
func (r *Resampler) next(dst []float32) (bool, error) {
	for r.inPos >= r.inLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("resampler read: %w", err)
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels
	return true, nil
}

func (r *Resampler) prime() error {
	ok, err := r.next(r.window[1])
	if err != nil {
		return err
	}

	r.real = [4]bool{}
	r.real[1] = ok
	copy(r.window[0], r.window[1])
	r.real[0] = ok

	for i := 2; i < 4; i++ {
		if err := r.fill(i); err != nil {
			return err
		}
	}

	r.primed = true
	return nil
}

// fill decodes slot i, repeating slot i-1 past the end of the source.
func (r *Resampler) fill(i int) error {
	ok, err := r.next(r.window[i])
	if err != nil {
		return err
	}

	if !ok {
		copy(r.window[i], r.window[i-1])
	}
	r.real[i] = ok
	return nil
}

func (r *Resampler) shift() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first
	copy(r.real[:], r.real[1:])

	return r.fill(3)
}

// ReadSamples produces samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.real[1] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		x := float32(r.frac)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}
