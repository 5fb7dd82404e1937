// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audtl/audio"
	"github.com/ik5/audtl/utils"
)

// aiffReader is the subset of aiff.Decoder the source needs.
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps an aiff.Decoder. The format has no cheap random access in
// go-audio/aiff, so seeking rewinds when needed and skips forward.
type source struct {
	dec        aiffReader
	rewind     func() (aiffReader, error)
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	pos        int64
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Frames() int64   { return s.frames }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("aiff close: %w", err)
	}
	return nil
}

func (s *source) SeekFrame(frame int64) error {
	frame = min(max(frame, 0), s.frames)

	if frame < s.pos {
		dec, err := s.rewind()
		if err != nil {
			return fmt.Errorf("aiff rewind: %w", err)
		}
		s.dec, s.pos = dec, 0
	}

	scratch := make([]float32, 1024*s.channels)
	for s.pos < frame {
		chunk := scratch[:min(int64(len(scratch)), (frame-s.pos)*int64(s.channels))]
		n, err := s.ReadSamples(chunk)
		if err == io.EOF || n == 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	left := s.frames - s.pos
	if left <= 0 {
		return 0, io.EOF
	}

	want := int(min(int64(len(dst)/s.channels), left)) * s.channels
	if want == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, want)}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("aiff read: %w", err)
	}
	n -= n % s.channels

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = utils.PCMToFloat(v, s.bitDepth)
	}

	s.pos += int64(n / s.channels)
	if n == 0 || s.pos >= s.frames {
		return n, io.EOF
	}
	return n, nil
}

// Decoder decodes big-endian PCM AIFF files of 8, 16, 24 or 32 bits.
// Inputs that are not an io.ReadSeeker are buffered in memory first.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	open := func() (*aiff.Decoder, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		dec := aiff.NewDecoder(rs)
		dec.ReadInfo()
		if dec.NumChans == 0 {
			return nil, ErrUnsupportedAiffLayout
		}
		return dec, nil
	}

	if !aiff.NewDecoder(rs).IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAiffFile, err)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedAiffLayout, bitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	src := &source{
		dec: dec,
		rewind: func() (aiffReader, error) {
			return open()
		},
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		frames:     int64(dec.NumSampleFrames),
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
