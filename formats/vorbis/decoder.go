// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audtl/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the subset of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of interleaved values, not frames.
	Read([]float32) (int, error)
	Length() int64
	SetPosition(pos int64) error
}

type source struct {
	dec        oggReader
	closer     io.Closer
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("vorbis close: %w", err)
	}
	return nil
}

// Frames is -1 when the input was not seekable.
func (s *source) Frames() int64 {
	if l := s.dec.Length(); l > 0 {
		return l
	}
	return -1
}

func (s *source) SeekFrame(frame int64) error {
	total := s.Frames()
	if total < 0 {
		return audio.ErrNotSeekable
	}

	if err := s.dec.SetPosition(min(max(frame, 0), total)); err != nil {
		return fmt.Errorf("vorbis seek: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("vorbis read: %w", err)
	}
	return n, err
}

// Decoder decodes Ogg Vorbis streams.
// Length and frame seeking are available when r is an io.ReadSeeker;
// when r is also an io.Closer, closing the source closes r.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode: %w", err)
	}

	return newSource(dec, r), nil
}

func newSource(dec oggReader, r io.Reader) *source {
	src := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}
