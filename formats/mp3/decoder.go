// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audtl/audio"
	"github.com/ik5/audtl/utils"
)

// go-mp3 always yields 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = 4
)

// mp3Reader is the subset of gomp3.Decoder the source needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Length() int64
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	closer     io.Closer
	sampleRate int
	buf        []byte
	// pending holds a trailing partial frame between reads.
	pending int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("mp3 close: %w", err)
	}
	return nil
}

// Frames is -1 when the input was not seekable.
func (s *source) Frames() int64 {
	l := s.dec.Length()
	if l < 0 {
		return -1
	}
	return l / bytesPerFrame
}

func (s *source) SeekFrame(frame int64) error {
	if s.dec.Length() < 0 {
		return audio.ErrNotSeekable
	}

	frame = min(max(frame, 0), s.Frames())
	if _, err := s.dec.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek: %w", err)
	}
	s.pending = 0
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		buf := make([]byte, need)
		copy(buf, s.buf[:s.pending])
		s.buf = buf
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf[s.pending:])
	n += s.pending
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("mp3 read: %w", err)
	}

	whole := n - n%bytesPerFrame
	samples := whole / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = utils.PCMToFloat(int(v), 16)
	}

	s.pending = copy(s.buf, s.buf[whole:n])

	if err == io.EOF {
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder decodes MPEG-1/2 Layer III streams to 16-bit stereo.
// Length and frame seeking are available when r is an io.ReadSeeker;
// when r is also an io.Closer, closing the source closes r.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}

	return newSource(dec, r), nil
}

func newSource(dec mp3Reader, r io.Reader) *source {
	src := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}
