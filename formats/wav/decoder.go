// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audtl/audio"
	"github.com/ik5/audtl/utils"
)

const formatPCM = 1

type source struct {
	dec        *wav.Decoder
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int

	dataStart  int64 // byte offset of the first PCM frame
	blockAlign int64
	frames     int64
	pos        int64

	intBuf *goaudio.IntBuffer
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
		return fmt.Errorf("wav close: %w", err)
	}
	return nil
}

// SeekFrame moves to an absolute frame, clamped to the data chunk.
func (s *source) SeekFrame(frame int64) error {
	frame = min(max(frame, 0), s.frames)
	if _, err := s.dec.Seek(s.dataStart+frame*s.blockAlign, io.SeekStart); err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	s.pos = frame
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
		return 0, fmt.Errorf("wav read: %w", err)
	}
	n -= n % s.channels

	for i, v := range s.intBuf.Data[:n] {
		if s.bitDepth == 8 {
			// 8-bit WAV is unsigned.
			v -= 128
		}
		dst[i] = utils.PCMToFloat(v, s.bitDepth)
	}

	s.pos += int64(n / s.channels)
	if n == 0 || s.pos >= s.frames {
		return n, io.EOF
	}
	return n, nil
}

// Decoder decodes integer PCM WAV files of 8, 16, 24 or 32 bits.
// Inputs that are not an io.ReadSeeker are buffered in memory first.
// When r is also an io.Closer, closing the source closes r.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	if !wav.NewDecoder(rs).IsValidFile() {
		return nil, ErrNotWavFile
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wav rewind: %w", err)
	}

	dec := wav.NewDecoder(rs)
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPCMChunkNotFound, err)
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, ErrUnsupportedFormat
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	start, err := dec.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("wav data offset: %w", err)
	}

	channels := int(dec.NumChans)
	blockAlign := int64(channels * bitDepth / 8)

	src := &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		dataStart:  start,
		blockAlign: blockAlign,
		frames:     int64(dec.PCMSize) / blockAlign,
	}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}

	return src, nil
}
