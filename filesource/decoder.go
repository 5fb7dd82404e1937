// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audtl/audio"
	"github.com/ik5/audtl/formats/aiff"
	"github.com/ik5/audtl/formats/mp3"
	"github.com/ik5/audtl/formats/vorbis"
	"github.com/ik5/audtl/formats/wav"
	"github.com/ik5/audtl/timeline"
)

// Decoder yields interleaved float samples of one file, already in the
// engine's sample rate and channel count.
type Decoder interface {
	// Frames is the natural length of the file in engine frames.
	Frames() int
	// DecodeRange returns frames [start, end). Ranges running past the end
	// of the file are truncated and may come back empty.
	DecodeRange(start, end int) ([]float32, error)
	// DecodeFrame returns the single frame at.
	DecodeFrame(at int) ([]float32, error)
	Close() error
}

// Opener opens a Decoder for a path.
type Opener interface {
	Open(path string) (Decoder, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Decoder, error)

func (f OpenerFunc) Open(path string) (Decoder, error) { return f(path) }

// DefaultRegistry returns a registry holding every bundled format.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	return reg
}

// FormatOpener decodes files through an audio.Registry and conforms them
// to a timeline.Format.
type FormatOpener struct {
	Registry *audio.Registry
	Format   timeline.Format
}

// NewFormatOpener returns an opener over DefaultRegistry.
func NewFormatOpener(format timeline.Format) *FormatOpener {
	return &FormatOpener{Registry: DefaultRegistry(), Format: format}
}

func (o *FormatOpener) Open(path string) (Decoder, error) {
	d := &fileDecoder{path: path, opener: o}

	src, err := d.open()
	if err != nil {
		return nil, err
	}
	d.src = src

	frames := int64(-1)
	if l, ok := src.(audio.Lengther); ok {
		frames = l.Frames()
	}
	if frames < 0 {
		frames, err = d.count()
		if err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	d.frames = int(frames)

	return d, nil
}

type fileDecoder struct {
	path   string
	opener *FormatOpener
	src    audio.Source
	frames int
}

func (d *fileDecoder) open() (audio.Source, error) {
	dec, err := d.opener.Registry.ForPath(d.path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", d.path, err)
	}

	return audio.Conform(src, d.opener.Format.SampleRate, d.opener.Format.Channels), nil
}

// count drains a stream of unknown length and reopens it.
func (d *fileDecoder) count() (int64, error) {
	ch := d.opener.Format.Channels
	buf := make([]float32, 4096*ch)

	var total int64
	for {
		n, err := d.src.ReadSamples(buf)
		total += int64(n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("measure %s: %w", d.path, err)
		}
		if n == 0 {
			break
		}
	}

	_ = d.src.Close()
	src, err := d.open()
	if err != nil {
		return 0, err
	}
	d.src = src

	return total / int64(ch), nil
}

func (d *fileDecoder) Frames() int { return d.frames }

func (d *fileDecoder) DecodeRange(start, end int) ([]float32, error) {
	start = max(start, 0)
	end = min(end, d.frames)
	if start >= end {
		return nil, nil
	}

	if err := audio.SeekFrames(d.src, int64(start)); err != nil {
		return nil, fmt.Errorf("seek %s to frame %d: %w", d.path, start, err)
	}

	ch := d.opener.Format.Channels
	buf := make([]float32, (end-start)*ch)
	n, err := audio.ReadFull(d.src, buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}

	return buf[:n-n%ch], nil
}

func (d *fileDecoder) DecodeFrame(at int) ([]float32, error) {
	frame := make([]float32, d.opener.Format.Channels)
	data, err := d.DecodeRange(at, at+1)
	copy(frame, data)
	return frame, err
}

func (d *fileDecoder) Close() error {
	if d.src == nil {
		return nil
	}
	err := d.src.Close()
	d.src = nil
	return err
}
