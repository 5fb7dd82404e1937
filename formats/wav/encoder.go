// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audtl/utils"
)

const writeChunk = 8192

// WriteWAV encodes interleaved float samples as integer PCM.
// bitDepth must be 16, 24 or 32. Values outside [-1, 1] are clipped.
func WriteWAV(w io.WriteSeeker, sampleRate, channels, bitDepth int, samples []float32) error {
	enc, err := NewWriter(w, sampleRate, channels, bitDepth)
	if err != nil {
		return err
	}

	if err := enc.Write(samples); err != nil {
		return err
	}
	return enc.Close()
}

// Writer streams float blocks into a WAV file.
type Writer struct {
	enc      *wav.Encoder
	bitDepth int
	buf      *goaudio.IntBuffer
}

func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &Writer{
		enc:      wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		bitDepth: bitDepth,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends interleaved samples. len(samples) should be a whole number of frames.
func (w *Writer) Write(samples []float32) error {
	for i := 0; i < len(samples); i += writeChunk {
		chunk := samples[i:min(i+writeChunk, len(samples))]

		if cap(w.buf.Data) < len(chunk) {
			w.buf.Data = make([]int, len(chunk))
		}
		w.buf.Data = w.buf.Data[:len(chunk)]

		for j, s := range chunk {
			w.buf.Data[j] = utils.FloatToPCM(s, w.bitDepth)
		}

		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("wav write: %w", err)
		}
	}

	return nil
}

// Close finalises the RIFF headers. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav finalise: %w", err)
	}
	return nil
}
