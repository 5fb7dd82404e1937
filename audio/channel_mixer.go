// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ChannelMixer maps an interleaved stream onto a different channel count.
// Down-mixing averages the source channels folded onto each output channel;
// up-mixing repeats source channels round-robin, so mono becomes dual mono.
type ChannelMixer struct {
	src Source
	in  int
	out int
	buf []float32
	eof bool
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src: src,
		in:  src.Channels(),
		out: channels,
	}
}

// NewMonoMixer down-mixes src to a single channel.
func NewMonoMixer(src Source) *ChannelMixer { return NewChannelMixer(src, 1) }

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.out }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("channel mixer: %w", err)
	}
	return nil
}

func (m *ChannelMixer) Frames() int64 {
	if l, ok := m.src.(Lengther); ok {
		return l.Frames()
	}
	return -1
}

func (m *ChannelMixer) SeekFrame(frame int64) error {
	m.eof = false
	return SeekFrames(m.src, frame)
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	if m.in == m.out {
		return m.src.ReadSamples(dst)
	}

	if m.eof {
		return 0, io.EOF
	}

	frames := len(dst) / m.out
	need := frames * m.in
	if cap(m.buf) < need {
		m.buf = make([]float32, need)
	}

	n, err := m.src.ReadSamples(m.buf[:need])
	if err == io.EOF {
		m.eof = true
	} else if err != nil {
		return 0, fmt.Errorf("channel mixer read: %w", err)
	}

	got := n / m.in
	for f := range got {
		m.mixFrame(dst[f*m.out:(f+1)*m.out], m.buf[f*m.in:(f+1)*m.in])
	}

	if got == 0 && m.eof {
		return 0, io.EOF
	}
	return got * m.out, nil
}

func (m *ChannelMixer) mixFrame(dst, src []float32) {
	if m.out > m.in {
		for c := range dst {
			dst[c] = src[c%m.in]
		}
		return
	}

	for c := range dst {
		var sum float32
		count := 0
		for i := c; i < m.in; i += m.out {
			sum += src[i]
			count++
		}
		dst[c] = sum / float32(count)
	}
}
