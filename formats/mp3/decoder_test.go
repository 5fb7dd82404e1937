// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audtl/audio"
)

// mockMP3Reader stands in for gomp3.Decoder.
type mockMP3Reader struct {
	sampleRate int
	pcm        []byte
	offset     int
	chunk      int // max bytes per Read, 0 for unlimited
	seekable   bool
	fail       bool
}

func newMock(seekable bool, samples ...int16) *mockMP3Reader {
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: 44100, pcm: pcm, seekable: seekable}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Length() int64 {
	if !m.seekable {
		return -1
	}
	return int64(len(m.pcm))
}

func (m *mockMP3Reader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("unsupported whence")
	}
	m.offset = int(offset)
	return offset, nil
}

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.fail {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.pcm) {
		return 0, io.EOF
	}

	limit := len(buf)
	if m.chunk > 0 {
		limit = min(limit, m.chunk)
	}
	n := copy(buf[:limit], m.pcm[m.offset:])
	m.offset += n
	return n, nil
}

func drain(t *testing.T, src audio.Source, size int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, size)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"text":  []byte("This is not MP3 data"),
		"empty": {},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(in)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(newMock(true, 1, 2, 3, 4, 5, 6), nil)

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", src.Frames())
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newSource(newMock(true, 0, 16384, -16384, 32767), nil)
	out := drain(t, src, 64)

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768}
	if len(out) != len(want) {
		t.Fatalf("read %d samples, want %d", len(out), len(want))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSource_ReadSamples_PartialFrames(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 200)
	for i := range samples {
		samples[i] = int16(i * 100)
	}
	mock := newMock(true, samples...)
	mock.chunk = 7 // never a whole frame boundary

	out := drain(t, newSource(mock, nil), 10)
	if len(out) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(out), len(samples))
	}
	for i, s := range samples {
		if want := float32(s) / 32768; out[i] != want {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	mock := newMock(true, 1, 2)
	mock.fail = true

	if _, err := newSource(mock, nil).ReadSamples(make([]float32, 2)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_ReadSamples_OddBuffer(t *testing.T) {
	t.Parallel()

	if _, err := newSource(newMock(true, 1, 2), nil).ReadSamples(make([]float32, 3)); err != audio.ErrInvalidDstSize {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 2*100)
	for i := range samples {
		samples[i] = int16(i / 2)
	}
	src := newSource(newMock(true, samples...), nil)

	if err := src.SeekFrame(42); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}
	buf := make([]float32, 2)
	if _, err := src.ReadSamples(buf); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if got := buf[0] * 32768; got != 42 {
		t.Errorf("frame after seek = %v, want 42", got)
	}
}

func TestSource_NotSeekable(t *testing.T) {
	t.Parallel()

	src := newSource(newMock(false, 1, 2), nil)

	if src.Frames() != -1 {
		t.Errorf("Frames() = %d, want -1", src.Frames())
	}
	if err := src.SeekFrame(1); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("SeekFrame() error = %v, want ErrNotSeekable", err)
	}
}

type closeCounter struct {
	io.Reader
	n int
}

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	rc := &closeCounter{Reader: bytes.NewReader(nil)}
	src := newSource(newMock(true), rc)

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if rc.n != 1 {
		t.Errorf("underlying reader closed %d times, want 1", rc.n)
	}
	if err := newSource(newMock(true), bytes.NewReader(nil)).Close(); err != nil {
		t.Errorf("Close() without closer error = %v", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	buf := make([]float32, 4096)
	b.ReportAllocs()

	for b.Loop() {
		src := newSource(newMock(true, samples...), nil)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
