// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/bits"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audtl/audio"
)

// aiffFile builds a minimal FORM/AIFF with COMM and SSND chunks around 16-bit samples.
func aiffFile(sampleRate, channels int, samples []int16) []byte {
	comm := new(bytes.Buffer)
	binary.Write(comm, binary.BigEndian, int16(channels))
	binary.Write(comm, binary.BigEndian, uint32(len(samples)/channels))
	binary.Write(comm, binary.BigEndian, int16(16))

	// 80-bit IEEE extended sample rate.
	exp := bits.Len(uint(sampleRate)) - 1
	binary.Write(comm, binary.BigEndian, uint16(16383+exp))
	binary.Write(comm, binary.BigEndian, uint64(sampleRate)<<(63-exp))

	ssnd := new(bytes.Buffer)
	binary.Write(ssnd, binary.BigEndian, uint32(0)) // offset
	binary.Write(ssnd, binary.BigEndian, uint32(0)) // block size
	for _, s := range samples {
		binary.Write(ssnd, binary.BigEndian, s)
	}

	body := new(bytes.Buffer)
	body.WriteString("AIFF")
	body.WriteString("COMM")
	binary.Write(body, binary.BigEndian, uint32(comm.Len()))
	body.Write(comm.Bytes())
	body.WriteString("SSND")
	binary.Write(body, binary.BigEndian, uint32(ssnd.Len()))
	body.Write(ssnd.Bytes())

	out := new(bytes.Buffer)
	out.WriteString("FORM")
	binary.Write(out, binary.BigEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// mockAiffReader stands in for aiff.Decoder.
type mockAiffReader struct {
	samples []int
	offset  int
	fail    bool
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.fail {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}
	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func mockSource(channels, frames int) (*source, *int) {
	data := make([]int, channels*frames)
	for i := range data {
		data[i] = i / channels
	}

	rewinds := new(int)
	return &source{
		dec: &mockAiffReader{samples: data},
		rewind: func() (aiffReader, error) {
			*rewinds++
			return &mockAiffReader{samples: data}, nil
		},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   16,
		frames:     int64(frames),
	}, rewinds
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, in := range map[string][]byte{"text": []byte("This is not AIFF data"), "empty": {}} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(in)); !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestDecoder_File(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 8192, 100, -100}
	src, err := Decoder{}.Decode(bytes.NewReader(aiffFile(8000, 2, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.SampleRate() != 8000 || src.Channels() != 2 {
		t.Fatalf("format = %d Hz %d ch, want 8000 Hz 2 ch", src.SampleRate(), src.Channels())
	}
	if got := src.(audio.Lengther).Frames(); got != 3 {
		t.Errorf("Frames() = %d, want 3", got)
	}

	buf := make([]float32, 16)
	n, err := src.ReadSamples(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(samples) {
		t.Fatalf("ReadSamples() = %d, want %d", n, len(samples))
	}
	for i, s := range samples {
		if want := float32(s) / 32768; math.Abs(float64(buf[i]-want)) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, buf[i], want)
		}
	}
}

func TestDecoder_FileSeekBackwards(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 500)
	for i := range samples {
		samples[i] = int16(i)
	}
	src, err := Decoder{}.Decode(bytes.NewReader(aiffFile(8000, 1, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	seeker := src.(audio.FrameSeeker)
	buf := make([]float32, 1)
	for _, frame := range []int64{300, 20} {
		if err := seeker.SeekFrame(frame); err != nil {
			t.Fatalf("SeekFrame(%d) error = %v", frame, err)
		}
		if _, err := src.ReadSamples(buf); err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if got := int(math.Round(float64(buf[0] * 32768))); got != int(frame) {
			t.Errorf("after SeekFrame(%d) read %d", frame, got)
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src, _ := mockSource(2, 100)

	total := 0
	buf := make([]float32, 30)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	if total != 200 {
		t.Errorf("read %d values, want 200", total)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src, _ := mockSource(1, 10)
	src.dec.(*mockAiffReader).fail = true

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	src, rewinds := mockSource(2, 5000)
	buf := make([]float32, 2)

	steps := []struct {
		frame       int64
		wantRewinds int
	}{
		{4000, 0},
		{4001, 0}, // already there after reading one frame
		{10, 1},
		{4999, 1},
	}

	for _, st := range steps {
		if err := src.SeekFrame(st.frame); err != nil {
			t.Fatalf("SeekFrame(%d) error = %v", st.frame, err)
		}
		if _, err := src.ReadSamples(buf); err != nil && err != io.EOF {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if got := int64(math.Round(float64(buf[0] * 32768))); got != st.frame {
			t.Errorf("after SeekFrame(%d) read frame %d", st.frame, got)
		}
		if *rewinds != st.wantRewinds {
			t.Errorf("after SeekFrame(%d) rewinds = %d, want %d", st.frame, *rewinds, st.wantRewinds)
		}
	}
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	src, _ := mockSource(1, 1)
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
