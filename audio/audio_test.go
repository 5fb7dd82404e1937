// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/audtl/internal/audiotest"
)

type stubDecoder struct{ name string }

func (d stubDecoder) Decode(io.Reader) (Source, error) {
	return audiotest.NewSilentSource(8000, 1, 10), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(".WAV", stubDecoder{name: "wav"})
	reg.Register("mp3", stubDecoder{name: "mp3"})

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"wav", "wav", true},
		{".wav", "wav", true},
		{"Wav", "wav", true},
		{"mp3", "mp3", true},
		{"ogg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			d, ok := reg.Get(tt.key)
			if ok != tt.ok {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if ok && d.(stubDecoder).name != tt.want {
				t.Errorf("Get(%q) = %v, want %s", tt.key, d, tt.want)
			}
		})
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("wav", stubDecoder{name: "wav"})

	if _, err := reg.ForPath("/samples/Kick.WAV"); err != nil {
		t.Fatalf("ForPath() error = %v", err)
	}

	_, err := reg.ForPath("/samples/notes.txt")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("ForPath() error = %v, want ErrUnknownFormat", err)
	}

	var fe *FormatError
	if !errors.As(err, &fe) || fe.Format != "txt" {
		t.Errorf("ForPath() error = %#v, want FormatError for txt", err)
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, f := range []string{"ogg", "wav", "mp3"} {
		reg.Register(f, stubDecoder{})
	}

	if got, want := reg.Formats(), []string{"mp3", "ogg", "wav"}; !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestSeekFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  func() Source
	}{
		{"seeker", func() Source { return audiotest.NewRampSource(8000, 2, 5000, 1) }},
		{"skip", func() Source { return audiotest.NewStream(audiotest.NewRampSource(8000, 2, 5000, 1)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := tt.src()
			if err := SeekFrames(src, 3000); err != nil {
				t.Fatalf("SeekFrames() error = %v", err)
			}

			buf := make([]float32, 2)
			if _, err := src.ReadSamples(buf); err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if buf[0] != 3000 {
				t.Errorf("frame after seek = %v, want 3000", buf[0])
			}
		})
	}
}

func TestSeekFrames_PastEnd(t *testing.T) {
	t.Parallel()

	src := audiotest.NewStream(audiotest.NewRampSource(8000, 1, 100, 1))
	if err := SeekFrames(src, 500); err != nil {
		t.Fatalf("SeekFrames() error = %v", err)
	}

	n, err := src.ReadSamples(make([]float32, 10))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v, want 0, EOF", n, err)
	}
}

func TestReadFull(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 2, 300, 0.25)

	buf := make([]float32, 400)
	n, err := ReadFull(src, buf)
	if n != 400 || err != nil {
		t.Fatalf("ReadFull() = %d, %v, want 400, nil", n, err)
	}

	n, err = ReadFull(src, buf)
	if n != 200 || err != io.EOF {
		t.Fatalf("ReadFull() = %d, %v, want 200, EOF", n, err)
	}
}

func TestReadFull_Error(t *testing.T) {
	t.Parallel()

	_, err := ReadFull(audiotest.Broken{Rate: 8000, Chans: 1}, make([]float32, 8))
	if !errors.Is(err, audiotest.ErrBroken) {
		t.Errorf("ReadFull() error = %v, want ErrBroken", err)
	}
}

func TestConform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate, chns int
		wantType   string
	}{
		{"passthrough", 8000, 2, "source"},
		{"channels", 8000, 1, "mixer"},
		{"rate", 16000, 2, "resampler"},
		{"both", 16000, 1, "resampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSilentSource(8000, 2, 100)
			out := Conform(src, tt.rate, tt.chns)

			if out.SampleRate() != tt.rate || out.Channels() != tt.chns {
				t.Fatalf("Conform() = %d Hz %d ch, want %d Hz %d ch",
					out.SampleRate(), out.Channels(), tt.rate, tt.chns)
			}

			var got string
			switch out.(type) {
			case *audiotest.Source:
				got = "source"
			case *ChannelMixer:
				got = "mixer"
			case *Resampler:
				got = "resampler"
			}
			if got != tt.wantType {
				t.Errorf("Conform() outer stage = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func TestConform_Length(t *testing.T) {
	t.Parallel()

	out := Conform(audiotest.NewSilentSource(22050, 1, 22050), 44100, 2)

	l, ok := out.(Lengther)
	if !ok {
		t.Fatal("conformed source does not report its length")
	}
	if l.Frames() != 44100 {
		t.Errorf("Frames() = %d, want 44100", l.Frames())
	}
}
