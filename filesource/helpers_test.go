// SPDX-License-Identifier: EPL-2.0

package filesource

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audtl/timeline"
)

var format = timeline.Format{SampleRate: 1000, Channels: 2, FramesPerBuffer: 64}

// fileBytes is the materialized size of a 100 frame stereo file.
const fileBytes = 100 * 2 * 4

// memFile holds base+frame on every channel of frame.
type memFile struct {
	frames int
	base   float32
}

type memOpener struct {
	mu    sync.Mutex
	files map[string]memFile
	opens map[string]int

	frameReads int
}

func newMemOpener(files map[string]memFile) *memOpener {
	return &memOpener{files: files, opens: make(map[string]int)}
}

func (o *memOpener) Open(path string) (Decoder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opens[path]++
	f, ok := o.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return &memDecoder{file: f, channels: format.Channels, opener: o}, nil
}

func (o *memOpener) Opens(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[path]
}

// FrameReads counts single-frame decodes across every decoder.
func (o *memOpener) FrameReads() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frameReads
}

type memDecoder struct {
	file     memFile
	channels int
	opener   *memOpener
}

func (d *memDecoder) Frames() int { return d.file.frames }

func (d *memDecoder) DecodeRange(start, end int) ([]float32, error) {
	start, end = max(start, 0), min(end, d.file.frames)
	if start >= end {
		return nil, nil
	}

	out := make([]float32, 0, (end-start)*d.channels)
	for f := start; f < end; f++ {
		for range d.channels {
			out = append(out, d.file.base+float32(f))
		}
	}
	return out, nil
}

func (d *memDecoder) DecodeFrame(at int) ([]float32, error) {
	d.opener.mu.Lock()
	d.opener.frameReads++
	d.opener.mu.Unlock()

	frame := make([]float32, d.channels)
	data, err := d.DecodeRange(at, at+1)
	copy(frame, data)
	return frame, err
}

func (d *memDecoder) Close() error { return nil }

// threeFiles are 100 frame files a, b and c.
func threeFiles() *memOpener {
	return newMemOpener(map[string]memFile{
		"a.wav": {frames: 100, base: 0},
		"b.wav": {frames: 100, base: 1000},
		"c.wav": {frames: 100, base: 2000},
	})
}

func open(t *testing.T, c *Cache, path string, opts ...SourceOption) *Source {
	t.Helper()

	s, err := c.Open(path, opts...)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}
	return s
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// lazyCache decodes files of 50 frames and longer on demand.
func lazyCache(o Opener) *Cache {
	return NewCache(o, format, WithLazyThreshold(50*time.Millisecond))
}
