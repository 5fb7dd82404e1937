// SPDX-License-Identifier: EPL-2.0

package timeline

import "testing"

func TestParseLoopMode(t *testing.T) {
	t.Parallel()

	for _, m := range []LoopMode{LoopNone, LoopInfinite, LoopStretch} {
		got, err := ParseLoopMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseLoopMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseLoopMode("pingpong"); err == nil {
		t.Error("ParseLoopMode(pingpong) error = nil")
	}
}

func TestRenderLoop(t *testing.T) {
	t.Parallel()

	content := ramp(10)
	segment := func(from, n int) *Message { return content.segment(from, n) }

	tests := []struct {
		name          string
		mode          LoopMode
		pos, frames   int
		period, limit int
		want          []float32
		wantPos       int
	}{
		{"infinite wraps", LoopInfinite, 7, 6, 10, 10, []float32{7, 8, 9, 0, 1, 2}, 3},
		{"infinite from far past", LoopInfinite, 25, 3, 10, 10, []float32{5, 6, 7}, 8},
		{"stretch stops at limit", LoopStretch, 8, 6, 10, 12, []float32{8, 9, 0, 1, 0, 0}, 12},
		{"stretch past limit", LoopStretch, 15, 3, 10, 12, []float32{0, 0, 0}, 15},
		{"empty content", LoopInfinite, 0, 3, 0, 0, []float32{0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, pos := renderLoop(mono, tt.mode, tt.pos, tt.frames, tt.period, tt.limit, segment)
			if msg.Frames != tt.frames {
				t.Fatalf("frames = %d, want %d", msg.Frames, tt.frames)
			}
			for i, w := range tt.want {
				if msg.Samples[i] != w {
					t.Fatalf("samples = %v, want %v", msg.Samples, tt.want)
				}
			}
			if pos != tt.wantPos {
				t.Errorf("pos = %d, want %d", pos, tt.wantPos)
			}
		})
	}
}
