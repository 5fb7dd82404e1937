// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate returns the Catmull-Rom value between y1 and y2 at x (0 <= x <= 1),
// using y0 and y3 as the outer neighbours.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

// Breakpoint is a single (position, level) pair of a piecewise-linear envelope.
// At is expressed as a fraction of the envelope length in [0, 1].
type Breakpoint struct {
	At    float32
	Level float32
}

// Envelope renders n gain values by linear interpolation between breakpoints.
//
// Breakpoint positions are scaled to the index range [0, n-1] and rounded, so
// the first breakpoint lands on index 0 and the last one on index n-1. Indexes
// outside the breakpoint range hold the nearest breakpoint level.
func Envelope(n int, points ...Breakpoint) []float32 {
	if n <= 0 {
		return nil
	}
	env := make([]float32, n)
	if len(points) == 0 {
		for i := range env {
			env[i] = 1
		}
		return env
	}

	last := float32(n - 1)
	xs := make([]int, len(points))
	for i, p := range points {
		xs[i] = int(p.At*last + 0.5)
	}

	k := 0
	for i := range n {
		for k < len(points)-1 && i > xs[k+1] {
			k++
		}

		switch {
		case i <= xs[0]:
			env[i] = points[0].Level
		case k >= len(points)-1 || i >= xs[len(xs)-1]:
			env[i] = points[len(points)-1].Level
		default:
			span := xs[k+1] - xs[k]
			if span <= 0 {
				env[i] = points[k+1].Level
				continue
			}
			t := float32(i-xs[k]) / float32(span)
			env[i] = points[k].Level + (points[k+1].Level-points[k].Level)*t
		}
	}

	return env
}
