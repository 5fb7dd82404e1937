// SPDX-License-Identifier: EPL-2.0

package utils

// FloatToPCM clamps x to [-1, 1] and scales it to a signed integer sample of
// the given bit depth. Unknown bit depths are treated as 16-bit.
func FloatToPCM(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	switch bitDepth {
	case 8:
		return int(x * 127.0)
	case 24:
		return int(x * 8388607.0)
	case 32:
		return int(float64(x) * 2147483647.0)
	default:
		return int(x * 32767.0)
	}
}

// PCMToFloat is the inverse of FloatToPCM.
func PCMToFloat(v int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / 128.0
	case 24:
		return float32(v) / 8388608.0
	case 32:
		return float32(float64(v) / 2147483648.0)
	default:
		return float32(v) / 32768.0
	}
}
