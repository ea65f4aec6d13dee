// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clip saturates x to the float sample range [-1, 1]. NaN becomes silence.
func Clip(x float32) float32 {
	if math.IsNaN(float64(x)) {
		return 0
	}
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Float32ToInt16 quantizes a float sample to 16-bit PCM.
// The value is clipped, scaled by 32767 and truncated toward zero.
func Float32ToInt16(x float32) int16 {
	// Use 32767 for positive max to avoid overflow
	return int16(Clip(x) * 32767.0)
}

// Int16ToFloat32 is the inverse of Float32ToInt16 up to truncation error.
// math.MinInt16 maps to -1.
func Int16ToFloat32(v int16) float32 {
	return Clip(float32(v) / 32767.0)
}

// SignedPCMToFloat32 scales a signed integer sample of the given bit depth
// (8 to 32) to [-1, 1]. 16-bit input matches Int16ToFloat32 exactly.
func SignedPCMToFloat32(v int, bitDepth int) float32 {
	if bitDepth == 16 {
		return Int16ToFloat32(int16(v))
	}
	scale := float32(int64(1)<<(bitDepth-1) - 1)
	return Clip(float32(int32(v)) / scale)
}
