// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// ClampInt16 truncates x toward zero and saturates it to the int16 range.
func ClampInt16(x float32) int16 {
	switch {
	case x >= math.MaxInt16:
		return math.MaxInt16
	case x <= math.MinInt16:
		return math.MinInt16
	}

	return int16(x)
}

// AddInt16 returns a+b saturated to the int16 range.
func AddInt16(a, b int16) int16 {
	sum := int32(a) + int32(b)
	switch {
	case sum > math.MaxInt16:
		return math.MaxInt16
	case sum < math.MinInt16:
		return math.MinInt16
	}

	return int16(sum)
}
