package service

import (
	"math"
	"unicode/utf16"
)

const maxInt32 = 2147483647

// FallbackScore maps seed onto an integer in [min, max]. The same seed always
// yields the same value, so a location without data shows a stable score.
func FallbackScore(seed string, min, max int) int {
	if max < min {
		min, max = max, min
	}

	abs := int64(seedHash(seed))
	if abs < 0 {
		abs = -abs
	}
	normalized := float64(abs) / maxInt32

	v := int(roundHalfUp(float64(min) + normalized*float64(max-min)))
	// abs(MinInt32) normalizes just above 1.
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}

// seedHash folds seed as hash*31 + code unit over UTF-16 code units,
// wrapping at every step like a signed 32-bit int.
func seedHash(seed string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(seed)) {
		hash = hash*31 + int32(unit)
	}
	return hash
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundScore(v float64) int {
	return int(roundHalfUp(v))
}
