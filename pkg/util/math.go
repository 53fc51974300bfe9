package util

import "math"

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
    if v < lo {
        return lo
    }
    if v > hi {
        return hi
    }
    return v
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
    if v < lo {
        return lo
    }
    if v > hi {
        return hi
    }
    return v
}

// Round2 rounds to two decimal places, matching stored price precision.
func Round2(v float64) float64 {
    return math.Round(v*100) / 100
}
