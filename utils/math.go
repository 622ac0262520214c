// Package utils contains small helpers shared by the drive components.
package utils

import "math"

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Clamp limits x to [lo, hi]. NaN is mapped to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(x, hi))
}

// Sign returns -1, 0 or 1 depending on the sign of x. Negative zero is 0.
func Sign(x float64) float64 {
	if x == 0 || math.IsNaN(x) {
		return 0
	}
	if math.Signbit(x) {
		return -1.0
	}
	return 1.0
}

// FiniteOrSign maps +Inf to 1 and -Inf to -1 and returns any other value unchanged.
func FiniteOrSign(x float64) float64 {
	if math.IsInf(x, 0) {
		return Sign(x)
	}
	return x
}

// ScaleToUnit divides both values by the larger magnitude when that magnitude exceeds 1, so the
// ratio between them is kept while both end up in [-1, 1].
func ScaleToUnit(a, b float64) (float64, float64) {
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest <= 1 {
		return a, b
	}
	return a / largest, b / largest
}
