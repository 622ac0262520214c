package gpio

import "math"

// fixPowerPct caps a duty cycle at max and floors any nonzero duty at min.
func fixPowerPct(powerPct, min, max float64) float64 {
	powerPct = math.Min(math.Abs(powerPct), max)
	if powerPct > stoppedThreshold {
		powerPct = math.Max(powerPct, min)
	}
	return powerPct
}
