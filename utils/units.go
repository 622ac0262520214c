package utils

import "math"

// MMPerInch is the number of millimeters in one inch.
const MMPerInch = 25.4

// InchesToMM converts inches to millimeters.
func InchesToMM(in float64) float64 {
	return in * MMPerInch
}

// MMToInches converts millimeters to inches.
func MMToInches(mm float64) float64 {
	return mm / MMPerInch
}

// CircumferenceFromDiameter returns π × diameter in the same unit as the diameter.
func CircumferenceFromDiameter(diameter float64) float64 {
	return math.Pi * diameter
}
