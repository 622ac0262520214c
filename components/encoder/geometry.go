package encoder

import (
	"time"

	"github.com/pkg/errors"

	"github.com/chipurobo/rdk/utils"
)

// Geometry is the fixed wheel model of an encoder.
type Geometry struct {
	// CountsPerRevolution is how many counts one revolution of the encoder shaft produces.
	CountsPerRevolution int
	WheelDiameterIn     float64
	GearRatio           float64
	// ApplyGearRatio divides distance and velocity by GearRatio.
	ApplyGearRatio bool

	circumference float64
}

// NewGeometry validates the wheel model and precomputes the circumference.
func NewGeometry(countsPerRevolution int, wheelDiameterIn, gearRatio float64, applyGearRatio bool) (Geometry, error) {
	if countsPerRevolution <= 0 {
		return Geometry{}, errors.Errorf("pulses per revolution must be positive, got %d", countsPerRevolution)
	}
	if !(wheelDiameterIn > 0) {
		return Geometry{}, errors.Errorf("wheel diameter must be positive, got %v", wheelDiameterIn)
	}
	if !(gearRatio > 0) {
		return Geometry{}, errors.Errorf("gear ratio must be positive, got %v", gearRatio)
	}
	return Geometry{
		CountsPerRevolution: countsPerRevolution,
		WheelDiameterIn:     wheelDiameterIn,
		GearRatio:           gearRatio,
		ApplyGearRatio:      applyGearRatio,
		circumference:       utils.CircumferenceFromDiameter(wheelDiameterIn),
	}, nil
}

// Circumference returns the wheel circumference in inches.
func (g Geometry) Circumference() float64 {
	return g.circumference
}

func (g Geometry) scale() float64 {
	s := g.circumference / float64(g.CountsPerRevolution)
	if g.ApplyGearRatio {
		s /= g.GearRatio
	}
	return s
}

// Distance converts a count to inches.
func (g Geometry) Distance(count int64) float64 {
	return float64(count) * g.scale()
}

// Revolutions converts a count to encoder shaft revolutions.
func (g Geometry) Revolutions(count int64) float64 {
	return float64(count) / float64(g.CountsPerRevolution)
}

// OutputRevolutions converts a count to output shaft revolutions, always applying the gear ratio.
func (g Geometry) OutputRevolutions(count int64) float64 {
	return g.Revolutions(count) / g.GearRatio
}

// EdgeVelocity is the speed in inches per second implied by one count in the given direction
// taking dt. It returns 0 when dt is not positive.
func (g Geometry) EdgeVelocity(dt time.Duration, direction int64) float64 {
	if dt <= 0 {
		return 0
	}
	return utils.Sign(float64(direction)) * g.scale() / dt.Seconds()
}
