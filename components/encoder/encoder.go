// Package encoder defines the interface shared by wheel encoders and the wheel geometry that
// turns encoder counts into distance and speed.
package encoder

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chipurobo/rdk/utils"
)

// PositionType is the unit a position is reported in.
type PositionType byte

// The set of allowed position types.
const (
	PositionTypeUnspecified PositionType = iota
	// PositionTypeTicks is the raw signed count.
	PositionTypeTicks
	// PositionTypeInches is the distance travelled by the wheel surface.
	PositionTypeInches
	// PositionTypeDegrees is the rotation of the output shaft.
	PositionTypeDegrees
	// PositionTypeMillimeters is PositionTypeInches in millimeters.
	PositionTypeMillimeters
)

func (t PositionType) String() string {
	switch t {
	case PositionTypeTicks:
		return "ticks"
	case PositionTypeInches:
		return "inches"
	case PositionTypeDegrees:
		return "degrees"
	case PositionTypeMillimeters:
		return "millimeters"
	case PositionTypeUnspecified:
		return "unspecified"
	default:
		return "unknown"
	}
}

// An Encoder turns wheel rotation into a count, a distance and a speed.
type Encoder interface {
	// Count returns the signed number of edges since the last reset.
	Count() int64

	// Distance returns the distance travelled in inches since the last reset.
	Distance() float64

	// Velocity returns the most recent speed estimate in inches per second.
	Velocity() float64

	// Reset sets the count back to zero.
	Reset()

	// Position returns the current position in the requested unit. An unspecified type is
	// reported in ticks.
	Position(ctx context.Context, positionType PositionType) (float64, PositionType, error)

	// Status returns a snapshot for diagnostics.
	Status() Status

	// Close stops the encoder and releases its pins.
	Close(ctx context.Context) error
}

// NewPositionTypeUnsupportedError returns an error for a position type an encoder cannot report.
func NewPositionTypeUnsupportedError(positionType PositionType) error {
	return errors.Errorf("encoder does not support %q position type", positionType)
}

// Position answers Encoder.Position from a count using g.
func Position(g Geometry, count int64, positionType PositionType) (float64, PositionType, error) {
	switch positionType {
	case PositionTypeUnspecified, PositionTypeTicks:
		return float64(count), PositionTypeTicks, nil
	case PositionTypeInches:
		return g.Distance(count), PositionTypeInches, nil
	case PositionTypeDegrees:
		return g.OutputRevolutions(count) * 360, PositionTypeDegrees, nil
	case PositionTypeMillimeters:
		return utils.InchesToMM(g.Distance(count)), PositionTypeMillimeters, nil
	default:
		return 0, positionType, NewPositionTypeUnsupportedError(positionType)
	}
}
