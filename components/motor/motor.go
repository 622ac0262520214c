// Package motor defines the per-wheel actuation model: which side, which way, and how hard.
package motor

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is returned by strict parsing and validation for out-of-range speeds and
// unknown sides or directions.
var ErrInvalidArgument = errors.New("invalid argument")

// Side selects a wheel.
type Side string

// The two sides of a differential drive.
const (
	Left  Side = "left"
	Right Side = "right"
)

// ParseSide parses "left" or "right", ignoring case and surrounding space.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	default:
		return "", errors.Wrapf(ErrInvalidArgument, "unknown side %q", s)
	}
}

// Direction is the way a wheel turns.
type Direction string

// The allowed directions.
const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Stop     Direction = "stop"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case Forward, Backward, Stop:
		return true
	default:
		return false
	}
}

// ParseDirection parses a direction token. Unknown tokens mean Stop.
func ParseDirection(s string) Direction {
	d, err := ParseDirectionStrict(s)
	if err != nil {
		return Stop
	}
	return d
}

// ParseDirectionStrict parses a direction token, rejecting unknown ones.
func ParseDirectionStrict(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", errors.Wrapf(ErrInvalidArgument, "unknown direction %q", s)
	}
	return d, nil
}

// Actuation is the command for one wheel.
type Actuation struct {
	Side      Side      `json:"side"`
	Direction Direction `json:"direction"`
	Duty      float64   `json:"duty"`
}

// NewActuation normalizes a requested speed into a duty cycle in [0, 1]: the sign is dropped,
// the magnitude is capped at 1 and NaN becomes 0. Stop and unknown directions force duty 0.
func NewActuation(side Side, speed float64, direction Direction) Actuation {
	if !direction.Valid() {
		direction = Stop
	}
	duty := math.Min(math.Abs(speed), 1)
	if math.IsNaN(duty) || direction == Stop {
		duty = 0
	}
	return Actuation{Side: side, Direction: direction, Duty: duty}
}

// FromSigned maps a signed speed to an actuation: the sign picks the direction and zero stops.
func FromSigned(side Side, speed float64) Actuation {
	switch {
	case speed > 0:
		return NewActuation(side, speed, Forward)
	case speed < 0:
		return NewActuation(side, speed, Backward)
	default:
		// Zero and NaN.
		return NewActuation(side, 0, Stop)
	}
}

// A Motor drives one wheel.
type Motor interface {
	// Drive turns the wheel in the given direction at duty in [0, 1].
	Drive(ctx context.Context, direction Direction, duty float64) error

	// Stop cuts power.
	Stop(ctx context.Context) error

	// IsPowered returns whether the motor is on and the duty it is running at.
	IsPowered(ctx context.Context) (bool, float64, error)

	// Close stops the motor and releases its pins.
	Close(ctx context.Context) error
}
