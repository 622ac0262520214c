// Package differential mixes tank and arcade drive commands into per-wheel actuation for a
// two-motor differential drive.
//
// The mixer keeps no state between calls: each command fully determines both wheels. Use a
// SlewLimiter on top of it to limit acceleration.
package differential

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/components/motor"
	fakemotor "github.com/chipurobo/rdk/components/motor/fake"
	"github.com/chipurobo/rdk/components/motor/gpio"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

// A TankDriver accepts signed per-side speeds.
type TankDriver interface {
	DriveTank(ctx context.Context, left, right float64) error
	Stop(ctx context.Context) error
}

var _ = TankDriver(&Mixer{})

// Mixer turns drive commands into motor actuations.
type Mixer struct {
	left, right motor.Motor
	simulated   map[motor.Side]bool
	strict      bool
	logger      logging.Logger
}

// NewMixer builds a GPIO motor for each side on b. A side whose motor cannot be built, because b
// is nil or a pin is unavailable, logs the failure and falls back to a simulated motor, so only
// an invalid config is an error.
func NewMixer(ctx context.Context, b board.Board, conf Config, logger logging.Logger) (*Mixer, error) {
	if err := conf.Validate("drive"); err != nil {
		return nil, err
	}
	m := &Mixer{
		simulated: map[motor.Side]bool{},
		strict:    conf.StrictInput,
		logger:    logger,
	}
	m.left = m.buildMotor(ctx, b, motor.Left, conf.Left)
	m.right = m.buildMotor(ctx, b, motor.Right, conf.Right)
	return m, nil
}

func (m *Mixer) buildMotor(ctx context.Context, b board.Board, side motor.Side, conf gpio.Config) motor.Motor {
	name := string(side)
	gm, err := gpio.NewMotor(ctx, b, name, conf, m.logger.Sublogger(name))
	if err != nil {
		m.logger.Errorw("motor hardware unavailable; running simulated", "side", name, "error", err)
		m.simulated[side] = true
		return fakemotor.NewMotor(name, m.logger)
	}
	return gm
}

// NewMixerFromMotors returns a mixer over already built motors.
func NewMixerFromMotors(left, right motor.Motor, strict bool, logger logging.Logger) *Mixer {
	return &Mixer{
		left:      left,
		right:     right,
		simulated: map[motor.Side]bool{},
		strict:    strict,
		logger:    logger,
	}
}

func (m *Mixer) motorFor(side motor.Side) motor.Motor {
	if side == motor.Left {
		return m.left
	}
	return m.right
}

// ValidateSpeed returns an error wrapping motor.ErrInvalidArgument unless speed is a number in
// [-1, 1].
func ValidateSpeed(speed float64) error {
	if math.IsNaN(speed) || speed < -1 || speed > 1 {
		return errors.Wrapf(motor.ErrInvalidArgument, "speed %v is outside [-1, 1]", speed)
	}
	return nil
}

// SetMotor actuates one side. The duty is |speed| capped at 1, and a stop direction forces it
// to 0. Side and direction tokens are matched ignoring case. Unless the mixer is strict, an
// unknown direction stops the wheel and an unknown side is logged and ignored.
func (m *Mixer) SetMotor(ctx context.Context, side motor.Side, speed float64, direction motor.Direction) error {
	parsed, err := motor.ParseSide(string(side))
	if m.strict {
		if err != nil {
			return err
		}
		if err := ValidateSpeed(speed); err != nil {
			return err
		}
		if direction, err = motor.ParseDirectionStrict(string(direction)); err != nil {
			return err
		}
	} else {
		if err != nil {
			m.logger.Warnw("ignoring command for unknown side", "side", string(side))
			return nil
		}
		direction = motor.ParseDirection(string(direction))
	}
	act := motor.NewActuation(parsed, speed, direction)
	return m.actuate(ctx, m.motorFor(parsed), act)
}

func (m *Mixer) actuate(ctx context.Context, mtr motor.Motor, act motor.Actuation) error {
	if err := mtr.Drive(ctx, act.Direction, act.Duty); err != nil {
		return errors.Wrapf(err, "driving %s motor", act.Side)
	}
	return nil
}

// DriveTank drives each side at a signed speed: the sign selects the direction and 0 stops.
func (m *Mixer) DriveTank(ctx context.Context, left, right float64) error {
	if m.strict {
		if err := multierr.Combine(ValidateSpeed(left), ValidateSpeed(right)); err != nil {
			return err
		}
	}
	l := motor.FromSigned(motor.Left, left)
	r := motor.FromSigned(motor.Right, right)
	return multierr.Combine(
		m.SetMotor(ctx, l.Side, l.Duty, l.Direction),
		m.SetMotor(ctx, r.Side, r.Duty, r.Direction),
	)
}

// ArcadeToTank mixes a forward speed and a turn rate into left and right speeds. When either
// side would exceed 1 both are scaled down by the larger magnitude, keeping their ratio.
// Infinite inputs count as full scale.
func ArcadeToTank(forward, turn float64) (float64, float64) {
	forward, turn = utils.FiniteOrSign(forward), utils.FiniteOrSign(turn)
	return utils.ScaleToUnit(forward+turn, forward-turn)
}

// DriveArcade drives forward at one speed while turning at a rate; positive turn is clockwise.
func (m *Mixer) DriveArcade(ctx context.Context, forward, turn float64) error {
	if m.strict {
		if err := multierr.Combine(ValidateSpeed(forward), ValidateSpeed(turn)); err != nil {
			return err
		}
	}
	left, right := ArcadeToTank(forward, turn)
	return m.DriveTank(ctx, left, right)
}

// Stop stops both sides.
func (m *Mixer) Stop(ctx context.Context) error {
	return m.DriveTank(ctx, 0, 0)
}

// Forward drives both sides forward at |speed|.
func (m *Mixer) Forward(ctx context.Context, speed float64) error {
	s := math.Abs(speed)
	return m.DriveTank(ctx, s, s)
}

// Backward drives both sides backward at |speed|.
func (m *Mixer) Backward(ctx context.Context, speed float64) error {
	s := math.Abs(speed)
	return m.DriveTank(ctx, -s, -s)
}

// SpinLeft turns in place counterclockwise: left backward, right forward.
func (m *Mixer) SpinLeft(ctx context.Context, speed float64) error {
	s := math.Abs(speed)
	return m.DriveTank(ctx, -s, s)
}

// SpinRight turns in place clockwise: left forward, right backward.
func (m *Mixer) SpinRight(ctx context.Context, speed float64) error {
	s := math.Abs(speed)
	return m.DriveTank(ctx, s, -s)
}

// IsMoving reports whether either motor is powered.
func (m *Mixer) IsMoving(ctx context.Context) (bool, error) {
	for _, mtr := range []motor.Motor{m.left, m.right} {
		isMoving, _, err := mtr.IsPowered(ctx)
		if err != nil {
			return false, err
		}
		if isMoving {
			return true, nil
		}
	}
	return false, nil
}

// Simulated reports whether either side runs without hardware.
func (m *Mixer) Simulated() bool {
	return m.simulated[motor.Left] || m.simulated[motor.Right]
}

// SideSimulated reports whether the given side runs without hardware.
func (m *Mixer) SideSimulated(side motor.Side) bool {
	return m.simulated[side]
}

// Close stops both motors and releases their pins.
func (m *Mixer) Close(ctx context.Context) error {
	return multierr.Combine(
		m.left.Close(ctx),
		m.right.Close(ctx),
	)
}
