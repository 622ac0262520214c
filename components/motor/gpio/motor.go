// Package gpio implements a brushed DC motor driven through an H-bridge on GPIO pins.
//
// Supported wirings, matching common drivers:
//   - a, b and pwm: a/b pick the direction (a high is forward) and pwm sets speed (L298N with ENA).
//   - a and b only: one pin is held high and the other is pulsed, inverted (DRV8833 style).
//   - dir and pwm: dir high is forward.
//
// An optional en pin is driven low while the motor runs and high when it stops.
package gpio

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/components/motor"
	"github.com/chipurobo/rdk/logging"
	rutils "github.com/chipurobo/rdk/utils"
)

// Duty cycles at or below this are treated as stopped.
const stoppedThreshold = 0.001

// PinConfig defines the mapping of where motor are wired.
type PinConfig struct {
	A         string `json:"a,omitempty"`
	B         string `json:"b,omitempty"`
	Direction string `json:"dir,omitempty"`
	PWM       string `json:"pwm,omitempty"`
	EnablePin string `json:"en,omitempty"`
}

// Config describes the configuration of a motor.
type Config struct {
	Pins          PinConfig `json:"pins"`
	MinPowerPct   float64   `json:"min_power_pct,omitempty"`
	MaxPowerPct   float64   `json:"max_power_pct,omitempty"`
	PWMFreq       uint      `json:"pwm_freq,omitempty"`
	DirectionFlip bool      `json:"direction_flip,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	hasAB := conf.Pins.A != "" && conf.Pins.B != ""
	if !hasAB && conf.Pins.Direction == "" {
		return utils.NewConfigValidationError(path, motor.NewPinsRequiredError())
	}
	if !hasAB && conf.Pins.PWM == "" {
		return utils.NewConfigValidationError(path, motor.NewPWMRequiredError())
	}
	if conf.MaxPowerPct != 0 && (conf.MaxPowerPct < 0.06 || conf.MaxPowerPct > 1.0) {
		return utils.NewConfigValidationError(path, errors.New("max_power_pct must be between 0.06 and 1.0"))
	}
	if conf.MinPowerPct < 0 || conf.MinPowerPct > 1.0 {
		return utils.NewConfigValidationError(path, errors.New("min_power_pct must be between 0 and 1.0"))
	}
	return nil
}

var _ = motor.Motor(&Motor{})

// A Motor is a GPIO based Motor that resides on a GPIO Board.
type Motor struct {
	name                     string
	board                    board.Board
	a, b, dir, pwm, en       board.GPIOPin
	pinNames                 []string
	minPowerPct, maxPowerPct float64
	pwmFreq                  uint
	dirFlip                  bool
	logger                   logging.Logger

	mu       sync.Mutex
	on       bool
	powerPct float64
}

// NewMotor claims the configured pins on b. It fails when b is nil or a pin is missing.
func NewMotor(
	ctx context.Context,
	b board.Board,
	name string,
	conf Config,
	logger logging.Logger,
) (*Motor, error) {
	if err := conf.Validate(name); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.New("no board available")
	}
	if conf.MaxPowerPct == 0 {
		conf.MaxPowerPct = 1.0
	}

	m := &Motor{
		name:        name,
		board:       b,
		minPowerPct: conf.MinPowerPct,
		maxPowerPct: conf.MaxPowerPct,
		pwmFreq:     conf.PWMFreq,
		dirFlip:     conf.DirectionFlip,
		logger:      logger,
	}

	claim := func(pinName string) (board.GPIOPin, error) {
		if pinName == "" {
			return nil, nil
		}
		pin, err := b.GPIOPinByName(pinName)
		if err != nil {
			return nil, errors.Wrapf(err, "motor %s", name)
		}
		m.pinNames = append(m.pinNames, pinName)
		return pin, nil
	}
	if err := m.claimAndStop(ctx, claim, conf.Pins); err != nil {
		return nil, multierr.Combine(err, m.releasePins(ctx))
	}
	return m, nil
}

func (m *Motor) claimAndStop(
	ctx context.Context,
	claim func(string) (board.GPIOPin, error),
	pins PinConfig,
) error {
	var err error
	if m.a, err = claim(pins.A); err != nil {
		return err
	}
	if m.b, err = claim(pins.B); err != nil {
		return err
	}
	if m.dir, err = claim(pins.Direction); err != nil {
		return err
	}
	if m.pwm, err = claim(pins.PWM); err != nil {
		return err
	}
	if m.en, err = claim(pins.EnablePin); err != nil {
		return err
	}

	// Start from a known state.
	return m.Stop(ctx)
}

func (m *Motor) releasePins(ctx context.Context) error {
	var errs error
	for _, name := range m.pinNames {
		errs = multierr.Combine(errs, m.board.ClosePin(ctx, name))
	}
	return errs
}

// Drive sets the direction pins and then the duty cycle.
func (m *Motor) Drive(ctx context.Context, direction motor.Direction, duty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	duty = fixPowerPct(duty, m.minPowerPct, m.maxPowerPct)
	if direction == motor.Stop || !direction.Valid() || rutils.Float64AlmostEqual(duty, 0, stoppedThreshold) {
		return m.stopLocked(ctx)
	}

	m.logger.Debugw("driving motor", "motor", m.name, "direction", direction, "duty", duty)
	forward := direction == motor.Forward
	if m.dirFlip {
		forward = !forward
	}

	var errs error
	if m.en != nil {
		errs = multierr.Combine(errs, m.en.Set(ctx, false, nil))
	}

	switch {
	case m.dir != nil:
		errs = multierr.Combine(errs, m.dir.Set(ctx, forward, nil))
		errs = multierr.Combine(errs, m.setPWM(ctx, m.pwm, duty))
	case m.pwm != nil:
		errs = multierr.Combine(
			errs,
			m.a.Set(ctx, forward, nil),
			m.b.Set(ctx, !forward, nil),
			m.setPWM(ctx, m.pwm, duty),
		)
	default:
		// A/B only: the other pin is always high, so only when PWM is LOW are we driving. Thus,
		// we invert here.
		hold, pulse := m.b, m.a
		if forward {
			hold, pulse = m.a, m.b
		}
		errs = multierr.Combine(
			errs,
			hold.Set(ctx, true, nil),
			m.setPWM(ctx, pulse, 1-duty),
		)
	}
	if errs != nil {
		return errs
	}

	m.on = true
	m.powerPct = duty
	if direction == motor.Backward {
		m.powerPct = -duty
	}
	return nil
}

func (m *Motor) setPWM(ctx context.Context, pin board.GPIOPin, duty float64) error {
	if m.pwmFreq != 0 {
		if err := pin.SetPWMFreq(ctx, m.pwmFreq, nil); err != nil {
			return err
		}
	}
	return pin.SetPWM(ctx, duty, nil)
}

// Stop turns the motor off by setting the appropriate pins to low states.
func (m *Motor) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Motor) stopLocked(ctx context.Context) error {
	var errs error
	if m.en != nil {
		errs = multierr.Combine(errs, m.en.Set(ctx, true, nil))
	}
	if m.pwm != nil {
		errs = multierr.Combine(errs, m.pwm.SetPWM(ctx, 0, nil))
	}
	if m.a != nil && m.b != nil {
		errs = multierr.Combine(
			errs,
			m.a.Set(ctx, false, nil),
			m.b.Set(ctx, false, nil),
		)
	}
	m.on = false
	m.powerPct = 0
	return errs
}

// IsPowered returns if the motor is currently on or off, and the signed duty it runs at.
func (m *Motor) IsPowered(ctx context.Context) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on, m.powerPct, nil
}

// Close stops the motor and releases its pins.
func (m *Motor) Close(ctx context.Context) error {
	return multierr.Combine(m.Stop(ctx), m.releasePins(ctx))
}
