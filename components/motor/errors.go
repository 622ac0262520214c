package motor

import "github.com/pkg/errors"

// NewPinsRequiredError is returned when a motor config wires no way to choose direction.
func NewPinsRequiredError() error {
	return errors.New("motor needs either a and b pins or a dir pin")
}

// NewPWMRequiredError is returned when a dir-pin motor has no PWM pin to set speed with.
func NewPWMRequiredError() error {
	return errors.New("motor with a dir pin needs a pwm pin")
}
