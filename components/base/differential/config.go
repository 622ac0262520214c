package differential

import (
	"fmt"

	"github.com/chipurobo/rdk/components/motor/gpio"
)

// Config describes the two sides of a differential drive.
type Config struct {
	Left  gpio.Config `json:"left"`
	Right gpio.Config `json:"right"`
	// StrictInput rejects out-of-range speeds and unknown directions instead of clamping them.
	StrictInput bool `json:"strict_input,omitempty"`
}

// DefaultConfig returns the stock wiring: direction pins 17/27 with enable 24 on the left and
// 22/23 with enable 25 on the right, driven by an L298N style bridge.
func DefaultConfig() Config {
	return Config{
		Left:  gpio.Config{Pins: gpio.PinConfig{A: "17", B: "27", PWM: "24"}},
		Right: gpio.Config{Pins: gpio.PinConfig{A: "22", B: "23", PWM: "25"}},
	}
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if err := conf.Left.Validate(fmt.Sprintf("%s.%s", path, "left")); err != nil {
		return err
	}
	return conf.Right.Validate(fmt.Sprintf("%s.%s", path, "right"))
}
