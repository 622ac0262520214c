package quadrature

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Decoding modes.
const (
	// Decoding1x counts both edges of channel A and samples channel B for direction.
	Decoding1x = "1x"
	// Decoding4x counts both edges of both channels through a state-transition table.
	Decoding4x = "4x"
)

// Defaults matching the stock drive wheels.
const (
	DefaultPulsesPerRevolution = 11
	DefaultWheelDiameterIn     = 4.0
	DefaultGearRatio           = 1.0
)

// Pins describes the configuration of Pins for a quadrature encoder.
type Pins struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Config describes the configuration of a quadrature encoder.
type Config struct {
	Pins                Pins    `json:"pins"`
	PulsesPerRevolution int     `json:"ppr"`
	WheelDiameterIn     float64 `json:"wheel_diameter_in"`
	GearRatio           float64 `json:"gear_ratio"`
	ApplyGearRatio      bool    `json:"apply_gear_ratio,omitempty"`
	Decoding            string  `json:"decoding,omitempty"`
}

// DefaultConfig returns the stock wheel geometry on the given pins.
func DefaultConfig(a, b string) Config {
	return Config{
		Pins:                Pins{A: a, B: b},
		PulsesPerRevolution: DefaultPulsesPerRevolution,
		WheelDiameterIn:     DefaultWheelDiameterIn,
		GearRatio:           DefaultGearRatio,
		Decoding:            Decoding1x,
	}
}

// FillDefaults sets every zero geometry field to its default.
func (conf *Config) FillDefaults() {
	if conf.PulsesPerRevolution == 0 {
		conf.PulsesPerRevolution = DefaultPulsesPerRevolution
	}
	if conf.WheelDiameterIn == 0 {
		conf.WheelDiameterIn = DefaultWheelDiameterIn
	}
	if conf.GearRatio == 0 {
		conf.GearRatio = DefaultGearRatio
	}
	if conf.Decoding == "" {
		conf.Decoding = Decoding1x
	}
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Pins.A == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pins.a")
	}
	if conf.Pins.B == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pins.b")
	}
	if conf.Pins.A == conf.Pins.B {
		return utils.NewConfigValidationError(path, errors.New("pins a and b must differ"))
	}
	if conf.PulsesPerRevolution <= 0 {
		return utils.NewConfigValidationError(path, errors.New("ppr must be positive"))
	}
	if !(conf.WheelDiameterIn > 0) {
		return utils.NewConfigValidationError(path, errors.New("wheel_diameter_in must be positive"))
	}
	if !(conf.GearRatio > 0) {
		return utils.NewConfigValidationError(path, errors.New("gear_ratio must be positive"))
	}
	switch conf.Decoding {
	case "", Decoding1x, Decoding4x:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown decoding %q", conf.Decoding))
	}
	return nil
}

func (conf *Config) decoding() string {
	if conf.Decoding == "" {
		return Decoding1x
	}
	return conf.Decoding
}

// countsPerRevolution is how many counts a revolution produces in the configured mode. Both A
// edges are counted in 1x, so ppr already means counts; 4x adds the B edges.
func (conf *Config) countsPerRevolution() int {
	if conf.decoding() == Decoding4x {
		return 2 * conf.PulsesPerRevolution
	}
	return conf.PulsesPerRevolution
}
