// Package config defines the structures to configure a robot and its connected parts.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/chipurobo/rdk/components/base/differential"
	"github.com/chipurobo/rdk/components/encoder/quadrature"
	"github.com/chipurobo/rdk/components/motor/gpio"
	"github.com/chipurobo/rdk/logging"
	rutils "github.com/chipurobo/rdk/utils"
)

// DefaultDebounceMicros drops encoder edges closer together than 1ms.
const DefaultDebounceMicros = 1000

// A Config describes the configuration of a robot.
type Config struct {
	// Board is nil when the robot runs without hardware.
	Board    *BoardConfig        `json:"board,omitempty"`
	Encoders EncodersConfig      `json:"encoders"`
	Drive    differential.Config `json:"drive"`
	LogLevel string              `json:"log_level,omitempty"`

	ConfigFilePath string `json:"-"`
}

// BoardConfig selects a board model and holds its model specific attributes.
type BoardConfig struct {
	Name       string              `json:"name"`
	Model      string              `json:"model"`
	Attributes rutils.AttributeMap `json:"attributes,omitempty"`
}

// EncodersConfig holds one encoder per drive wheel.
type EncodersConfig struct {
	Left  quadrature.Config `json:"left"`
	Right quadrature.Config `json:"right"`
}

// Default returns the stock robot: a linux board, encoders on 5/6 and 16/26 and motors wired
// per differential.DefaultConfig.
func Default() *Config {
	left := quadrature.DefaultConfig("5", "6")
	right := quadrature.DefaultConfig("16", "26")
	interrupts := []interface{}{}
	for _, pin := range []string{left.Pins.A, right.Pins.A} {
		interrupts = append(interrupts, map[string]interface{}{
			"name":            pin,
			"pin":             pin,
			"debounce_micros": DefaultDebounceMicros,
		})
	}
	return &Config{
		Board: &BoardConfig{
			Name:       "pi",
			Model:      "genericlinux",
			Attributes: rutils.AttributeMap{"digital_interrupts": interrupts},
		},
		Encoders: EncodersConfig{Left: left, Right: right},
		Drive:    differential.DefaultConfig(),
		LogLevel: "info",
	}
}

// Validate ensures all parts of the config are valid.
func (bc *BoardConfig) Validate(path string) error {
	if bc.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if bc.Model == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	}
	return nil
}

// FillDefaults sets unset encoder geometry and the log level to their defaults.
func (c *Config) FillDefaults() {
	c.Encoders.Left.FillDefaults()
	c.Encoders.Right.FillDefaults()
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate ensures all parts of the config are valid. Pins shared between parts are rejected.
func (c *Config) Validate() error {
	if c.Board != nil {
		if err := c.Board.Validate("board"); err != nil {
			return err
		}
	}
	if err := c.Encoders.Left.Validate("encoders.left"); err != nil {
		return err
	}
	if err := c.Encoders.Right.Validate("encoders.right"); err != nil {
		return err
	}
	if err := c.Drive.Validate("drive"); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return utils.NewConfigValidationError("log_level", err)
		}
	}
	return c.validatePinsUnique()
}

func (c *Config) validatePinsUnique() error {
	owners := map[string]string{}
	claim := func(path, pin string) error {
		if pin == "" {
			return nil
		}
		if other, ok := owners[pin]; ok {
			return utils.NewConfigValidationError(path, errors.Errorf("pin %s is already used by %s", pin, other))
		}
		owners[pin] = path
		return nil
	}
	sides := []struct {
		name    string
		encoder quadrature.Config
	}{
		{"left", c.Encoders.Left},
		{"right", c.Encoders.Right},
	}
	for _, side := range sides {
		path := fmt.Sprintf("encoders.%s", side.name)
		if err := claim(path, side.encoder.Pins.A); err != nil {
			return err
		}
		if err := claim(path, side.encoder.Pins.B); err != nil {
			return err
		}
	}
	for _, side := range []struct {
		name string
		pins gpio.PinConfig
	}{
		{"left", c.Drive.Left.Pins},
		{"right", c.Drive.Right.Pins},
	} {
		path := fmt.Sprintf("drive.%s", side.name)
		for _, pin := range []string{side.pins.A, side.pins.B, side.pins.Direction, side.pins.PWM, side.pins.EnablePin} {
			if err := claim(path, pin); err != nil {
				return err
			}
		}
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() logging.Level {
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}
