package config

import (
	"testing"

	"go.viam.com/test"

	"github.com/chipurobo/rdk/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)
	test.That(t, cfg.Drive.Left.Pins.A, test.ShouldEqual, "17")
	test.That(t, cfg.Drive.Left.Pins.B, test.ShouldEqual, "27")
	test.That(t, cfg.Drive.Left.Pins.PWM, test.ShouldEqual, "24")
	test.That(t, cfg.Drive.Right.Pins.A, test.ShouldEqual, "22")
	test.That(t, cfg.Drive.Right.Pins.B, test.ShouldEqual, "23")
	test.That(t, cfg.Drive.Right.Pins.PWM, test.ShouldEqual, "25")
	test.That(t, cfg.Encoders.Left.PulsesPerRevolution, test.ShouldEqual, 11)
	test.That(t, cfg.Encoders.Left.WheelDiameterIn, test.ShouldEqual, 4.0)
	test.That(t, cfg.Encoders.Right.GearRatio, test.ShouldEqual, 1.0)
	test.That(t, cfg.Board.Attributes.Has("digital_interrupts"), test.ShouldBeTrue)
}

func TestConfigValidate(t *testing.T) {
	t.Run("no board", func(t *testing.T) {
		cfg := Default()
		cfg.Board = nil
		test.That(t, cfg.Validate(), test.ShouldBeNil)
	})

	t.Run("board without model", func(t *testing.T) {
		cfg := Default()
		cfg.Board.Model = ""
		err := cfg.Validate()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `"board"`)
		test.That(t, err.Error(), test.ShouldContainSubstring, `"model" is required`)
	})

	t.Run("encoder without pin", func(t *testing.T) {
		cfg := Default()
		cfg.Encoders.Right.Pins.B = ""
		err := cfg.Validate()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "encoders.right")
	})

	t.Run("bad geometry", func(t *testing.T) {
		cfg := Default()
		cfg.Encoders.Left.WheelDiameterIn = -1
		err := cfg.Validate()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "wheel_diameter_in")
	})

	t.Run("drive without pins", func(t *testing.T) {
		cfg := Default()
		cfg.Drive.Right.Pins.A = ""
		cfg.Drive.Right.Pins.PWM = ""
		err := cfg.Validate()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "drive.right")
	})

	t.Run("shared pin", func(t *testing.T) {
		cfg := Default()
		cfg.Drive.Left.Pins.PWM = "6"
		err := cfg.Validate()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "pin 6 is already used by encoders.left")
	})

	t.Run("log level", func(t *testing.T) {
		cfg := Default()
		cfg.LogLevel = "loud"
		test.That(t, cfg.Validate(), test.ShouldNotBeNil)
		cfg.LogLevel = "debug"
		test.That(t, cfg.Validate(), test.ShouldBeNil)
		test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
	})
}
