//go:build linux

package genericlinux

import (
	"context"
	"testing"

	"go.viam.com/test"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

func TestGenericLinux(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	b, err := board.New(ctx, ModelName, "pi", utils.AttributeMap{}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Name(), test.ShouldEqual, "pi")

	t.Run("unknown pins fail", func(t *testing.T) {
		_, err := b.GPIOPinByName("not-a-pin")
		test.That(t, err, test.ShouldNotBeNil)
		_, err = b.DigitalInterruptByName("not-a-pin")
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("pins are opened lazily", func(t *testing.T) {
		p1, err := b.GPIOPinByName("17")
		test.That(t, err, test.ShouldBeNil)
		p2, err := b.GPIOPinByName("17")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p2, test.ShouldEqual, p1)

		freq, err := p1.PWMFreq(ctx, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, freq, test.ShouldEqual, uint(defaultPWMFreqHz))

		// A pin claimed for output cannot also be an interrupt.
		_, err = b.DigitalInterruptByName("17")
		test.That(t, err, test.ShouldNotBeNil)

		test.That(t, b.ClosePin(ctx, "17"), test.ShouldBeNil)
	})

	test.That(t, b.Close(ctx), test.ShouldBeNil)
}
