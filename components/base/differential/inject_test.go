package differential

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/chipurobo/rdk/components/motor"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/testutils/inject"
)

func TestMotorErrors(t *testing.T) {
	ctx := context.Background()
	left := &inject.Motor{}
	left.DriveFunc = func(ctx context.Context, direction motor.Direction, duty float64) error {
		return errors.New("overcurrent")
	}
	left.CloseFunc = func(ctx context.Context) error {
		return errors.New("left close")
	}
	right := &inject.Motor{}
	right.DriveFunc = func(ctx context.Context, direction motor.Direction, duty float64) error {
		return nil
	}
	right.CloseFunc = func(ctx context.Context) error {
		return errors.New("right close")
	}
	m := NewMixerFromMotors(left, right, false, logging.NewTestLogger(t))

	err := m.DriveTank(ctx, 0.5, -0.5)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "driving left motor: overcurrent")

	// The right side is still driven.
	test.That(t, right.DriveCap()[1:], test.ShouldResemble, []interface{}{motor.Backward, 0.5})
	test.That(t, left.DriveCap()[1:], test.ShouldResemble, []interface{}{motor.Forward, 0.5})

	err = m.Close(ctx)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left close")
	test.That(t, err.Error(), test.ShouldContainSubstring, "right close")
}

func TestIsMovingError(t *testing.T) {
	ctx := context.Background()
	left := &inject.Motor{}
	left.IsPoweredFunc = func(ctx context.Context) (bool, float64, error) {
		return false, 0, errors.New("no reading")
	}
	m := NewMixerFromMotors(left, &inject.Motor{}, false, logging.NewTestLogger(t))

	_, err := m.IsMoving(ctx)
	test.That(t, err, test.ShouldNotBeNil)
}
