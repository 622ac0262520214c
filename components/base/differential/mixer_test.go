package differential

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	fakeboard "github.com/chipurobo/rdk/components/board/fake"
	"github.com/chipurobo/rdk/components/motor"
	fakemotor "github.com/chipurobo/rdk/components/motor/fake"
	"github.com/chipurobo/rdk/logging"
)

func newFakeMixer(t *testing.T, strict bool) (*Mixer, *fakemotor.Motor, *fakemotor.Motor) {
	t.Helper()
	logger := logging.NewTestLogger(t)
	left := fakemotor.NewMotor("left", logger)
	right := fakemotor.NewMotor("right", logger)
	return NewMixerFromMotors(left, right, strict, logger), left, right
}

func assertLast(t *testing.T, m *fakemotor.Motor, dir motor.Direction, duty float64) {
	t.Helper()
	gotDir, gotDuty := m.Last()
	test.That(t, gotDir, test.ShouldEqual, dir)
	test.That(t, gotDuty, test.ShouldAlmostEqual, duty)
}

func TestArcadeToTank(t *testing.T) {
	for _, tc := range []struct {
		forward, turn, left, right float64
	}{
		{1, 1, 1, 0},
		{0, 0, 0, 0},
		{0.5, 0.25, 0.75, 0.25},
		{0, 1, 1, -1},
		{-1, 0.5, -0.5, -1},
		{1, 0, 1, 1},
		{math.Inf(1), 0, 1, 1},
		{math.Inf(-1), 0, -1, -1},
		{0, math.Inf(1), 1, -1},
		{math.Inf(1), math.Inf(1), 1, 0},
	} {
		l, r := ArcadeToTank(tc.forward, tc.turn)
		test.That(t, l, test.ShouldAlmostEqual, tc.left)
		test.That(t, r, test.ShouldAlmostEqual, tc.right)
		test.That(t, math.Abs(l), test.ShouldBeLessThanOrEqualTo, 1.0)
		test.That(t, math.Abs(r), test.ShouldBeLessThanOrEqualTo, 1.0)
	}
}

func TestDriveArcadeInfinite(t *testing.T) {
	ctx := context.Background()
	m, left, right := newFakeMixer(t, false)

	test.That(t, m.DriveArcade(ctx, math.Inf(1), 0), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 1)
	assertLast(t, right, motor.Forward, 1)

	test.That(t, m.DriveTank(ctx, math.Inf(1), math.Inf(1)), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 1)
	assertLast(t, right, motor.Forward, 1)
}

func TestSetMotor(t *testing.T) {
	ctx := context.Background()
	m, left, right := newFakeMixer(t, false)

	test.That(t, m.SetMotor(ctx, motor.Left, -0.5, motor.Forward), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 0.5)
	test.That(t, right.Calls(), test.ShouldEqual, 0)

	test.That(t, m.SetMotor(ctx, motor.Right, 3, motor.Backward), test.ShouldBeNil)
	assertLast(t, right, motor.Backward, 1)

	test.That(t, m.SetMotor(ctx, motor.Right, 0.7, motor.Stop), test.ShouldBeNil)
	assertLast(t, right, motor.Stop, 0)

	test.That(t, m.SetMotor(ctx, motor.Left, 0.7, motor.Direction("sideways")), test.ShouldBeNil)
	assertLast(t, left, motor.Stop, 0)

	test.That(t, m.SetMotor(ctx, motor.Left, math.NaN(), motor.Forward), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 0)

	test.That(t, m.SetMotor(ctx, motor.Side(" LEFT "), 0.4, motor.Direction("Backward")), test.ShouldBeNil)
	assertLast(t, left, motor.Backward, 0.4)
}

func TestSetMotorUnknownSide(t *testing.T) {
	ctx := context.Background()

	t.Run("lenient", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		left := fakemotor.NewMotor("left", logger)
		right := fakemotor.NewMotor("right", logger)
		m := NewMixerFromMotors(left, right, false, logger)

		test.That(t, m.SetMotor(ctx, motor.Side("middle"), 0.5, motor.Forward), test.ShouldBeNil)
		test.That(t, left.Calls(), test.ShouldEqual, 0)
		test.That(t, right.Calls(), test.ShouldEqual, 0)
		test.That(t, logs.FilterMessage("ignoring command for unknown side").Len(), test.ShouldEqual, 1)
	})

	t.Run("strict", func(t *testing.T) {
		m, left, right := newFakeMixer(t, true)
		err := m.SetMotor(ctx, motor.Side("middle"), 0.5, motor.Forward)
		test.That(t, errors.Is(err, motor.ErrInvalidArgument), test.ShouldBeTrue)
		test.That(t, left.Calls(), test.ShouldEqual, 0)
		test.That(t, right.Calls(), test.ShouldEqual, 0)
	})
}

func TestDriveTank(t *testing.T) {
	ctx := context.Background()
	m, left, right := newFakeMixer(t, false)

	test.That(t, m.DriveTank(ctx, 0.6, -0.3), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 0.6)
	assertLast(t, right, motor.Backward, 0.3)

	test.That(t, m.DriveTank(ctx, 2, -5), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 1)
	assertLast(t, right, motor.Backward, 1)

	moving, err := m.IsMoving(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moving, test.ShouldBeTrue)

	test.That(t, m.DriveTank(ctx, 0, math.NaN()), test.ShouldBeNil)
	assertLast(t, left, motor.Stop, 0)
	assertLast(t, right, motor.Stop, 0)

	moving, err = m.IsMoving(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moving, test.ShouldBeFalse)
}

func TestDriveArcade(t *testing.T) {
	ctx := context.Background()
	m, left, right := newFakeMixer(t, false)

	test.That(t, m.DriveArcade(ctx, 1, 1), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 1)
	assertLast(t, right, motor.Stop, 0)

	test.That(t, m.DriveArcade(ctx, 0, -1), test.ShouldBeNil)
	assertLast(t, left, motor.Backward, 1)
	assertLast(t, right, motor.Forward, 1)

	test.That(t, m.DriveArcade(ctx, 0, 0), test.ShouldBeNil)
	assertLast(t, left, motor.Stop, 0)
	assertLast(t, right, motor.Stop, 0)
}

func TestManeuvers(t *testing.T) {
	ctx := context.Background()
	m, left, right := newFakeMixer(t, false)

	test.That(t, m.Forward(ctx, 0.6), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 0.6)
	assertLast(t, right, motor.Forward, 0.6)

	test.That(t, m.Backward(ctx, -0.6), test.ShouldBeNil)
	assertLast(t, left, motor.Backward, 0.6)
	assertLast(t, right, motor.Backward, 0.6)

	test.That(t, m.SpinLeft(ctx, 0.5), test.ShouldBeNil)
	assertLast(t, left, motor.Backward, 0.5)
	assertLast(t, right, motor.Forward, 0.5)

	test.That(t, m.SpinRight(ctx, 0.5), test.ShouldBeNil)
	assertLast(t, left, motor.Forward, 0.5)
	assertLast(t, right, motor.Backward, 0.5)

	test.That(t, m.Stop(ctx), test.ShouldBeNil)
	assertLast(t, left, motor.Stop, 0)
	assertLast(t, right, motor.Stop, 0)
}

func TestStrictInput(t *testing.T) {
	ctx := context.Background()
	m, left, right := newFakeMixer(t, true)

	err := m.DriveTank(ctx, 1.5, 0)
	test.That(t, errors.Is(err, motor.ErrInvalidArgument), test.ShouldBeTrue)
	err = m.DriveArcade(ctx, math.NaN(), 0)
	test.That(t, errors.Is(err, motor.ErrInvalidArgument), test.ShouldBeTrue)
	err = m.SetMotor(ctx, motor.Left, 0.5, motor.Direction("up"))
	test.That(t, errors.Is(err, motor.ErrInvalidArgument), test.ShouldBeTrue)
	test.That(t, left.Calls(), test.ShouldEqual, 0)
	test.That(t, right.Calls(), test.ShouldEqual, 0)

	test.That(t, m.DriveTank(ctx, -1, 1), test.ShouldBeNil)
	assertLast(t, left, motor.Backward, 1)
	assertLast(t, right, motor.Forward, 1)

	test.That(t, ValidateSpeed(0.3), test.ShouldBeNil)
	test.That(t, ValidateSpeed(-1.01), test.ShouldNotBeNil)
}

func TestMixerOnBoard(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b, err := fakeboard.NewBoard(ctx, "main", nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer b.Close(ctx)

	m, err := NewMixer(ctx, b, DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Simulated(), test.ShouldBeFalse)

	test.That(t, m.DriveTank(ctx, 0.5, -0.25), test.ShouldBeNil)
	high, err := b.GPIOPins["17"].Get(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, high, test.ShouldBeTrue)
	high, err = b.GPIOPins["23"].Get(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, high, test.ShouldBeTrue)
	duty, err := b.GPIOPins["24"].PWM(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, duty, test.ShouldEqual, 0.5)
	duty, err = b.GPIOPins["25"].PWM(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, duty, test.ShouldEqual, 0.25)

	test.That(t, m.Close(ctx), test.ShouldBeNil)
	for _, pin := range []string{"17", "27", "24", "22", "23", "25"} {
		test.That(t, b.Closed(pin), test.ShouldBeTrue)
	}
}

func TestMixerPinWriteError(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b, err := fakeboard.NewBoard(ctx, "main", nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer b.Close(ctx)

	m, err := NewMixer(ctx, b, DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	b.GPIOPins["25"].SetErr(errors.New("bus fault"))

	err = m.Forward(ctx, 0.5)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bus fault")
	test.That(t, err.Error(), test.ShouldContainSubstring, "right")
}

func TestMixerDegraded(t *testing.T) {
	ctx := context.Background()

	t.Run("no board", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		m, err := NewMixer(ctx, nil, DefaultConfig(), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, m.Simulated(), test.ShouldBeTrue)
		test.That(t, m.SideSimulated(motor.Left), test.ShouldBeTrue)
		test.That(t, m.SideSimulated(motor.Right), test.ShouldBeTrue)
		test.That(t, logs.FilterMessageSnippet("running simulated").Len(), test.ShouldEqual, 2)

		test.That(t, m.DriveArcade(ctx, 0.5, 0), test.ShouldBeNil)
		entries := logs.FilterMessage("simulated motor").All()
		test.That(t, len(entries), test.ShouldBeGreaterThanOrEqualTo, 2)
		last := entries[len(entries)-1].ContextMap()
		test.That(t, last["motor"], test.ShouldEqual, "right")
		test.That(t, last["direction"], test.ShouldEqual, "forward")
		test.That(t, last["duty"], test.ShouldEqual, 0.5)

		test.That(t, m.Stop(ctx), test.ShouldBeNil)
		test.That(t, m.Close(ctx), test.ShouldBeNil)
	})

	t.Run("missing pin", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		b, err := fakeboard.NewBoard(ctx, "main", &fakeboard.Config{UnavailablePins: []string{"23"}}, logger)
		test.That(t, err, test.ShouldBeNil)
		defer b.Close(ctx)

		m, err := NewMixer(ctx, b, DefaultConfig(), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, m.SideSimulated(motor.Left), test.ShouldBeFalse)
		test.That(t, m.SideSimulated(motor.Right), test.ShouldBeTrue)
		test.That(t, logs.FilterMessageSnippet("running simulated").Len(), test.ShouldEqual, 1)
		// The right motor gave back the pin it claimed before 23 failed.
		test.That(t, b.Closed("22"), test.ShouldBeTrue)
		test.That(t, m.DriveTank(ctx, 0.5, 0.5), test.ShouldBeNil)
		test.That(t, m.Close(ctx), test.ShouldBeNil)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewMixer(ctx, nil, Config{}, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldNotBeNil)
	})
}
