package main

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/chipurobo/rdk/components/base/differential"
	"github.com/chipurobo/rdk/components/motor"
	fakemotor "github.com/chipurobo/rdk/components/motor/fake"
	"github.com/chipurobo/rdk/logging"
)

func shortSequence() []step {
	steps := spinSequence()
	for i := range steps {
		steps[i].duration = time.Millisecond
	}
	return steps
}

func TestRunSequence(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	left := fakemotor.NewMotor("left", logger)
	right := fakemotor.NewMotor("right", logger)
	m := differential.NewMixerFromMotors(left, right, false, logger)

	test.That(t, runSequence(context.Background(), m, 0.8, shortSequence(), time.Millisecond, "run-1", logger), test.ShouldBeNil)

	maneuvers := logs.FilterMessage("maneuver").All()
	test.That(t, len(maneuvers), test.ShouldEqual, 4)
	for i, name := range []string{"forward", "backward", "left", "right"} {
		test.That(t, maneuvers[i].ContextMap()["name"], test.ShouldEqual, name)
		test.That(t, maneuvers[i].ContextMap()["run"], test.ShouldEqual, "run-1")
	}

	// Each maneuver drives both sides and is followed by a stop, then the final stop.
	test.That(t, left.Calls(), test.ShouldEqual, 9)
	dir, duty := left.Last()
	test.That(t, dir, test.ShouldEqual, motor.Stop)
	test.That(t, duty, test.ShouldEqual, 0.0)
	test.That(t, logs.FilterMessage("test complete; motors stopped").Len(), test.ShouldEqual, 1)
}

func TestRunSequenceInterrupted(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	left := fakemotor.NewMotor("left", logger)
	right := fakemotor.NewMotor("right", logger)
	m := differential.NewMixerFromMotors(left, right, false, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, runSequence(ctx, m, 0.8, spinSequence(), time.Second, "run-2", logger), test.ShouldBeNil)

	test.That(t, logs.FilterMessage("maneuver").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("interrupted; motors stopped").Len(), test.ShouldEqual, 1)
	dir, _ := right.Last()
	test.That(t, dir, test.ShouldEqual, motor.Stop)
	test.That(t, right.Calls(), test.ShouldEqual, 2)
}
