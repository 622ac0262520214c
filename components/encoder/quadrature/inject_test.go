package quadrature

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/testutils/inject"
)

func TestSubscriptionFailure(t *testing.T) {
	ctx := context.Background()
	b := inject.NewBoard("main")
	b.DigitalInterruptByNameFunc = func(name string) (board.DigitalInterrupt, error) {
		return nil, errors.New("line busy")
	}
	logger, logs := logging.NewObservedTestLogger(t)

	enc, err := NewEncoder(ctx, b, "left", DefaultConfig(pinA, pinB), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, enc.Simulated(), test.ShouldBeTrue)
	test.That(t, enc.Active(), test.ShouldBeFalse)

	entries := logs.FilterMessageSnippet("running simulated").All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].ContextMap()["error"], test.ShouldContainSubstring, "line busy")

	enc.OnEdge(true, true)
	test.That(t, enc.Count(), test.ShouldEqual, int64(0))

	// Nothing was claimed, so nothing is released.
	test.That(t, enc.Close(ctx), test.ShouldBeNil)
	test.That(t, b.ClosePinCap(), test.ShouldBeNil)
}

func TestUnreadableChannelB(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBoard(t)
	defer fake.Close(ctx)

	pin := &inject.GPIOPin{}
	pin.GetFunc = func(ctx context.Context, extra map[string]interface{}) (bool, error) {
		return false, errors.New("read failed")
	}
	b := inject.NewBoard("main")
	b.Board = fake
	b.GPIOPinByNameFunc = func(name string) (board.GPIOPin, error) {
		return pin, nil
	}

	logger, logs := logging.NewObservedTestLogger(t)
	enc, err := NewEncoder(ctx, b, "left", DefaultConfig(pinA, pinB), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, enc.Simulated(), test.ShouldBeFalse)

	di, err := fake.DigitalInterruptByName(pinA)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 3; i++ {
		test.That(t, di.Tick(ctx, i%2 == 0, uint64(time.Now().UnixNano())), test.ShouldBeNil)
	}
	// The worker has received every tick; each was dropped.
	test.That(t, enc.Count(), test.ShouldEqual, int64(0))

	test.That(t, enc.Close(ctx), test.ShouldBeNil)
	test.That(t, b.ClosePinCap(), test.ShouldResemble, []interface{}{pinA, pinB})
	// One warning, not one per edge.
	test.That(t, logs.FilterMessageSnippet("dropping edges").Len(), test.ShouldEqual, 1)
}

func TestClosePinError(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBoard(t)
	defer fake.Close(ctx)

	b := inject.NewBoard("main")
	b.Board = fake
	b.ClosePinFunc = func(ctx context.Context, name string) error {
		if name == pinB {
			return errors.New("pin stuck")
		}
		return fake.ClosePin(ctx, name)
	}

	enc, err := NewEncoder(ctx, b, "left", DefaultConfig(pinA, pinB), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	err = enc.Close(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pin stuck")
	test.That(t, fake.Closed(pinA), test.ShouldBeTrue)

	// The first result is kept.
	test.That(t, enc.Close(ctx), test.ShouldBeError, err)
}

func TestCloseTimeoutKeepsPins(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBoard(t)
	defer fake.Close(ctx)

	release := make(chan struct{})
	pin := &inject.GPIOPin{}
	pin.GetFunc = func(ctx context.Context, extra map[string]interface{}) (bool, error) {
		<-release
		return true, nil
	}
	b := inject.NewBoard("main")
	b.Board = fake
	b.GPIOPinByNameFunc = func(name string) (board.GPIOPin, error) {
		return pin, nil
	}

	enc, err := NewEncoder(ctx, b, "left", DefaultConfig(pinA, pinB), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// The worker takes the tick and then blocks sampling channel b.
	di, err := fake.DigitalInterruptByName(pinA)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, di.Tick(ctx, true, uint64(time.Now().UnixNano())), test.ShouldBeNil)

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err = enc.Close(shortCtx)
	test.That(t, errors.Is(err, context.DeadlineExceeded), test.ShouldBeTrue)
	test.That(t, b.ClosePinCap(), test.ShouldBeNil)

	close(release)
	test.That(t, enc.Close(ctx), test.ShouldBeNil)
	test.That(t, b.ClosePinCap(), test.ShouldResemble, []interface{}{pinA, pinB})
	test.That(t, enc.Close(ctx), test.ShouldBeNil)
	test.That(t, b.ClosePinCap(), test.ShouldBeNil)
}
