package board

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"
)

func nowNanosecondsTest() uint64 {
	return uint64(time.Now().UnixNano())
}

func TestBasicDigitalInterrupt1(t *testing.T) {
	config := DigitalInterruptConfig{
		Name: "i1",
		Pin:  "5",
	}

	i, err := CreateDigitalInterrupt(config)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, i.Name(), test.ShouldEqual, "i1")

	intVal, err := i.Value(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intVal, test.ShouldEqual, int64(0))
	test.That(t, i.Tick(context.Background(), true, nowNanosecondsTest()), test.ShouldBeNil)
	intVal, err = i.Value(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intVal, test.ShouldEqual, int64(1))
	test.That(t, i.Tick(context.Background(), false, nowNanosecondsTest()), test.ShouldBeNil)
	intVal, err = i.Value(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intVal, test.ShouldEqual, int64(1))

	c := make(chan Tick)
	i.AddCallback(c)

	timeNanoSec := nowNanosecondsTest()
	go func() { i.Tick(context.Background(), true, timeNanoSec) }()
	v := <-c
	test.That(t, v.High, test.ShouldBeTrue)
	test.That(t, v.Name, test.ShouldEqual, "i1")
	test.That(t, v.TimestampNanosec, test.ShouldEqual, timeNanoSec)

	timeNanoSec = nowNanosecondsTest()
	go func() { i.Tick(context.Background(), false, timeNanoSec) }()
	v = <-c
	test.That(t, v.High, test.ShouldBeFalse)
	test.That(t, v.TimestampNanosec, test.ShouldEqual, timeNanoSec)

	i.RemoveCallback(c)

	// With no callbacks left, ticks do not block.
	test.That(t, i.Tick(context.Background(), true, nowNanosecondsTest()), test.ShouldBeNil)
	intVal, err = i.Value(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intVal, test.ShouldEqual, int64(3))
}

func TestDigitalInterruptDebounce(t *testing.T) {
	i, err := CreateDigitalInterrupt(DigitalInterruptConfig{Name: "i1", Pin: "5", DebounceMicros: 1000})
	test.That(t, err, test.ShouldBeNil)

	ctx := context.Background()
	test.That(t, i.Tick(ctx, true, 1_000_000), test.ShouldBeNil)
	// 500µs later: bounce.
	test.That(t, i.Tick(ctx, true, 1_500_000), test.ShouldBeNil)
	// 1ms after the accepted edge: real.
	test.That(t, i.Tick(ctx, true, 2_000_000), test.ShouldBeNil)

	intVal, err := i.Value(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intVal, test.ShouldEqual, int64(2))

	_, err = CreateDigitalInterrupt(DigitalInterruptConfig{Name: "i2", Pin: "6", DebounceMicros: -1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTickRespectsContext(t *testing.T) {
	i, err := CreateDigitalInterrupt(DigitalInterruptConfig{Name: "i1", Pin: "5"})
	test.That(t, err, test.ShouldBeNil)

	// Nobody reads from this channel.
	i.AddCallback(make(chan Tick))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = i.Tick(ctx, true, nowNanosecondsTest())
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDigitalInterruptConfigValidate(t *testing.T) {
	conf := DigitalInterruptConfig{}
	err := conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "name")

	conf.Name = "enc-a"
	err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pin")

	conf.Pin = "5"
	test.That(t, conf.Validate("path"), test.ShouldBeNil)
}
