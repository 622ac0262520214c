//go:build linux

// Package genericlinux is for Linux boards, and this particular file is for digital interrupt pins
// using the ioctl interface, indirectly by way of mkch's gpio package.
package genericlinux

import (
	"context"

	"github.com/mkch/gpio"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	rdkutils "github.com/chipurobo/rdk/utils"
)

type digitalInterrupt struct {
	interrupt *board.BasicDigitalInterrupt
	line      *gpio.LineWithEvent
	workers   rdkutils.StoppableWorkers
	logger    logging.Logger
}

func newDigitalInterrupt(
	config board.DigitalInterruptConfig,
	mapping GPIOBoardMapping,
	logger logging.Logger,
) (*digitalInterrupt, error) {
	chip, err := gpio.OpenChip(mapping.GPIOChipDev)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	line, err := chip.OpenLineWithEvents(
		uint32(mapping.GPIO), gpio.Input, gpio.BothEdges, consumerName)
	if err != nil {
		return nil, errors.Wrapf(err, "opening interrupt line %d on %s", mapping.GPIO, mapping.GPIOChipDev)
	}

	interrupt, err := board.CreateDigitalInterrupt(config)
	if err != nil {
		return nil, multierr.Combine(err, line.Close())
	}

	result := &digitalInterrupt{
		interrupt: interrupt,
		line:      line,
		logger:    logger,
	}
	result.workers = rdkutils.NewStoppableWorkers(result.monitor)
	return result, nil
}

func (di *digitalInterrupt) monitor(ctx context.Context) {
	events := di.line.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := di.interrupt.Tick(ctx, event.RisingEdge, uint64(event.Time.UnixNano())); err != nil &&
				ctx.Err() == nil {
				di.logger.Debugw("dropped interrupt tick", "interrupt", di.interrupt.Name(), "error", err)
			}
		}
	}
}

// Close stops the monitor before releasing the line, so no tick is delivered afterwards.
func (di *digitalInterrupt) Close() error {
	di.workers.Stop()
	return di.line.Close()
}

// gpioInterruptWrapperPin lets the current level of an interrupt line be read like any other pin.
type gpioInterruptWrapperPin struct {
	interrupt *digitalInterrupt
}

func (gp gpioInterruptWrapperPin) Set(
	ctx context.Context, isHigh bool, extra map[string]interface{},
) error {
	return errors.New("cannot set value of a digital interrupt pin")
}

func (gp gpioInterruptWrapperPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	value, err := gp.interrupt.line.Value()
	if err != nil {
		return false, err
	}

	// We'd expect value to be either 0 or 1, but any non-zero value should be considered high.
	return value != 0, nil
}

func (gp gpioInterruptWrapperPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	return 0, errors.New("cannot get PWM of a digital interrupt pin")
}

func (gp gpioInterruptWrapperPin) SetPWM(
	ctx context.Context, dutyCyclePct float64, extra map[string]interface{},
) error {
	return errors.New("cannot set PWM of a digital interrupt pin")
}

func (gp gpioInterruptWrapperPin) PWMFreq(
	ctx context.Context, extra map[string]interface{},
) (uint, error) {
	return 0, errors.New("cannot get PWM freq of a digital interrupt pin")
}

func (gp gpioInterruptWrapperPin) SetPWMFreq(
	ctx context.Context, freqHz uint, extra map[string]interface{},
) error {
	return errors.New("cannot set PWM freq of a digital interrupt pin")
}
