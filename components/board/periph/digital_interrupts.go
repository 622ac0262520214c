package periph

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

// WaitForEdge blocks in the driver, so the monitor wakes at this interval to notice shutdown.
const edgePollInterval = 100 * time.Millisecond

type digitalInterrupt struct {
	interrupt *board.BasicDigitalInterrupt
	pin       gpio.PinIO
	workers   utils.StoppableWorkers
	logger    logging.Logger
}

func newDigitalInterrupt(
	config board.DigitalInterruptConfig,
	pin gpio.PinIO,
	pull gpio.Pull,
	logger logging.Logger,
) (*digitalInterrupt, error) {
	if err := pin.In(pull, gpio.BothEdges); err != nil {
		return nil, errors.Wrapf(err, "enabling edge detection on %s", config.Pin)
	}
	interrupt, err := board.CreateDigitalInterrupt(config)
	if err != nil {
		return nil, err
	}
	di := &digitalInterrupt{
		interrupt: interrupt,
		pin:       pin,
		logger:    logger,
	}
	di.workers = utils.NewStoppableWorkers(di.monitor)
	return di, nil
}

func (di *digitalInterrupt) monitor(ctx context.Context) {
	for ctx.Err() == nil {
		if !di.pin.WaitForEdge(edgePollInterval) {
			continue
		}
		now := uint64(time.Now().UnixNano())
		high := di.pin.Read() == gpio.High
		if err := di.interrupt.Tick(ctx, high, now); err != nil && ctx.Err() == nil {
			di.logger.Debugw("dropped interrupt tick", "interrupt", di.interrupt.Name(), "error", err)
		}
	}
}

// Close stops edge monitoring and turns off edge detection on the pin.
func (di *digitalInterrupt) Close() error {
	di.workers.Stop()
	return di.pin.In(gpio.PullNoChange, gpio.NoEdge)
}
