//go:build linux

// Package genericlinux implements a Linux board on top of the GPIO character device
// (/dev/gpiochipN). Outputs support software PWM; inputs support edge interrupts.
package genericlinux

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

// ModelName is the name this board registers under.
const ModelName = "genericlinux"

const defaultPWMFreqHz = 800

func init() {
	board.RegisterModel(ModelName, board.Registration{
		Constructor: func(
			ctx context.Context,
			name string,
			attributes utils.AttributeMap,
			logger logging.Logger,
		) (board.Board, error) {
			conf := &Config{}
			if _, err := utils.TransformAttributeMapToStruct(conf, attributes); err != nil {
				return nil, err
			}
			return NewBoard(ctx, name, conf, logger)
		},
	})
}

// Board is a Linux board whose pins are lines on GPIO character devices.
type Board struct {
	name   string
	conf   *Config
	logger logging.Logger

	mu         sync.Mutex
	gpios      map[string]*gpioPin
	interrupts map[string]*digitalInterrupt
	// Interrupts created from the config rather than on demand, by name.
	configured map[string]board.DigitalInterruptConfig

	workers utils.StoppableWorkers
}

// NewBoard validates conf and returns a board. Lines are claimed the first time a pin or
// interrupt is asked for.
func NewBoard(ctx context.Context, name string, conf *Config, logger logging.Logger) (*Board, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := conf.Validate(name); err != nil {
		return nil, err
	}
	b := &Board{
		name:       name,
		conf:       conf,
		logger:     logger,
		gpios:      map[string]*gpioPin{},
		interrupts: map[string]*digitalInterrupt{},
		configured: map[string]board.DigitalInterruptConfig{},
		workers:    utils.NewStoppableWorkers(),
	}
	for _, c := range conf.DigitalInterrupts {
		b.configured[c.Name] = c
	}
	return b, nil
}

// Name returns the configured name of the board.
func (b *Board) Name() string {
	return b.name
}

// GPIOPinByName returns the named pin. A pin that is already in use as an interrupt can be read
// but not driven.
func (b *Board) GPIOPinByName(pinName string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pin, ok := b.gpios[pinName]; ok {
		return pin, nil
	}
	for _, di := range b.interrupts {
		if di.interrupt.Config().Pin == pinName {
			return gpioInterruptWrapperPin{interrupt: di}, nil
		}
	}

	mapping, err := b.conf.Mapping(pinName)
	if err != nil {
		return nil, err
	}
	pin := &gpioPin{
		name:       pinName,
		devicePath: mapping.GPIOChipDev,
		offset:     uint32(mapping.GPIO),
		pwmFreqHz:  defaultPWMFreqHz,
		workers:    b.workers,
		logger:     b.logger,
	}
	b.gpios[pinName] = pin
	return pin, nil
}

// DigitalInterruptByName returns the named interrupt, opening its line for both edges if this is
// the first use. Names that are not configured are treated as pin names.
func (b *Board) DigitalInterruptByName(name string) (board.DigitalInterrupt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if di, ok := b.interrupts[name]; ok {
		return di.interrupt, nil
	}

	config, ok := b.configured[name]
	if !ok {
		config = board.DigitalInterruptConfig{Name: name, Pin: name}
	}
	if _, inUse := b.gpios[config.Pin]; inUse {
		return nil, errors.Errorf("pin %s is already in use as a gpio pin", config.Pin)
	}
	mapping, err := b.conf.Mapping(config.Pin)
	if err != nil {
		return nil, err
	}
	di, err := newDigitalInterrupt(config, mapping, b.logger)
	if err != nil {
		return nil, err
	}
	b.interrupts[name] = di
	return di.interrupt, nil
}

// ClosePin releases the line behind the named pin or interrupt.
func (b *Board) ClosePin(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if pin, ok := b.gpios[name]; ok {
		err = multierr.Combine(err, pin.Close())
		delete(b.gpios, name)
	}
	if di, ok := b.interrupts[name]; ok {
		err = multierr.Combine(err, di.Close())
		delete(b.interrupts, name)
	}
	return err
}

// Close stops software PWM and releases every line.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for _, pin := range b.gpios {
		err = multierr.Combine(err, pin.Close())
	}
	for _, di := range b.interrupts {
		err = multierr.Combine(err, di.Close())
	}
	b.workers.Stop()
	b.gpios = map[string]*gpioPin{}
	b.interrupts = map[string]*digitalInterrupt{}
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("closing board %s", b.name))
	}
	return nil
}
