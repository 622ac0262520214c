// Package periph implements a board on top of periph.io. Pins are looked up by their periph
// names (for example "GPIO17" or "17" on a Raspberry Pi). Hardware PWM is used on pins listed in
// the config; every other pin gets software PWM.
package periph

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

// ModelName is the name this board registers under.
const ModelName = "periph"

const defaultPWMFreqHz = 800

var (
	hostInitOnce sync.Once
	errHostInit  error
)

func initHost() error {
	hostInitOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			errHostInit = errors.Wrap(err, "initializing periph host drivers")
		}
	})
	return errHostInit
}

// A Config describes the configuration of a periph board.
type Config struct {
	DigitalInterrupts []board.DigitalInterruptConfig `json:"digital_interrupts,omitempty"`
	// HardwarePWMPins names the pins whose PWM is generated by the SoC.
	HardwarePWMPins []string `json:"hardware_pwm_pins,omitempty"`
	// Pull is the input bias for interrupt pins: "up" (default), "down" or "none".
	Pull string `json:"pull,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for idx, c := range conf.DigitalInterrupts {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "digital_interrupts", idx)); err != nil {
			return err
		}
	}
	if _, err := conf.pull(); err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}

func (conf *Config) pull() (gpio.Pull, error) {
	switch conf.Pull {
	case "", "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	case "none":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, errors.Errorf("unknown pull %q", conf.Pull)
	}
}

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
			if err := initHost(); err != nil {
				return nil, err
			}
			return NewBoard(ctx, name, conf, gpioreg.ByName, logger)
		},
	})
}

// PinLookup finds a periph pin by name, returning nil when there is none.
type PinLookup func(name string) gpio.PinIO

// Board hands out periph pins and interrupts.
type Board struct {
	name   string
	conf   *Config
	lookup PinLookup
	pull   gpio.Pull
	logger logging.Logger

	mu         sync.Mutex
	gpios      map[string]*periphGpioPin
	interrupts map[string]*digitalInterrupt
	configured map[string]board.DigitalInterruptConfig
	hwPWM      map[string]bool

	workers utils.StoppableWorkers
}

// NewBoard returns a board resolving pins through lookup.
func NewBoard(
	ctx context.Context,
	name string,
	conf *Config,
	lookup PinLookup,
	logger logging.Logger,
) (*Board, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := conf.Validate(name); err != nil {
		return nil, err
	}
	pull, err := conf.pull()
	if err != nil {
		return nil, err
	}
	b := &Board{
		name:       name,
		conf:       conf,
		lookup:     lookup,
		pull:       pull,
		logger:     logger,
		gpios:      map[string]*periphGpioPin{},
		interrupts: map[string]*digitalInterrupt{},
		configured: map[string]board.DigitalInterruptConfig{},
		hwPWM:      map[string]bool{},
		workers:    utils.NewStoppableWorkersWithContext(ctx),
	}
	for _, c := range conf.DigitalInterrupts {
		b.configured[c.Name] = c
	}
	for _, p := range conf.HardwarePWMPins {
		b.hwPWM[p] = true
	}
	return b, nil
}

// Name returns the configured name of the board.
func (b *Board) Name() string {
	return b.name
}

func (b *Board) pinIO(name string) (gpio.PinIO, error) {
	pin := b.lookup(name)
	if pin == nil {
		return nil, errors.Errorf("no gpio pin named %q", name)
	}
	return pin, nil
}

// GPIOPinByName returns the named pin.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gp, ok := b.gpios[name]; ok {
		return gp, nil
	}
	pin, err := b.pinIO(name)
	if err != nil {
		return nil, err
	}
	gp := &periphGpioPin{
		pin:            pin,
		pinName:        name,
		hwPWMSupported: b.hwPWM[name],
		pwmFreqHz:      defaultPWMFreqHz,
		workers:        b.workers,
		logger:         b.logger,
	}
	b.gpios[name] = gp
	return gp, nil
}

// DigitalInterruptByName returns the named interrupt, configuring its pin as a biased input that
// reports both edges.
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
	pin, err := b.pinIO(config.Pin)
	if err != nil {
		return nil, err
	}
	di, err := newDigitalInterrupt(config, pin, b.pull, b.logger)
	if err != nil {
		return nil, err
	}
	b.interrupts[name] = di
	return di.interrupt, nil
}

// ClosePin stops PWM or edge monitoring on the named pin and drives outputs low.
func (b *Board) ClosePin(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if gp, ok := b.gpios[name]; ok {
		err = multierr.Combine(err, gp.Close())
		delete(b.gpios, name)
	}
	if di, ok := b.interrupts[name]; ok {
		err = multierr.Combine(err, di.Close())
		delete(b.interrupts, name)
	}
	return err
}

// Close releases every pin.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for _, gp := range b.gpios {
		err = multierr.Combine(err, gp.Close())
	}
	for _, di := range b.interrupts {
		err = multierr.Combine(err, di.Close())
	}
	b.workers.Stop()
	b.gpios = map[string]*periphGpioPin{}
	b.interrupts = map[string]*digitalInterrupt{}
	return err
}
