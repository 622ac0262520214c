// Package fake implements a fake board.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

// ModelName is the name the fake board registers under.
const ModelName = "fake"

// A Config describes the configuration of a fake board and all of its connected parts.
type Config struct {
	DigitalInterrupts []board.DigitalInterruptConfig `json:"digital_interrupts,omitempty"`
	// Pins listed here fail lookups, as if they were not wired.
	UnavailablePins []string `json:"unavailable_pins,omitempty"`
	FailNew         bool     `json:"fail_new"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for idx, conf := range conf.DigitalInterrupts {
		if err := conf.Validate(fmt.Sprintf("%s.%s.%d", path, "digital_interrupts", idx)); err != nil {
			return err
		}
	}

	if conf.FailNew {
		return errors.New("whoops")
	}

	return nil
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
			return NewBoard(ctx, name, conf, logger)
		},
	})
}

// NewBoard returns a new fake board.
func NewBoard(ctx context.Context, name string, conf *Config, logger logging.Logger) (*Board, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := conf.Validate(name); err != nil {
		return nil, err
	}

	b := &Board{
		name:        name,
		Digitals:    map[string]*board.BasicDigitalInterrupt{},
		GPIOPins:    map[string]*GPIOPin{},
		unavailable: map[string]struct{}{},
		workers:     utils.NewStoppableWorkers(),
		logger:      logger,
	}
	for _, pin := range conf.UnavailablePins {
		b.unavailable[pin] = struct{}{}
	}

	var errs error
	for _, c := range conf.DigitalInterrupts {
		di, err := board.CreateDigitalInterrupt(c)
		if err != nil {
			errs = multierr.Combine(errs, err)
			continue
		}
		b.Digitals[c.Name] = di
	}
	if errs != nil {
		return nil, errs
	}

	return b, nil
}

// A Board keeps every pin in memory. Pins and interrupts that were not configured are created
// the first time they are asked for.
type Board struct {
	name string

	mu          sync.RWMutex
	Digitals    map[string]*board.BasicDigitalInterrupt
	GPIOPins    map[string]*GPIOPin
	ClosedPins  []string
	CloseCount  int
	unavailable map[string]struct{}
	logger      logging.Logger

	workers utils.StoppableWorkers
}

// Name returns the configured name of the board.
func (b *Board) Name() string {
	return b.name
}

// DigitalInterruptByName returns the interrupt by the given name, creating it if needed.
func (b *Board) DigitalInterruptByName(name string) (board.DigitalInterrupt, error) {
	return b.digitalInterrupt(name)
}

func (b *Board) digitalInterrupt(name string) (*board.BasicDigitalInterrupt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.unavailable[name]; ok {
		return nil, errors.Errorf("cant find DigitalInterrupt (%s)", name)
	}
	d, ok := b.Digitals[name]
	if !ok {
		var err error
		d, err = board.CreateDigitalInterrupt(board.DigitalInterruptConfig{Name: name, Pin: name})
		if err != nil {
			return nil, err
		}
		b.Digitals[name] = d
	}
	return d, nil
}

// GPIOPinByName returns the GPIO pin by the given name, creating it if needed.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	return b.gpioPin(name)
}

func (b *Board) gpioPin(name string) (*GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.unavailable[name]; ok {
		return nil, errors.Errorf("cant find GPIOPin (%s)", name)
	}
	p, ok := b.GPIOPins[name]
	if !ok {
		p = &GPIOPin{}
		b.GPIOPins[name] = p
	}
	return p, nil
}

// ClosePin forgets the named pin and records that it was closed.
func (b *Board) ClosePin(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ClosedPins = append(b.ClosedPins, name)
	delete(b.GPIOPins, name)
	delete(b.Digitals, name)
	return nil
}

// Closed reports whether ClosePin was called for name.
func (b *Board) Closed(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, n := range b.ClosedPins {
		if n == name {
			return true
		}
	}
	return false
}

// QuadratureStep emits one edge on channel a of an encoder wired to pins a and b, first setting
// b to bHigh so that a reader sampling b sees the right level.
func (b *Board) QuadratureStep(ctx context.Context, a, bPin string, aHigh, bHigh bool) error {
	p, err := b.gpioPin(bPin)
	if err != nil {
		return err
	}
	if err := p.Set(ctx, bHigh, nil); err != nil {
		return err
	}
	di, err := b.digitalInterrupt(a)
	if err != nil {
		return err
	}
	return di.Tick(ctx, aHigh, uint64(time.Now().UnixNano()))
}

// StartRotation emits quadrature edges on a and b every period until the board is closed. With
// forward set the edges count up on a 1x decoder, otherwise they count down.
func (b *Board) StartRotation(a, bPin string, forward bool, period time.Duration) {
	b.workers.AddWorkers(func(ctx context.Context) {
		aHigh := false
		for {
			if !goutils.SelectContextOrWait(ctx, period) {
				return
			}
			aHigh = !aHigh
			// Equal levels on A and B count up.
			bHigh := aHigh
			if !forward {
				bHigh = !aHigh
			}
			if err := b.QuadratureStep(ctx, a, bPin, aHigh, bHigh); err != nil {
				if ctx.Err() == nil {
					b.logger.Debugw("fake rotation stopped", "pin", a, "error", err)
				}
				return
			}
		}
	})
}

// Close stops any simulated rotation.
func (b *Board) Close(ctx context.Context) error {
	b.workers.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.CloseCount++
	return nil
}

// A GPIOPin reads back the same set values.
type GPIOPin struct {
	high    bool
	pwm     float64
	pwmFreq uint
	// Err, when set, is returned by every write.
	Err error

	mu sync.Mutex
}

// Set sets the pin to either low or high.
func (gp *GPIOPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	if gp.Err != nil {
		return gp.Err
	}

	gp.high = high
	gp.pwm = 0
	return nil
}

// Get gets the high/low state of the pin.
func (gp *GPIOPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.high, nil
}

// PWM gets the pin's given duty cycle.
func (gp *GPIOPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwm, nil
}

// SetPWM sets the pin to the given duty cycle.
func (gp *GPIOPin) SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	if gp.Err != nil {
		return gp.Err
	}

	gp.pwm = dutyCyclePct
	gp.high = dutyCyclePct > 0
	return nil
}

// PWMFreq gets the PWM frequency of the pin.
func (gp *GPIOPin) PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwmFreq, nil
}

// SetPWMFreq sets the given pin to the given PWM frequency.
func (gp *GPIOPin) SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	if gp.Err != nil {
		return gp.Err
	}

	gp.pwmFreq = freqHz
	return nil
}

// SetErr makes every later write to the pin fail with err.
func (gp *GPIOPin) SetErr(err error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	gp.Err = err
}
