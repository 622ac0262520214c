//go:build linux

// Package genericlinux is for Linux boards, and this particular file is for GPIO pins using the
// ioctl interface, indirectly by way of mkch's gpio package.
package genericlinux

import (
	"context"
	"sync"
	"time"

	"github.com/mkch/gpio"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/chipurobo/rdk/logging"
	rdkutils "github.com/chipurobo/rdk/utils"
)

const consumerName = "chipurobo-gpio"

type gpioPin struct {
	// These values should both be considered immutable.
	name       string
	devicePath string
	offset     uint32

	// These values are mutable. Lock the mutex when interacting with them.
	line            *gpio.Line
	isOutput        bool
	pwmRunning      bool
	pwmFreqHz       uint
	pwmDutyCyclePct float64

	mu      sync.Mutex
	workers rdkutils.StoppableWorkers
	logger  logging.Logger
}

// This is a private helper function that should only be called when the mutex is locked. It sets
// pin.line to a line opened in the requested direction or returns an error.
func (pin *gpioPin) openGpioFd(asOutput bool) error {
	if pin.line != nil {
		if pin.isOutput == asOutput {
			return nil
		}
		// Wrong direction; release it and claim it again.
		if err := pin.line.Close(); err != nil {
			return err
		}
		pin.line = nil
	}

	chip, err := gpio.OpenChip(pin.devicePath)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	flags := gpio.Input
	if asOutput {
		flags = gpio.Output
	}
	// The 0 just means the default value for this pin is off. We'll set it to the intended value
	// in Set(), below.
	line, err := chip.OpenLine(pin.offset, 0, flags, consumerName)
	if err != nil {
		return errors.Wrapf(err, "opening line %d on %s", pin.offset, pin.devicePath)
	}
	pin.line = line
	pin.isOutput = asOutput
	return nil
}

func (pin *gpioPin) Set(ctx context.Context, isHigh bool, extra map[string]interface{}) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openGpioFd(true); err != nil {
		return err
	}

	pin.pwmRunning = false
	return pin.setInternal(isHigh)
}

// This function assumes you've already locked the mutex. It sets the value of a pin without
// changing whether the pin is part of a PWM loop.
func (pin *gpioPin) setInternal(isHigh bool) error {
	var value byte
	if isHigh {
		value = 1
	}
	return pin.line.SetValue(value)
}

func (pin *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	// An output line reads back what we last drove it to; anything else is read as an input.
	if err := pin.openGpioFd(pin.line != nil && pin.isOutput); err != nil {
		return false, err
	}

	value, err := pin.line.Value()
	if err != nil {
		return false, err
	}

	// We'd expect value to be either 0 or 1, but any non-zero value should be considered high.
	return value != 0, nil
}

// Lock the mutex before calling this! We'll spin up a background goroutine to create a PWM signal
// in software, if we're supposed to and one isn't already running.
func (pin *gpioPin) startSoftwarePWM() error {
	if err := pin.openGpioFd(true); err != nil {
		return err
	}
	if pin.pwmDutyCyclePct == 0 || pin.pwmFreqHz == 0 {
		// We don't have both parameters set up. Stop any PWM loop we might have started already.
		pin.pwmRunning = false
		return pin.setInternal(false)
	}
	if pin.pwmDutyCyclePct >= 1 {
		pin.pwmRunning = false
		return pin.setInternal(true)
	}
	if pin.pwmRunning {
		return nil
	}

	pin.pwmRunning = true
	pin.workers.AddWorkers(pin.softwarePwmLoop)
	return nil
}

// We turn the pin either on or off, and then wait until it's time to turn it off or on again (or
// until we're supposed to shut down). We return whether we should continue the software PWM cycle.
func (pin *gpioPin) halfPwmCycle(ctx context.Context, shouldBeOn bool) bool {
	var dutyCycle float64
	var freqHz uint

	shouldContinue := func() bool {
		pin.mu.Lock()
		defer pin.mu.Unlock()
		if !pin.pwmRunning {
			return false
		}

		dutyCycle = pin.pwmDutyCyclePct
		freqHz = pin.pwmFreqHz

		// A failed toggle is not fatal; the next half cycle tries again.
		if err := pin.setInternal(shouldBeOn); err != nil {
			pin.logger.Debugw("software pwm toggle failed", "pin", pin.name, "error", err)
		}
		return true
	}()

	if !shouldContinue {
		return false
	}

	if !shouldBeOn {
		dutyCycle = 1 - dutyCycle
	}
	duration := time.Duration(float64(time.Second) * dutyCycle / float64(freqHz))
	return utils.SelectContextOrWait(ctx, duration)
}

func (pin *gpioPin) softwarePwmLoop(ctx context.Context) {
	for {
		if !pin.halfPwmCycle(ctx, true) {
			return
		}
		if !pin.halfPwmCycle(ctx, false) {
			return
		}
	}
}

func (pin *gpioPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	return pin.pwmDutyCyclePct, nil
}

func (pin *gpioPin) SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	pin.pwmDutyCyclePct = dutyCyclePct
	return pin.startSoftwarePWM()
}

func (pin *gpioPin) PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	return pin.pwmFreqHz, nil
}

func (pin *gpioPin) SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if freqHz == 0 {
		freqHz = defaultPWMFreqHz
	}
	pin.pwmFreqHz = freqHz
	return pin.startSoftwarePWM()
}

// Close drives the pin low and releases the line so we don't leak file descriptors.
func (pin *gpioPin) Close() error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	pin.pwmRunning = false
	if pin.line == nil {
		return nil
	}

	var err error
	if pin.isOutput {
		err = pin.setInternal(false)
	}
	if closeErr := pin.line.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	pin.line = nil
	return err
}
