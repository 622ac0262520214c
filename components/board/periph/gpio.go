package periph

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/utils"
)

type periphGpioPin struct {
	pin            gpio.PinIO
	pinName        string
	hwPWMSupported bool

	mu         sync.Mutex
	pwmRunning bool
	dutyCycle  float64
	pwmFreqHz  uint

	workers utils.StoppableWorkers
	logger  logging.Logger
}

func (gp *periphGpioPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.pwmRunning = false
	gp.dutyCycle = 0
	return gp.set(high)
}

// This function is separate from Set(), above, because this one does not stop PWM. When
// simulating PWM in software, we use this function to turn the pin on and off while continuing
// to treat it as a PWM pin.
func (gp *periphGpioPin) set(high bool) error {
	l := gpio.Low
	if high {
		l = gpio.High
	}
	return gp.pin.Out(l)
}

func (gp *periphGpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	return gp.pin.Read() == gpio.High, nil
}

func (gp *periphGpioPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.dutyCycle, nil
}

func (gp *periphGpioPin) SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.dutyCycle = utils.Clamp(dutyCyclePct, 0, 1)
	return gp.applyPWM()
}

func (gp *periphGpioPin) PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwmFreqHz, nil
}

func (gp *periphGpioPin) SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if freqHz == 0 {
		freqHz = defaultPWMFreqHz
	}
	gp.pwmFreqHz = freqHz
	return gp.applyPWM()
}

// expects to already have lock acquired.
func (gp *periphGpioPin) applyPWM() error {
	if gp.hwPWMSupported {
		duty := gpio.Duty(gp.dutyCycle * float64(gpio.DutyMax))
		if err := gp.pin.PWM(duty, physic.Frequency(gp.pwmFreqHz)*physic.Hertz); err != nil {
			return errors.Wrapf(err, "hardware pwm on pin %s", gp.pinName)
		}
		return nil
	}

	switch {
	case gp.dutyCycle == 0:
		gp.pwmRunning = false
		return gp.set(false)
	case gp.dutyCycle >= 1:
		gp.pwmRunning = false
		return gp.set(true)
	case gp.pwmRunning:
		return nil
	}
	gp.pwmRunning = true
	gp.workers.AddWorkers(gp.softwarePWMLoop)
	return nil
}

func (gp *periphGpioPin) softwarePWMLoop(ctx context.Context) {
	for {
		cont := func() bool {
			gp.mu.Lock()
			if !gp.pwmRunning {
				gp.mu.Unlock()
				return false
			}
			period := (physic.Frequency(gp.pwmFreqHz) * physic.Hertz).Period()
			onPeriod := time.Duration(gp.dutyCycle * float64(period))
			err := gp.set(true)
			gp.mu.Unlock()
			if err != nil {
				gp.logger.Errorw("error setting pin", "pin_name", gp.pinName, "error", err)
			}
			if !goutils.SelectContextOrWait(ctx, onPeriod) {
				return false
			}

			gp.mu.Lock()
			if !gp.pwmRunning {
				gp.mu.Unlock()
				return false
			}
			err = gp.set(false)
			gp.mu.Unlock()
			if err != nil {
				gp.logger.Errorw("error setting pin", "pin_name", gp.pinName, "error", err)
			}
			return goutils.SelectContextOrWait(ctx, period-onPeriod)
		}()
		if !cont {
			return
		}
	}
}

// Close stops PWM and drives the pin low.
func (gp *periphGpioPin) Close() error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.pwmRunning = false
	gp.dutyCycle = 0
	if gp.hwPWMSupported {
		return gp.pin.Halt()
	}
	return gp.set(false)
}
