package inject

import (
	"context"

	"github.com/chipurobo/rdk/components/board"
)

// GPIOPin is an injected GPIOPin.
type GPIOPin struct {
	board.GPIOPin

	SetFunc        func(ctx context.Context, high bool, extra map[string]interface{}) error
	setCap         []interface{}
	GetFunc        func(ctx context.Context, extra map[string]interface{}) (bool, error)
	PWMFunc        func(ctx context.Context, extra map[string]interface{}) (float64, error)
	SetPWMFunc     func(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error
	setPWMCap      []interface{}
	PWMFreqFunc    func(ctx context.Context, extra map[string]interface{}) (uint, error)
	SetPWMFreqFunc func(ctx context.Context, freqHz uint, extra map[string]interface{}) error
}

// Set calls the injected Set or the real version.
func (gp *GPIOPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.setCap = []interface{}{ctx, high}
	if gp.SetFunc == nil {
		return gp.GPIOPin.Set(ctx, high, extra)
	}
	return gp.SetFunc(ctx, high, extra)
}

// SetCap returns the last parameters received by Set, and then clears them.
func (gp *GPIOPin) SetCap() []interface{} {
	if gp == nil {
		return nil
	}
	defer func() { gp.setCap = nil }()
	return gp.setCap
}

// Get calls the injected Get or the real version.
func (gp *GPIOPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	if gp.GetFunc == nil {
		return gp.GPIOPin.Get(ctx, extra)
	}
	return gp.GetFunc(ctx, extra)
}

// PWM calls the injected PWM or the real version.
func (gp *GPIOPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	if gp.PWMFunc == nil {
		return gp.GPIOPin.PWM(ctx, extra)
	}
	return gp.PWMFunc(ctx, extra)
}

// SetPWM calls the injected SetPWM or the real version.
func (gp *GPIOPin) SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error {
	gp.setPWMCap = []interface{}{ctx, dutyCyclePct}
	if gp.SetPWMFunc == nil {
		return gp.GPIOPin.SetPWM(ctx, dutyCyclePct, extra)
	}
	return gp.SetPWMFunc(ctx, dutyCyclePct, extra)
}

// SetPWMCap returns the last parameters received by SetPWM, and then clears them.
func (gp *GPIOPin) SetPWMCap() []interface{} {
	if gp == nil {
		return nil
	}
	defer func() { gp.setPWMCap = nil }()
	return gp.setPWMCap
}

// PWMFreq calls the injected PWMFreq or the real version.
func (gp *GPIOPin) PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error) {
	if gp.PWMFreqFunc == nil {
		return gp.GPIOPin.PWMFreq(ctx, extra)
	}
	return gp.PWMFreqFunc(ctx, extra)
}

// SetPWMFreq calls the injected SetPWMFreq or the real version.
func (gp *GPIOPin) SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error {
	if gp.SetPWMFreqFunc == nil {
		return gp.GPIOPin.SetPWMFreq(ctx, freqHz, extra)
	}
	return gp.SetPWMFreqFunc(ctx, freqHz, extra)
}
