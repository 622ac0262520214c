package inject

import (
	"context"

	"github.com/chipurobo/rdk/components/motor"
)

// Motor is an injected motor.
type Motor struct {
	motor.Motor
	DriveFunc     func(ctx context.Context, direction motor.Direction, duty float64) error
	driveCap      []interface{}
	StopFunc      func(ctx context.Context) error
	IsPoweredFunc func(ctx context.Context) (bool, float64, error)
	CloseFunc     func(ctx context.Context) error
}

// Drive calls the injected Drive or the real version.
func (m *Motor) Drive(ctx context.Context, direction motor.Direction, duty float64) error {
	m.driveCap = []interface{}{ctx, direction, duty}
	if m.DriveFunc == nil {
		return m.Motor.Drive(ctx, direction, duty)
	}
	return m.DriveFunc(ctx, direction, duty)
}

// DriveCap returns the last parameters received by Drive, and then clears them.
func (m *Motor) DriveCap() []interface{} {
	if m == nil {
		return nil
	}
	defer func() { m.driveCap = nil }()
	return m.driveCap
}

// Stop calls the injected Stop or the real version.
func (m *Motor) Stop(ctx context.Context) error {
	if m.StopFunc == nil {
		return m.Motor.Stop(ctx)
	}
	return m.StopFunc(ctx)
}

// IsPowered calls the injected IsPowered or the real version.
func (m *Motor) IsPowered(ctx context.Context) (bool, float64, error) {
	if m.IsPoweredFunc == nil {
		return m.Motor.IsPowered(ctx)
	}
	return m.IsPoweredFunc(ctx)
}

// Close calls the injected Close or the real version.
func (m *Motor) Close(ctx context.Context) error {
	if m.CloseFunc == nil {
		return m.Motor.Close(ctx)
	}
	return m.CloseFunc(ctx)
}
