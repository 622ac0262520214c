// Package fake implements a fake motor that only logs what it would have done. It stands in for
// a real motor when no hardware is available.
package fake

import (
	"context"
	"sync"

	"github.com/chipurobo/rdk/components/motor"
	"github.com/chipurobo/rdk/logging"
)

var _ = motor.Motor(&Motor{})

// A Motor records the last command it was given.
type Motor struct {
	Name   string
	Logger logging.Logger

	mu        sync.Mutex
	direction motor.Direction
	duty      float64
	calls     int
}

// NewMotor returns a stopped fake motor.
func NewMotor(name string, logger logging.Logger) *Motor {
	return &Motor{Name: name, Logger: logger, direction: motor.Stop}
}

// Drive logs and records the command.
func (m *Motor) Drive(ctx context.Context, direction motor.Direction, duty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !direction.Valid() {
		direction = motor.Stop
	}
	if direction == motor.Stop {
		duty = 0
	}
	m.direction = direction
	m.duty = duty
	m.calls++
	m.Logger.Infow("simulated motor", "motor", m.Name, "direction", string(direction), "duty", duty)
	return nil
}

// Stop logs and records a stop.
func (m *Motor) Stop(ctx context.Context) error {
	return m.Drive(ctx, motor.Stop, 0)
}

// IsPowered returns whether the last command had the motor running.
func (m *Motor) IsPowered(ctx context.Context) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	on := m.direction != motor.Stop && m.duty > 0
	if m.direction == motor.Backward {
		return on, -m.duty, nil
	}
	return on, m.duty, nil
}

// Last returns the last direction and duty given.
func (m *Motor) Last() (motor.Direction, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.direction, m.duty
}

// Calls returns how many commands the motor has received.
func (m *Motor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close stops the motor.
func (m *Motor) Close(ctx context.Context) error {
	return m.Stop(ctx)
}
