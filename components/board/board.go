// Package board defines the hardware abstraction the drive components sit on: GPIO pins that can
// be driven, read and pulsed, and digital interrupts that report edges.
package board

import (
	"context"
)

// A Board represents a physical general purpose board that contains GPIO pins and digital
// interrupts. A nil Board means no hardware is available; components built on a nil Board run
// in simulation.
type Board interface {
	// Name returns the configured name of the board.
	Name() string

	// GPIOPinByName returns a GPIOPin by name.
	GPIOPinByName(name string) (GPIOPin, error)

	// DigitalInterruptByName returns a digital interrupt by name. The interrupt reports both
	// rising and falling edges.
	DigitalInterruptByName(name string) (DigitalInterrupt, error)

	// ClosePin releases the named pin. Later lookups of the same name claim it again.
	ClosePin(ctx context.Context, name string) error

	// Close releases every pin and stops any background work.
	Close(ctx context.Context) error
}

// Tick represents a signal received by an interrupt pin. This signal is communicated
// via registered channel to the various drivers.
type Tick struct {
	Name             string
	High             bool
	TimestampNanosec uint64
}

// A DigitalInterrupt represents a configured interrupt on the board that
// when interrupted, calls the added callbacks.
type DigitalInterrupt interface {
	// Name returns the name of the interrupt.
	Name() string

	// Value returns the number of rising edges seen so far.
	Value(ctx context.Context, extra map[string]interface{}) (int64, error)

	// Tick is to be called either manually if interrupt is a proxy to some real
	// hardware interrupt or for tests.
	// nanoseconds is from an arbitrary point in time, but always increasing and always needs
	// to be accurate.
	Tick(ctx context.Context, high bool, nanoseconds uint64) error

	// AddCallback adds a callback to be sent a low/high value to when a tick
	// happens.
	AddCallback(c chan Tick)

	// RemoveCallback removes a listener for interrupts.
	RemoveCallback(c chan Tick)
}
