// Package inject provides doubles whose behavior tests set one method at a time.
package inject

import (
	"context"

	"github.com/chipurobo/rdk/components/board"
)

// Board is an injected board.
type Board struct {
	board.Board
	name                       string
	GPIOPinByNameFunc          func(name string) (board.GPIOPin, error)
	DigitalInterruptByNameFunc func(name string) (board.DigitalInterrupt, error)
	ClosePinFunc               func(ctx context.Context, name string) error
	closePinCap                []interface{}
	CloseFunc                  func(ctx context.Context) error
}

// NewBoard returns a new injected board.
func NewBoard(name string) *Board {
	return &Board{name: name}
}

// Name returns the name of the board.
func (b *Board) Name() string {
	return b.name
}

// GPIOPinByName calls the injected GPIOPinByName or the real version.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	if b.GPIOPinByNameFunc == nil {
		return b.Board.GPIOPinByName(name)
	}
	return b.GPIOPinByNameFunc(name)
}

// DigitalInterruptByName calls the injected DigitalInterruptByName or the real version.
func (b *Board) DigitalInterruptByName(name string) (board.DigitalInterrupt, error) {
	if b.DigitalInterruptByNameFunc == nil {
		return b.Board.DigitalInterruptByName(name)
	}
	return b.DigitalInterruptByNameFunc(name)
}

// ClosePin calls the injected ClosePin or the real version.
func (b *Board) ClosePin(ctx context.Context, name string) error {
	b.closePinCap = append(b.closePinCap, name)
	if b.ClosePinFunc == nil {
		return b.Board.ClosePin(ctx, name)
	}
	return b.ClosePinFunc(ctx, name)
}

// ClosePinCap returns the names received by ClosePin so far, and then clears them.
func (b *Board) ClosePinCap() []interface{} {
	if b == nil {
		return nil
	}
	defer func() { b.closePinCap = nil }()
	return b.closePinCap
}

// Close calls the injected Close or the real version.
func (b *Board) Close(ctx context.Context) error {
	if b.CloseFunc == nil {
		if b.Board == nil {
			return nil
		}
		return b.Board.Close(ctx)
	}
	return b.CloseFunc(ctx)
}
