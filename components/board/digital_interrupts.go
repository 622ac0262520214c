package board

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var errDebounceNegative = errors.New("debounce_micros cannot be negative")

// BasicDigitalInterrupt counts rising edges and fans every accepted edge out to its callbacks.
// Board implementations feed it from whatever edge source they have.
type BasicDigitalInterrupt struct {
	mu        sync.RWMutex
	cfg       DigitalInterruptConfig
	count     int64
	lastTick  uint64
	seenTick  bool
	callbacks []chan Tick
}

// CreateDigitalInterrupt creates a new digital interrupt from the given config.
func CreateDigitalInterrupt(cfg DigitalInterruptConfig) (*BasicDigitalInterrupt, error) {
	if cfg.DebounceMicros < 0 {
		return nil, errDebounceNegative
	}
	return &BasicDigitalInterrupt{cfg: cfg}, nil
}

// Name returns the name of the interrupt.
func (i *BasicDigitalInterrupt) Name() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cfg.Name
}

// Config returns the interrupt config.
func (i *BasicDigitalInterrupt) Config() DigitalInterruptConfig {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cfg
}

// Value returns the number of rising edges seen so far.
func (i *BasicDigitalInterrupt) Value(ctx context.Context, extra map[string]interface{}) (int64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.count, nil
}

// Tick records an edge and sends it to every callback. A send blocks until the callback reader
// takes it or ctx is done; RemoveCallback waits for in-progress sends, so readers must keep
// draining their channel until RemoveCallback returns.
func (i *BasicDigitalInterrupt) Tick(ctx context.Context, high bool, nanoseconds uint64) error {
	i.mu.Lock()
	debounce := uint64(i.cfg.DebounceMicros) * 1000
	if i.seenTick && debounce > 0 && nanoseconds-i.lastTick < debounce {
		i.mu.Unlock()
		return nil
	}
	i.seenTick = true
	i.lastTick = nanoseconds
	if high {
		i.count++
	}
	i.mu.Unlock()

	i.mu.RLock()
	defer i.mu.RUnlock()
	tick := Tick{Name: i.cfg.Name, High: high, TimestampNanosec: nanoseconds}
	for _, c := range i.callbacks {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled while delivering tick")
		case c <- tick:
		}
	}
	return nil
}

// AddCallback adds a listener for interrupts.
func (i *BasicDigitalInterrupt) AddCallback(c chan Tick) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.callbacks = append(i.callbacks, c)
}

// RemoveCallback removes a listener for interrupts.
func (i *BasicDigitalInterrupt) RemoveCallback(c chan Tick) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for id := range i.callbacks {
		if i.callbacks[id] == c {
			// To remove this item, we replace it with the last item in the list, then truncate the
			// list by 1.
			i.callbacks[id] = i.callbacks[len(i.callbacks)-1]
			i.callbacks = i.callbacks[:len(i.callbacks)-1]
			break
		}
	}
}
