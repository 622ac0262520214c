package quadrature

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"golang.org/x/time/rate"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
)

// An edgeSource delivers quadrature steps to an encoder until its context is done.
type edgeSource interface {
	// run blocks, calling step for every decoded edge, and unsubscribes before returning.
	run(ctx context.Context, step func(direction int64))
	// simulated is true when no hardware is behind the source.
	simulated() bool
}

// nullSource never produces an edge. Encoders fall back to it when the hardware is unavailable.
type nullSource struct{}

func (nullSource) run(ctx context.Context, step func(direction int64)) {}

func (nullSource) simulated() bool { return true }

// interruptSource reads edges from board interrupts. In 1x mode only A is an interrupt and B is
// sampled on each A edge; in 4x mode both are interrupts.
type interruptSource struct {
	decoding string
	a, b     board.DigitalInterrupt
	bPin     board.GPIOPin
	chA, chB chan board.Tick
	// Levels at subscription time, 4x only.
	aLevel, bLevel int64
	logger         logging.Logger
	// Limits warnings about edges dropped while channel B cannot be read.
	dropWarn rate.Sometimes
}

func newInterruptSource(
	ctx context.Context,
	b board.Board,
	conf Config,
	logger logging.Logger,
) (*interruptSource, error) {
	if b == nil {
		return nil, errors.New("no board available")
	}
	s := &interruptSource{
		decoding: conf.decoding(),
		chA:      make(chan board.Tick),
		logger:   logger,
		dropWarn: rate.Sometimes{Interval: time.Second},
	}

	var err error
	s.a, err = b.DigitalInterruptByName(conf.Pins.A)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot find pin (%s) for quadrature encoder", conf.Pins.A)
	}

	if s.decoding == Decoding4x {
		s.b, err = b.DigitalInterruptByName(conf.Pins.B)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot find pin (%s) for quadrature encoder", conf.Pins.B)
		}
		s.chB = make(chan board.Tick)
		s.aLevel = readLevel(ctx, b, conf.Pins.A)
		s.bLevel = readLevel(ctx, b, conf.Pins.B)
		s.b.AddCallback(s.chB)
	} else {
		s.bPin, err = b.GPIOPinByName(conf.Pins.B)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot find pin (%s) for quadrature encoder", conf.Pins.B)
		}
	}
	s.a.AddCallback(s.chA)
	return s, nil
}

// readLevel returns the current level of a pin as 0 or 1, treating unreadable pins as low.
func readLevel(ctx context.Context, b board.Board, name string) int64 {
	pin, err := b.GPIOPinByName(name)
	if err != nil {
		return 0
	}
	high, err := pin.Get(ctx, nil)
	if err != nil || !high {
		return 0
	}
	return 1
}

func (s *interruptSource) simulated() bool { return false }

func (s *interruptSource) run(ctx context.Context, step func(direction int64)) {
	defer s.unsubscribe()
	if s.decoding == Decoding4x {
		s.run4x(ctx, step)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-s.chA:
			bHigh, err := s.bPin.Get(ctx, nil)
			if err != nil {
				s.dropWarn.Do(func() {
					s.logger.Warnw("could not sample channel b; dropping edges", "error", err)
				})
				continue
			}
			step(direction1x(tick.High, bHigh))
		}
	}
}

// direction1x compares the phase of the two channels: equal levels count forward.
func direction1x(aHigh, bHigh bool) int64 {
	if aHigh == bHigh {
		return 1
	}
	return -1
}

func (s *interruptSource) run4x(ctx context.Context, step func(direction int64)) {
	/**
	  a rotary encoder looks like

	    1   2     3    4    1    2    3    4     1

	            +---------+         +---------+      0
	            |         |         |         |
	  A         |         |         |         |
	            |         |         |         |
	  +---------+         +---------+         +----- 1

	      +---------+         +---------+            0
	      |         |         |         |
	  B   |         |         |         |
	      |         |         |         |
	  ----+         +---------+         +---------+  1

	*/

	// State Transition Table
	//     +---------------+----+----+----+----+
	//     | pState/nState | 00 | 01 | 10 | 11 |
	//     +---------------+----+----+----+----+
	//     |       00      | 0  | -1 | +1 | x  |
	//     +---------------+----+----+----+----+
	//     |       01      | +1 | 0  | x  | -1 |
	//     +---------------+----+----+----+----+
	//     |       10      | -1 | x  | 0  | +1 |
	//     +---------------+----+----+----+----+
	//     |       11      | x  | +1 | -1 | 0  |
	//     +---------------+----+----+----+----+
	// 0 -> same state
	// x -> impossible state

	aLevel, bLevel := s.aLevel, s.bLevel
	pState := aLevel | (bLevel << 1)
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-s.chA:
			aLevel = 0
			if tick.High {
				aLevel = 1
			}
		case tick := <-s.chB:
			bLevel = 0
			if tick.High {
				bLevel = 1
			}
		}
		nState := aLevel | (bLevel << 1)
		if pState == nState {
			continue
		}
		switch (pState << 2) | nState {
		case 0b0001, 0b0111, 0b1000, 0b1110:
			step(-1)
		case 0b0010, 0b0100, 0b1011, 0b1101:
			step(1)
		default:
			// A missed edge; resynchronize on the new state.
		}
		pState = nState
	}
}

// unsubscribe removes the callbacks. Sends already blocked on our channels are drained while
// removal waits for them.
func (s *interruptSource) unsubscribe() {
	done := make(chan struct{})
	drained := make(chan struct{})
	goutils.PanicCapturingGo(func() {
		defer close(drained)
		for {
			select {
			case <-done:
				return
			case <-s.chA:
			case <-s.chB:
			}
		}
	})
	s.a.RemoveCallback(s.chA)
	if s.b != nil {
		s.b.RemoveCallback(s.chB)
	}
	close(done)
	<-drained
}
