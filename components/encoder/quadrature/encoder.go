// Package quadrature implements a two-channel quadrature wheel encoder that counts edges and
// estimates wheel speed.
//
// By default edges are decoded 1x: both edges of channel A are counted and channel B is sampled
// on each one, equal levels counting forward. This halves the resolution of full 4x decoding in
// exchange for needing a single interrupt line; set Config.Decoding to "4x" when both channels
// can interrupt.
package quadrature

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/components/encoder"
	"github.com/chipurobo/rdk/logging"
)

// Edges closer together than this leave the velocity estimate unchanged.
const minVelocityInterval = time.Millisecond

// Number of recent edge velocities kept for the median in Status.
const velocityWindow = 8

var _ = encoder.Encoder(&Encoder{})

// Encoder keeps track of wheel position and speed using a quadrature encoder.
type Encoder struct {
	name     string
	conf     Config
	geometry encoder.Geometry
	logger   logging.Logger
	clock    clock.Clock

	mu       sync.Mutex
	count    int64
	lastEdge time.Time
	recent   []float64

	velocity atomic.Float64
	active   atomic.Bool

	board      board.Board
	source     edgeSource
	cancelFunc func()
	detachOnce sync.Once

	closeMu  sync.Mutex
	closed   bool
	closeErr error

	activeBackgroundWorkers sync.WaitGroup
}

// An Option customizes an Encoder.
type Option func(*Encoder)

// WithClock replaces the wall clock used for edge timing.
func WithClock(c clock.Clock) Option {
	return func(e *Encoder) {
		e.clock = c
	}
}

// NewEncoder creates an encoder on the given board. Only an invalid geometry or missing pin
// names are errors: when b is nil or the pins cannot be claimed, the failure is logged and the
// encoder runs simulated, reporting zeros.
func NewEncoder(
	ctx context.Context,
	b board.Board,
	name string,
	conf Config,
	logger logging.Logger,
	opts ...Option,
) (*Encoder, error) {
	if err := conf.Validate(name); err != nil {
		return nil, err
	}
	geometry, err := encoder.NewGeometry(
		conf.countsPerRevolution(), conf.WheelDiameterIn, conf.GearRatio, conf.ApplyGearRatio)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		name:     name,
		conf:     conf,
		geometry: geometry,
		logger:   logger,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lastEdge = e.clock.Now()

	source, err := newInterruptSource(ctx, b, conf, logger)
	if err != nil {
		logger.Errorw("encoder hardware unavailable; running simulated",
			"encoder", name, "pin_a", conf.Pins.A, "pin_b", conf.Pins.B, "error", err)
		e.source = nullSource{}
		return e, nil
	}
	e.board = b
	e.source = source
	e.active.Store(true)

	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	e.cancelFunc = cancelFunc
	e.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		source.run(cancelCtx, e.step)
	}, e.activeBackgroundWorkers.Done)

	logger.Debugw("encoder started", "encoder", name, "decoding", conf.decoding())
	return e, nil
}

// OnEdge processes one edge of channel A given the levels of both channels at that moment.
// Equal levels count forward, different levels count backward. It is a no-op once the encoder
// is detached.
func (e *Encoder) OnEdge(aHigh, bHigh bool) {
	e.step(direction1x(aHigh, bHigh))
}

func (e *Encoder) step(direction int64) {
	if !e.active.Load() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.count += direction

	now := e.clock.Now()
	dt := now.Sub(e.lastEdge)
	if dt > minVelocityInterval {
		v := e.geometry.EdgeVelocity(dt, direction)
		e.velocity.Store(v)
		if len(e.recent) == velocityWindow {
			e.recent = append(e.recent[:0], e.recent[1:]...)
		}
		e.recent = append(e.recent, v)
	}
	e.lastEdge = now
}

// Count returns the signed number of edges since the last reset.
func (e *Encoder) Count() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Distance returns the distance travelled in inches since the last reset.
func (e *Encoder) Distance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.geometry.Distance(e.count)
}

// Velocity returns the speed in inches per second computed at the latest edge. It does not take
// the lock, so it may trail a concurrent edge. The sign follows the direction of travel;
// math.Abs gives the unsigned wheel speed.
func (e *Encoder) Velocity() float64 {
	return e.velocity.Load()
}

// Reset zeroes the count. Velocity and edge timing are kept.
func (e *Encoder) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.count = 0
}

// Position returns the current position in ticks, inches or output shaft degrees.
func (e *Encoder) Position(ctx context.Context, positionType encoder.PositionType) (float64, encoder.PositionType, error) {
	return encoder.Position(e.geometry, e.Count(), positionType)
}

// Geometry returns the wheel model.
func (e *Encoder) Geometry() encoder.Geometry {
	return e.geometry
}

// Active reports whether edges are still being counted.
func (e *Encoder) Active() bool {
	return e.active.Load()
}

// Simulated reports whether the encoder runs without hardware.
func (e *Encoder) Simulated() bool {
	return e.source.simulated()
}

// Status returns a snapshot for diagnostics.
func (e *Encoder) Status() encoder.Status {
	e.mu.Lock()
	count := e.count
	recent := stats.Float64Data(append([]float64(nil), e.recent...))
	e.mu.Unlock()

	// Median fails only on an empty window, before any timed edge.
	median, err := recent.Median()
	if err != nil {
		median = 0
	}
	return encoder.Status{
		Active:                 e.Active(),
		Simulated:              e.Simulated(),
		PinA:                   e.conf.Pins.A,
		PinB:                   e.conf.Pins.B,
		Decoding:               e.conf.decoding(),
		PulsesPerRevolution:    e.conf.PulsesPerRevolution,
		WheelDiameterIn:        e.conf.WheelDiameterIn,
		GearRatio:              e.conf.GearRatio,
		Count:                  count,
		DistanceIn:             e.geometry.Distance(count),
		VelocityInPerSec:       e.Velocity(),
		VelocityMedianInPerSec: median,
		HardwareAvailable:      !e.Simulated(),
	}
}

// Detach stops counting and unsubscribes from the board. It may be called from any goroutine,
// any number of times, and returns without waiting for edges already being processed.
func (e *Encoder) Detach() {
	e.detachOnce.Do(func() {
		e.active.Store(false)
		if e.cancelFunc != nil {
			e.cancelFunc()
		}
	})
}

// Close detaches the encoder, waits for its worker to exit and releases its pins. If ctx ends
// first the pins stay claimed and Close may be called again.
func (e *Encoder) Close(ctx context.Context) error {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.closed {
		return e.closeErr
	}
	e.Detach()

	done := make(chan struct{})
	goutils.PanicCapturingGo(func() {
		e.activeBackgroundWorkers.Wait()
		close(done)
	})
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for encoder %s to stop", e.name)
	}

	if e.board != nil {
		e.closeErr = multierr.Combine(
			e.board.ClosePin(ctx, e.conf.Pins.A),
			e.board.ClosePin(ctx, e.conf.Pins.B),
		)
	}
	e.closed = true
	e.logger.Debugw("encoder closed", "encoder", e.name)
	return e.closeErr
}
