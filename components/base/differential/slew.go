package differential

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// DefaultSlewPeriod is the longest gap between commands a SlewLimiter credits. Commands that
// arrive further apart still move by at most one period's worth of change.
const DefaultSlewPeriod = 100 * time.Millisecond

// SlewLimiter wraps a TankDriver and limits how fast each side's speed may change. Stop is
// never limited.
type SlewLimiter struct {
	driver TankDriver
	rate   float64
	period time.Duration
	clock  clock.Clock

	mu          sync.Mutex
	left, right float64
	last        time.Time
}

// SlewOption configures a SlewLimiter.
type SlewOption func(*SlewLimiter)

// WithSlewClock sets the clock used to measure time between commands.
func WithSlewClock(c clock.Clock) SlewOption {
	return func(s *SlewLimiter) {
		s.clock = c
	}
}

// WithSlewPeriod sets the longest gap between commands that is credited toward a change.
func WithSlewPeriod(period time.Duration) SlewOption {
	return func(s *SlewLimiter) {
		s.period = period
	}
}

// NewSlewLimiter returns a limiter allowing each side to change by at most ratePerSecond per
// second of wall time.
func NewSlewLimiter(driver TankDriver, ratePerSecond float64, opts ...SlewOption) (*SlewLimiter, error) {
	if math.IsNaN(ratePerSecond) || ratePerSecond <= 0 {
		return nil, errors.Errorf("slew rate must be positive, got %v", ratePerSecond)
	}
	s := &SlewLimiter{driver: driver, rate: ratePerSecond, period: DefaultSlewPeriod, clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	if s.period <= 0 {
		return nil, errors.Errorf("slew period must be positive, got %v", s.period)
	}
	s.last = s.clock.Now()
	return s, nil
}

func approach(current, target, maxStep float64) float64 {
	if math.IsNaN(target) {
		target = 0
	}
	delta := target - current
	if math.Abs(delta) <= maxStep {
		return target
	}
	if delta > 0 {
		return current + maxStep
	}
	return current - maxStep
}

// DriveTank moves each side toward the requested speed as far as the elapsed time allows, up
// to one period, and forwards the result.
func (s *SlewLimiter) DriveTank(ctx context.Context, left, right float64) error {
	s.mu.Lock()
	now := s.clock.Now()
	elapsed := now.Sub(s.last)
	if elapsed > s.period {
		elapsed = s.period
	}
	maxStep := s.rate * elapsed.Seconds()
	s.left = approach(s.left, left, maxStep)
	s.right = approach(s.right, right, maxStep)
	s.last = now
	l, r := s.left, s.right
	s.mu.Unlock()

	return s.driver.DriveTank(ctx, l, r)
}

// Stop stops immediately and resets the limiter to rest.
func (s *SlewLimiter) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.left, s.right = 0, 0
	s.last = s.clock.Now()
	s.mu.Unlock()
	return s.driver.Stop(ctx)
}

// Speeds returns the last speeds forwarded to the driver.
func (s *SlewLimiter) Speeds() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left, s.right
}
