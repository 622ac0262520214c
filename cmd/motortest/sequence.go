package main

import (
	"context"
	"time"

	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/chipurobo/rdk/components/base/differential"
	"github.com/chipurobo/rdk/logging"
)

type step struct {
	name     string
	move     func(*differential.Mixer, context.Context, float64) error
	duration time.Duration
}

func spinSequence() []step {
	return []step{
		{"forward", (*differential.Mixer).Forward, 2 * time.Second},
		{"backward", (*differential.Mixer).Backward, 2 * time.Second},
		{"left", (*differential.Mixer).SpinLeft, 1500 * time.Millisecond},
		{"right", (*differential.Mixer).SpinRight, 1500 * time.Millisecond},
	}
}

// runSequence performs each step, stopping for pause after each one. Cancelling ctx stops the
// motors and ends the run without an error.
func runSequence(
	ctx context.Context,
	m *differential.Mixer,
	speed float64,
	steps []step,
	pause time.Duration,
	run string,
	logger logging.Logger,
) (err error) {
	defer func() {
		// ctx may already be cancelled here.
		err = multierr.Combine(err, m.Stop(context.Background()))
	}()

	for _, s := range steps {
		logger.Infow("maneuver", "run", run, "name", s.name, "speed", speed, "duration", s.duration)
		if err := s.move(m, ctx, speed); err != nil {
			return err
		}
		if !goutils.SelectContextOrWait(ctx, s.duration) {
			logger.Infow("interrupted; motors stopped", "run", run)
			return nil
		}
		if err := m.Stop(ctx); err != nil {
			return err
		}
		if !goutils.SelectContextOrWait(ctx, pause) {
			logger.Infow("interrupted; motors stopped", "run", run)
			return nil
		}
	}
	logger.Infow("test complete; motors stopped", "run", run)
	return nil
}
