// Package robot brings up a differential drive robot from its config: a board, an encoder per
// wheel and the drive mixer.
//
// Bring-up never fails because hardware is missing. When the board cannot be built every part
// runs simulated and logs what it would have done.
package robot

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/chipurobo/rdk/components/base/differential"
	"github.com/chipurobo/rdk/components/board"
	// for boards.
	_ "github.com/chipurobo/rdk/components/board/register"
	"github.com/chipurobo/rdk/components/encoder"
	"github.com/chipurobo/rdk/components/encoder/quadrature"
	"github.com/chipurobo/rdk/config"
	"github.com/chipurobo/rdk/logging"
)

// Names of the parts a robot is built from.
const (
	LeftEncoderName  = "left_encoder"
	RightEncoderName = "right_encoder"
	DriveName        = "drive"
)

// A Robot owns its board and every part built on it.
type Robot struct {
	board        board.Board
	leftEncoder  *quadrature.Encoder
	rightEncoder *quadrature.Encoder
	drive        *differential.Mixer
	logger       logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// Status is a snapshot of the robot for diagnostics.
type Status struct {
	Board        string         `json:"board,omitempty"`
	Simulated    bool           `json:"simulated"`
	Moving       bool           `json:"moving"`
	LeftEncoder  encoder.Status `json:"left_encoder"`
	RightEncoder encoder.Status `json:"right_encoder"`
}

// New builds a robot from cfg. Only an invalid config is an error.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Robot{logger: logger}

	if cfg.Board != nil {
		b, err := board.New(ctx, cfg.Board.Model, cfg.Board.Name, cfg.Board.Attributes, logger.Sublogger("board"))
		if err != nil {
			logger.Errorw("board unavailable; running simulated", "board", cfg.Board.Name, "error", err)
		} else {
			r.board = b
		}
	} else {
		logger.Info("no board configured")
	}

	var err error
	if r.leftEncoder, err = quadrature.NewEncoder(
		ctx, r.board, LeftEncoderName, cfg.Encoders.Left, logger.Sublogger(LeftEncoderName)); err != nil {
		return nil, multierr.Combine(err, r.Close(ctx))
	}
	if r.rightEncoder, err = quadrature.NewEncoder(
		ctx, r.board, RightEncoderName, cfg.Encoders.Right, logger.Sublogger(RightEncoderName)); err != nil {
		return nil, multierr.Combine(err, r.Close(ctx))
	}
	if r.drive, err = differential.NewMixer(ctx, r.board, cfg.Drive, logger.Sublogger(DriveName)); err != nil {
		return nil, multierr.Combine(err, r.Close(ctx))
	}
	return r, nil
}

// Board returns the board, or nil when running without one.
func (r *Robot) Board() board.Board {
	return r.board
}

// LeftEncoder returns the left wheel encoder.
func (r *Robot) LeftEncoder() *quadrature.Encoder {
	return r.leftEncoder
}

// RightEncoder returns the right wheel encoder.
func (r *Robot) RightEncoder() *quadrature.Encoder {
	return r.rightEncoder
}

// Drive returns the drive mixer.
func (r *Robot) Drive() *differential.Mixer {
	return r.drive
}

// Simulated reports whether any part runs without hardware.
func (r *Robot) Simulated() bool {
	return r.board == nil ||
		r.leftEncoder.Simulated() ||
		r.rightEncoder.Simulated() ||
		r.drive.Simulated()
}

// Status returns a snapshot of both encoders and the drive.
func (r *Robot) Status(ctx context.Context) (Status, error) {
	moving, err := r.drive.IsMoving(ctx)
	if err != nil {
		return Status{}, err
	}
	status := Status{
		Simulated:    r.Simulated(),
		Moving:       moving,
		LeftEncoder:  r.leftEncoder.Status(),
		RightEncoder: r.rightEncoder.Status(),
	}
	if r.board != nil {
		status.Board = r.board.Name()
	}
	return status, nil
}

// Close stops the drive, releases every part and then the board.
func (r *Robot) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		var err error
		if r.drive != nil {
			err = multierr.Combine(err, r.drive.Stop(ctx), r.drive.Close(ctx))
		}
		if r.leftEncoder != nil {
			err = multierr.Combine(err, r.leftEncoder.Close(ctx))
		}
		if r.rightEncoder != nil {
			err = multierr.Combine(err, r.rightEncoder.Close(ctx))
		}
		if r.board != nil {
			err = multierr.Combine(err, r.board.Close(ctx))
		}
		r.closeErr = err
	})
	return r.closeErr
}
