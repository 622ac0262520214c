//go:build !linux

package genericlinux

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chipurobo/rdk/components/board"
	"github.com/chipurobo/rdk/logging"
)

// ModelName is the name this board registers under on Linux.
const ModelName = "genericlinux"

// NewBoard always fails: the GPIO character device only exists on Linux. The model is not
// registered on other platforms.
func NewBoard(ctx context.Context, name string, conf *Config, logger logging.Logger) (board.Board, error) {
	return nil, errors.New("genericlinux boards are only supported on linux")
}
