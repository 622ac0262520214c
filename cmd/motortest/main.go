// Package main spins the drive motors through a fixed routine and reports encoder readings. It
// is meant to be run on the robot to check the wiring.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	units "github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/chipurobo/rdk/components/base/differential"
	"github.com/chipurobo/rdk/config"
	"github.com/chipurobo/rdk/logging"
	"github.com/chipurobo/rdk/robot"
)

const (
	// Flags.
	flagConfig = "config"
	flagSpeed  = "speed"
	flagDebug  = "debug"
	flagEnv    = "env-file"
	flagLog    = "log-file"
	flagLogMax = "log-max-size"
	flagFormat = "format"

	pauseBetweenSteps = time.Second
)

func main() {
	app := &cli.App{
		Name:  "motortest",
		Usage: "spin the drive motors and report encoder readings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`; the stock wiring is used when unset",
				EnvVars: []string{"CHIPUROBO_CONFIG"},
			},
			&cli.StringFlag{
				Name:  flagEnv,
				Value: ".env",
				Usage: "load environment variables from `FILE` if it exists",
			},
			&cli.Float64Flag{
				Name:  flagSpeed,
				Value: 1.0,
				Usage: "speed in [0, 1] for every maneuver",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLog,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
			&cli.StringFlag{
				Name:  flagLogMax,
				Value: "10MiB",
				Usage: "rotate the log file once it reaches `SIZE`, e.g. 512KiB or 20MB",
			},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(c.String(flagEnv)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return errors.Wrapf(err, "loading %s", c.String(flagEnv))
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "spin",
				Usage: "drive forward, backward, left and right, stopping in between",
				Action: func(c *cli.Context) error {
					speed := c.Float64(flagSpeed)
					if err := differential.ValidateSpeed(speed); err != nil {
						return err
					}
					return withRobot(c, func(ctx context.Context, r *robot.Robot, logger logging.Logger) error {
						// Tags every line of this run, so runs can be told apart in a shared log file.
						run := uuid.NewString()
						err := runSequence(ctx, r.Drive(), speed, spinSequence(), pauseBetweenSteps, run, logger)
						if err != nil {
							return err
						}
						return printStatus(ctx, c, r)
					})
				},
			},
			{
				Name:  "status",
				Usage: "print both encoder readings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagFormat,
						Usage: "output format, json or table; table on a terminal and json otherwise when unset",
					},
				},
				Action: func(c *cli.Context) error {
					return withRobot(c, func(ctx context.Context, r *robot.Robot, logger logging.Logger) error {
						return printStatus(ctx, c, r)
					})
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the config file",
				Action: func(c *cli.Context) error {
					out, err := json.MarshalIndent(config.Schema(), "", "  ")
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(out))
					return err
				},
			},
			{
				Name:  "diff",
				Usage: "show where the loaded config departs from the stock wiring",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					diff, err := config.DiffFromDefault(cfg)
					if err != nil {
						return err
					}
					if diff == "" {
						diff = "no changes from the stock config\n"
					}
					_, err = fmt.Fprint(c.App.Writer, diff)
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(path)
}

func newLogger(c *cli.Context, cfg *config.Config) (logging.Logger, func() error, error) {
	logger := logging.NewLogger("motortest")
	logger.SetLevel(cfg.Level())
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	closeLog := func() error { return nil }
	if path := c.String(flagLog); path != "" {
		maxBytes, err := parseLogSize(c.String(flagLogMax))
		if err != nil {
			return nil, nil, err
		}
		appender, closer := logging.NewFileAppender(path, maxBytes)
		logger.AddAppender(appender)
		closeLog = closer.Close
	}
	return logger, closeLog, nil
}

// parseLogSize reads a human readable size. Both MB and MiB mean 1024*1024 bytes.
func parseLogSize(size string) (int64, error) {
	n, err := units.RAMInBytes(size)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid --%s", flagLogMax)
	}
	if n <= 0 {
		return 0, errors.Errorf("invalid --%s %q: must be positive", flagLogMax, size)
	}
	return n, nil
}

// withRobot brings the robot up, runs f with a context that is cancelled on SIGINT or SIGTERM
// and always tears the robot down afterwards.
func withRobot(c *cli.Context, f func(context.Context, *robot.Robot, logging.Logger) error) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, closeLog())
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := robot.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Combine(err, r.Close(closeCtx))
	}()
	return f(ctx, r, logger)
}

func printStatus(ctx context.Context, c *cli.Context, r *robot.Robot) error {
	status, err := r.Status(ctx)
	if err != nil {
		return err
	}
	return renderStatus(c.App.Writer, status, resolveFormat(c.String(flagFormat), c.App.Writer))
}
