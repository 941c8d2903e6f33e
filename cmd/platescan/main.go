// Command platescan analyzes meal photos from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raine/platescan/config"
	"github.com/raine/platescan/internal/app"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// env carries what every subcommand needs. Tests swap open for in-memory
// services.
type env struct {
	out    io.Writer
	errOut io.Writer
	open   func(ctx context.Context) (*app.Services, error)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	config.LoadEnvFile()

	e := &env{
		out:    os.Stdout,
		errOut: os.Stderr,
		open:   openServices,
	}

	if err := newCommand(e).Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("failed to run")
		os.Exit(1)
	}
}

func newCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      config.AppName,
		Usage:     "Meal photo nutrition analysis",
		Writer:    e.out,
		ErrWriter: e.errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log at debug level",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				log.Logger = log.Logger.Level(zerolog.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			analyzeCommand(e),
			stitchCommand(e),
			historyCommand(e),
			medsCommand(e),
		},
	}
}

func openServices(ctx context.Context) (*app.Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if missing := config.CheckRequired(config.RequiredEnvVars(cfg.Analyzer, false)...); len(missing) > 0 {
		return nil, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return app.Open(ctx, cfg)
}

// withServices opens the services for the duration of fn.
func (e *env) withServices(ctx context.Context, fn func(s *app.Services) error) error {
	s, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
