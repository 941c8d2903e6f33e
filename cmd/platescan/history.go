package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/raine/platescan/internal/app"
	"github.com/raine/platescan/internal/report"
	"github.com/urfave/cli/v3"
)

func historyCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List or delete saved analyses",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved analyses, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of analyses to show",
						Value:   20,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of analyses to skip",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					limit, offset := cmd.Int("limit"), cmd.Int("offset")
					if limit <= 0 || offset < 0 {
						return errors.New("--limit must be positive and --offset not negative")
					}

					return e.withServices(ctx, func(s *app.Services) error {
						results, err := s.History.ListAnalyses(ctx, s.Config.User, limit, offset)
						if err != nil {
							return err
						}
						if len(results) == 0 {
							fmt.Fprintln(e.out, "No saved analyses.")
							return nil
						}
						fmt.Fprintln(e.out, report.FormatHistory(results))
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved analysis",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 1 {
						return fmt.Errorf("expected exactly one analysis id, got %d", cmd.NArg())
					}
					id := cmd.Args().First()

					return e.withServices(ctx, func(s *app.Services) error {
						if err := s.History.DeleteAnalysis(ctx, s.Config.User, id); err != nil {
							return err
						}
						fmt.Fprintf(e.out, "Deleted %s\n", id)
						return nil
					})
				},
			},
		},
	}
}
