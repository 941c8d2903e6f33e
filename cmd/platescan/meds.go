package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raine/platescan/internal/app"
	"github.com/raine/platescan/internal/models"
	"github.com/urfave/cli/v3"
)

func medsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "meds",
		Usage: "Manage the medications checked during analysis",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List medications",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return e.withServices(ctx, func(s *app.Services) error {
						meds, err := s.Medications.ListMedications(ctx, s.Config.User)
						if err != nil {
							return err
						}
						if len(meds) == 0 {
							fmt.Fprintln(e.out, "No medications.")
							return nil
						}
						for _, m := range meds {
							fmt.Fprintf(e.out, "%s  %s\n", m.ID, m)
							if m.Notes != "" {
								fmt.Fprintf(e.out, "    %s\n", m.Notes)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "add",
				Usage: "Add a medication",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Medication name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "dosage",
						Usage: "Dosage, e.g. 10mg",
					},
					&cli.StringFlag{
						Name:  "frequency",
						Usage: "How often it is taken, e.g. daily",
					},
					&cli.StringSliceFlag{
						Name:  "time",
						Usage: "Time of day it is taken (repeatable or comma separated)",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Free-form notes",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m := models.Medication{
						Name:      strings.TrimSpace(cmd.String("name")),
						Dosage:    strings.TrimSpace(cmd.String("dosage")),
						Frequency: strings.TrimSpace(cmd.String("frequency")),
						TimeOfDay: models.SplitTimes(strings.Join(cmd.StringSlice("time"), ",")),
						Notes:     strings.TrimSpace(cmd.String("notes")),
					}
					if m.Name == "" {
						return errors.New("--name must not be blank")
					}

					return e.withServices(ctx, func(s *app.Services) error {
						added, err := s.Medications.AddMedication(ctx, s.Config.User, m.Normalized())
						if err != nil {
							return err
						}
						fmt.Fprintf(e.out, "Added %s (id %s)\n", added, added.ID)
						return nil
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a medication",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 1 {
						return fmt.Errorf("expected exactly one medication id, got %d", cmd.NArg())
					}
					id := cmd.Args().First()

					return e.withServices(ctx, func(s *app.Services) error {
						if err := s.Medications.DeleteMedication(ctx, s.Config.User, id); err != nil {
							return err
						}
						fmt.Fprintf(e.out, "Removed %s\n", id)
						return nil
					})
				},
			},
		},
	}
}
