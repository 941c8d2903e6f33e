package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raine/platescan/internal/alert"
	"github.com/raine/platescan/internal/app"
	"github.com/raine/platescan/internal/mealstitch"
	"github.com/raine/platescan/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var errInvalidArgCount = errors.New("expected exactly one argument: image path or \"-\" for stdin")

func analyzeCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a photo of a meal",
		ArgsUsage: "<image | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the analysis record as JSON",
			},
			&cli.BoolFlag{
				Name:    "save",
				Aliases: []string{"s"},
				Usage:   "Save the analysis to history",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}
			path := cmd.Args().First()

			image, err := readImage(path)
			if err != nil {
				return err
			}

			return e.withServices(ctx, func(s *app.Services) error {
				user := s.Config.User

				meds, err := s.Medications.ListMedications(ctx, user)
				if err != nil {
					log.Warn().Err(err).Msg("failed to load medications, analyzing without them")
					meds = nil
				}

				r, err := s.Analyzer.AnalyzeImage(ctx, image, meds)
				if err != nil {
					return fmt.Errorf("analysis failed: %w", err)
				}
				r.ImageRef = path

				if cmd.Bool("save") {
					if err := s.History.SaveAnalysis(ctx, user, r); err != nil {
						return err
					}
				}

				if cmd.Bool("json") {
					enc := json.NewEncoder(e.out)
					enc.SetIndent("", "  ")
					return enc.Encode(r)
				}

				fmt.Fprint(e.out, report.Format(r))
				if cmd.Bool("save") && r.ID != "" {
					fmt.Fprintf(e.out, "\nSaved as %s\n", r.ID)
				}
				return nil
			})
		},
	}
}

func stitchCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "stitch",
		Usage:     fmt.Sprintf("Analyze a meal from up to %d photos, one per item", mealstitch.MaxItems),
		ArgsUsage: "<image>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return errors.New("expected at least one image path")
			}
			if len(paths) > mealstitch.MaxItems {
				return fmt.Errorf("too many images: %d (max %d)", len(paths), mealstitch.MaxItems)
			}

			images := make([][]byte, 0, len(paths))
			for _, p := range paths {
				image, err := readImage(p)
				if err != nil {
					return err
				}
				images = append(images, image)
			}

			return e.withServices(ctx, func(s *app.Services) error {
				sink := alert.Func(func(a alert.Alert) {
					fmt.Fprintf(e.errOut, "%s: %s\n", a.Title, a.Message)
				})
				meal, err := mealstitch.NewService(s.Stitch, sink).Analyze(ctx, images)
				if err != nil {
					return fmt.Errorf("meal analysis failed: %w", err)
				}

				fmt.Fprint(e.out, report.FormatMeal(meal.Parsed(), meal.Summary.Synthesis))
				return nil
			})
		},
	}
}

func readImage(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", path)
	}
	return data, nil
}
