package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/platescan/config"
	"github.com/raine/platescan/internal/app"
	"github.com/raine/platescan/internal/bot"
	"github.com/raine/platescan/internal/janitor"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const logFileName = "platescan-bot.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()

	if missing := config.CheckRequired(config.RequiredEnvVars(strings.ToLower(os.Getenv("ANALYZER")), true)...); len(missing) > 0 {
		if config.IsInteractiveTerminal() {
			if !config.RunSetupWizard() {
				config.WaitOnWindows()
				os.Exit(1)
			}
		} else {
			config.FatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	// JOURNAL_STREAM is set by systemd, where journald keeps the logs.
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			config.FatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	cfg, err := config.Load()
	if err != nil {
		config.FatalWithWait("invalid config: %v", err)
	}
	if cfg.AdminTelegramID == 0 {
		config.FatalWithWait("ADMIN_TELEGRAM_ID is not set")
	}

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		config.FatalWithWait("failed to initialize telegram bot: %v", err)
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	bot.RegisterCommands(tg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	services, err := app.Open(ctx, cfg)
	if err != nil {
		config.FatalWithWait("%v", err)
	}
	defer services.Close()

	b := bot.NewBot(tg, bot.Deps{
		AllowList:   services.DB,
		History:     services.History,
		Medications: services.Medications,
		Analyzer:    services.Analyzer,
		Stitch:      services.Stitch,
	}, cfg.AdminTelegramID)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runBot(ctx, tg, b)
	})
	g.Go(func() error {
		janitor.NewService(services.DB).Run(ctx)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func runBot(ctx context.Context, tg *tgbotapi.BotAPI, b *bot.Bot) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	var wg sync.WaitGroup
	defer b.Shutdown()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return errors.New("updates channel closed")
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}
