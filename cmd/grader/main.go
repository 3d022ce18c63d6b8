package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/answer-grader/internal/app"
	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
	"github.com/lueurxax/answer-grader/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.IsLocal(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, &logger)
	if err != nil {
		if errors.Is(err, graderrors.ErrModelUnavailable) {
			logger.Fatal().Err(err).Msg("failed to load models")
		}

		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	if err := application.Serve(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Error().Err(err).Msg("application error")
		application.Close()
		os.Exit(1)
	}

	logger.Info().Msg("application stopped")
}

func newLogger(local bool, level string) zerolog.Logger {
	var logger zerolog.Logger

	if local {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if lvl, err := zerolog.ParseLevel(level); err == nil {
		logger = logger.Level(lvl)
	}

	return logger
}
