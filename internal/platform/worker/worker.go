// Package worker provides small loop abstractions for background maintenance,
// such as sweeping expired embedding-cache entries.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFieldWorker = "worker"
	logFieldTask   = "task"
)

// Task is a unit of periodic work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Config configures a ticker loop.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// Tasks run on their own tickers. Tasks with a non-positive interval are skipped.
	Tasks []Task

	// RunOnStart runs every task once before the first tick.
	RunOnStart bool

	// Logger for the worker.
	Logger *zerolog.Logger
}

// Loop runs each task on its own ticker until the context is canceled.
// Returns a wrapped context error on cancellation.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Msg("starting worker loop")
	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")

	cases := make([]<-chan time.Time, len(cfg.Tasks))

	for i, task := range cfg.Tasks {
		if task.Interval <= 0 || task.Run == nil {
			continue
		}

		ticker := time.NewTicker(task.Interval)
		defer ticker.Stop()

		cases[i] = ticker.C

		if cfg.RunOnStart {
			runTask(ctx, task, logger)
		}
	}

	for {
		fired := -1

		for i, ch := range cases {
			if ch == nil {
				continue
			}

			select {
			case <-ch:
				fired = i
			default:
			}

			if fired >= 0 {
				break
			}
		}

		if fired >= 0 {
			runTask(ctx, cfg.Tasks[fired], logger)
			continue
		}

		if err := Wait(ctx, pollInterval(cfg.Tasks)); err != nil {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
		}
	}
}

func runTask(ctx context.Context, task Task, logger *zerolog.Logger) {
	defer RecoverPanic(logger, task.Name)

	logger.Debug().Str(logFieldTask, task.Name).Msg("running periodic task")
	task.Run(ctx)
}

// pollInterval picks a wake-up period fine enough for the shortest task.
func pollInterval(tasks []Task) time.Duration {
	const (
		maxPoll = time.Second
		minPoll = 10 * time.Millisecond
		divisor = 4
	)

	poll := maxPoll

	for _, t := range tasks {
		if t.Interval > 0 && t.Interval/divisor < poll {
			poll = t.Interval / divisor
		}
	}

	if poll < minPoll {
		poll = minPoll
	}

	return poll
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RecoverPanic recovers from panics and logs them.
// Use as: defer worker.RecoverPanic(logger, "operation name")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}
