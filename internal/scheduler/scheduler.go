package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/screentime/internal/models"
)

// AwardRunner runs one award pass.
type AwardRunner interface {
	Run(ctx context.Context) (models.AwardResult, error)
}

// Run triggers runner on the cron expression schedule until ctx is cancelled.
// Schedules are evaluated in UTC. A pass still running when the next one is
// due causes that trigger to be skipped. Run returns an error only when schedule
// does not parse; on shutdown it waits for a running pass to finish.
func Run(ctx context.Context, schedule string, runner AwardRunner, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(schedule, func() { runOnce(ctx, runner, logger) }); err != nil {
		return fmt.Errorf("scheduler: invalid award schedule %q: %w", schedule, err)
	}

	logger.Info("scheduler: started", "schedule", schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("scheduler: stopped")
	return nil
}

func runOnce(ctx context.Context, runner AwardRunner, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	res, err := runner.Run(ctx)
	if err != nil {
		logger.Error("scheduler: award pass failed", "error", err)
		return
	}
	logger.Info("scheduler: award pass done", "week", res.Week, "users_awarded", res.UsersAwarded, "tokens_awarded", res.TokensAwarded)
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
