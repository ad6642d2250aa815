package wordlebot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger routes cron's own logging to zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler runs fn on the cron schedule in loc. Panics in fn are recovered by cron.
func NewScheduler(ctx context.Context, schedule string, loc *time.Location, logger *zap.SugaredLogger, fn func(context.Context)) (*cron.Cron, error) {
	l := cronLogger{logger: logger.Named("cron")}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l)),
	)

	if _, err := c.AddFunc(schedule, func() { fn(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}

	return c, nil
}
