package cli

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// cronParser accepts an optional seconds field and descriptors like @hourly.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// runScheduled runs job on spec until ctx is done. A tick that fires while
// the previous run is still going is skipped. On return any in-flight run
// has finished.
func runScheduled(ctx context.Context, spec string, job func(context.Context)) error {
	logger := zerolog.Ctx(ctx)
	cl := cronLogger{logger: logger}

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	id, err := c.AddFunc(spec, func() { job(ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	logger.Info().Str("schedule", spec).Time("next_run", c.Entry(id).Next).Msg("scheduler started")

	<-ctx.Done()
	logger.Info().Msg("stopping scheduler, waiting for the running snapshot")
	<-c.Stop().Done()
	return nil
}
