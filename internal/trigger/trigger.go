package trigger

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/dispatch"
)

// Runner is the dispatch surface the trigger drives.
type Runner interface {
	Run(ctx context.Context, now time.Time) (dispatch.Report, error)
}

// Trigger fires the reminder dispatcher on a fixed cadence. The manual
// /trigger_reminders endpoint works either way; a zero interval means
// manual-only operation.
type Trigger struct {
	runner   Runner
	interval time.Duration
	logger   zerolog.Logger
	c        *cron.Cron
}

func New(runner Runner, interval time.Duration, logger zerolog.Logger) *Trigger {
	return &Trigger{
		runner:   runner,
		interval: interval,
		logger:   logger.With().Str("component", "trigger").Logger(),
	}
}

// Start registers the recurring tick and starts the scheduler.
func (t *Trigger) Start(ctx context.Context) error {
	if t.interval <= 0 {
		t.logger.Info().Msg("recurring dispatch disabled, manual trigger only")
		return nil
	}

	t.c = cron.New()
	_, err := t.c.AddFunc("@every "+t.interval.String(), func() {
		if _, err := t.runner.Run(ctx, time.Now()); err != nil {
			t.logger.Error().Err(err).Msg("scheduled dispatch failed")
		}
	})
	if err != nil {
		return err
	}

	t.c.Start()
	t.logger.Info().Dur("interval", t.interval).Msg("recurring dispatch started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight tick to finish.
func (t *Trigger) Stop() {
	if t.c == nil {
		return
	}
	<-t.c.Stop().Done()
	t.c = nil
	t.logger.Info().Msg("recurring dispatch stopped")
}
