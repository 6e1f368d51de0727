package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/heraldhq/herald-api/internal/catalog"
	"github.com/heraldhq/herald-api/internal/channel"
	"github.com/heraldhq/herald-api/internal/directory"
	"github.com/heraldhq/herald-api/internal/ledger"
	"github.com/heraldhq/herald-api/internal/metrics"
	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/preference"
	"github.com/heraldhq/herald-api/internal/repository"
)

// Report summarizes one dispatch run.
type Report struct {
	RunID            string    `json:"run_id"`
	At               time.Time `json:"at"`
	Alerts           int       `json:"alerts"`
	Delivered        int       `json:"delivered"`
	Skipped          int       `json:"skipped"`
	Failed           int       `json:"failed"`
	SkippedSnoozed   int       `json:"skipped_snoozed"`
	SkippedThrottled int       `json:"skipped_throttled"`
	SkippedUnbound   int       `json:"skipped_unbound"`
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeSnoozed
	outcomeThrottled
	outcomeFailed
)

func (r *Report) count(o outcome) {
	switch o {
	case outcomeDelivered:
		r.Delivered++
	case outcomeSnoozed:
		r.Skipped++
		r.SkippedSnoozed++
	case outcomeThrottled:
		r.Skipped++
		r.SkippedThrottled++
	case outcomeFailed:
		r.Failed++
	}
}

// Config tunes a Dispatcher. Zero values fall back to sane defaults.
type Config struct {
	Workers         int
	DeliveryTimeout time.Duration
	RatePerSec      int
}

// Dispatcher walks the live, reminders-enabled alerts on every run, resolves
// each audience against the directory, and re-notifies every recipient who
// is neither snoozed for the day nor inside their throttle window. Runs may
// overlap; a per-pair lock keeps any (alert, user) pair from being delivered
// twice within one throttle window.
type Dispatcher struct {
	catalog     catalog.Service
	directory   *directory.Directory
	preferences preference.Service
	ledger      ledger.Service
	channels    *channel.Registry
	logger      zerolog.Logger

	workers int
	timeout time.Duration
	limiter *rate.Limiter
	pairs   pairLocks
}

func New(
	cat catalog.Service,
	dir *directory.Directory,
	prefs preference.Service,
	led ledger.Service,
	channels *channel.Registry,
	cfg Config,
	logger zerolog.Logger,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 50
	}
	return &Dispatcher{
		catalog:     cat,
		directory:   dir,
		preferences: prefs,
		ledger:      led,
		channels:    channels,
		logger:      logger.With().Str("component", "dispatcher").Logger(),
		workers:     cfg.Workers,
		timeout:     cfg.DeliveryTimeout,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Run executes one reminder tick at the given logical time. Recipient
// failures are isolated: they are counted and logged, never returned. The
// error is non-nil only when the alert listing itself fails.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (Report, error) {
	report := Report{RunID: uuid.NewString(), At: now}
	start := time.Now()

	alerts, err := d.catalog.List(ctx, repository.AlertFilter{})
	if err != nil {
		return Report{}, errors.Wrap(err, "list alerts")
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, d.workers)
	)

	for _, alert := range alerts {
		if !alert.IsLive(now) || !alert.RemindersEnabled {
			continue
		}
		report.Alerts++

		ch, err := d.channels.Resolve(alert.DeliveryType)
		if err != nil {
			skipped := d.audienceSize(alert)
			d.logger.Warn().
				Int64("alert_id", alert.ID).
				Str("delivery_type", string(alert.DeliveryType)).
				Int("recipients", skipped).
				Msg("no channel bound for delivery type, skipping audience")
			metrics.RemindersSkipped.WithLabelValues(metrics.ReasonUnbound).Add(float64(skipped))
			report.Skipped += skipped
			report.SkippedUnbound += skipped
			continue
		}

		for _, user := range d.directory.Users() {
			if !alert.AudienceContains(user) {
				continue
			}
			wg.Add(1)
			go func(alert models.Alert, user models.User) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				o := d.deliverOne(ctx, ch, alert, user, now)
				mu.Lock()
				report.count(o)
				mu.Unlock()
			}(alert, user)
		}
	}
	wg.Wait()

	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	d.logger.Info().
		Str("run_id", report.RunID).
		Int("alerts", report.Alerts).
		Int("delivered", report.Delivered).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("reminder dispatch complete")
	return report, nil
}

// deliverOne decides and, if due, performs the delivery for a single
// (alert, user) pair. The pair lock spans the throttle check through the
// ledger append so overlapping runs cannot both deliver inside one window.
func (d *Dispatcher) deliverOne(ctx context.Context, ch channel.Channel, alert models.Alert, user models.User, now time.Time) outcome {
	unlock := d.pairs.lock(alert.ID, user.ID)
	defer unlock()

	snoozed, err := d.preferences.IsSnoozed(ctx, user.ID, alert.ID, now)
	if err != nil {
		d.logger.Error().Err(err).Int64("alert_id", alert.ID).Int64("user_id", user.ID).Msg("snooze lookup failed")
		metrics.RemindersFailed.Inc()
		return outcomeFailed
	}
	if snoozed {
		metrics.RemindersSkipped.WithLabelValues(metrics.ReasonSnoozed).Inc()
		return outcomeSnoozed
	}

	last, delivered, err := d.ledger.LastDelivery(ctx, alert.ID, user.ID)
	if err != nil {
		d.logger.Error().Err(err).Int64("alert_id", alert.ID).Int64("user_id", user.ID).Msg("ledger lookup failed")
		metrics.RemindersFailed.Inc()
		return outcomeFailed
	}
	// Due exactly at last + frequency, not a moment before.
	if delivered && now.Before(last.Add(alert.ReminderFrequency)) {
		metrics.RemindersSkipped.WithLabelValues(metrics.ReasonThrottled).Inc()
		return outcomeThrottled
	}

	if err := d.limiter.Wait(ctx); err != nil {
		metrics.RemindersFailed.Inc()
		return outcomeFailed
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err = ch.Send(sendCtx, user, alert)
	cancel()
	if err != nil {
		d.logger.Warn().
			Err(err).
			Int64("alert_id", alert.ID).
			Int64("user_id", user.ID).
			Str("delivery_type", string(alert.DeliveryType)).
			Msg("reminder delivery failed")
		metrics.RemindersFailed.Inc()
		return outcomeFailed
	}

	// The ledger records the run's logical time so throttling math stays in
	// one clock domain.
	if err := d.ledger.Record(ctx, alert.ID, user.ID, now); err != nil {
		d.logger.Error().Err(err).Int64("alert_id", alert.ID).Int64("user_id", user.ID).Msg("delivered but failed to record")
		metrics.RemindersFailed.Inc()
		return outcomeFailed
	}
	metrics.RemindersDelivered.Inc()
	return outcomeDelivered
}

func (d *Dispatcher) audienceSize(alert models.Alert) int {
	n := 0
	for _, user := range d.directory.Users() {
		if alert.AudienceContains(user) {
			n++
		}
	}
	return n
}
