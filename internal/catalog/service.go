package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

// Sentinels re-exported so callers depend on the catalog package only.
var (
	ErrNotFound         = repository.ErrNotFound
	ErrInvalidAlertSpec = repository.ErrInvalidAlertSpec
)

// CreateParams carries the full field set for a new alert. Title and both
// window bounds are required; the remaining zero-valued fields fall back to
// the platform defaults: InApp delivery and a two-hour reminder cadence.
type CreateParams struct {
	Title             string
	Message           string
	Severity          models.Severity
	DeliveryType      models.DeliveryType
	StartTime         time.Time
	ExpiryTime        time.Time
	ReminderFrequency time.Duration
	RemindersEnabled  bool
	OrgWide           bool
	TeamIDs           []int64
	UserIDs           []int64
}

type Service interface {
	Create(ctx context.Context, params CreateParams) (models.Alert, error)
	Get(ctx context.Context, id int64) (models.Alert, error)
	Update(ctx context.Context, id int64, upd repository.AlertUpdate) (models.Alert, error)
	Archive(ctx context.Context, id int64) error
	List(ctx context.Context, filter repository.AlertFilter) ([]models.Alert, error)
}

type service struct {
	repo   repository.AlertRepository
	logger zerolog.Logger
}

func NewService(repo repository.AlertRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (models.Alert, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return models.Alert{}, errors.Wrap(ErrInvalidAlertSpec, "title is required")
	}
	// A zero time would slip past the ordering check below and produce an
	// alert that can never be live.
	if params.StartTime.IsZero() || params.ExpiryTime.IsZero() {
		return models.Alert{}, errors.Wrap(ErrInvalidAlertSpec, "start_time and expiry_time are required")
	}
	if params.StartTime.After(params.ExpiryTime) {
		return models.Alert{}, errors.Wrap(ErrInvalidAlertSpec, "start_time is after expiry_time")
	}

	alert := models.Alert{
		Title:             title,
		Message:           params.Message,
		Severity:          params.Severity,
		DeliveryType:      params.DeliveryType,
		StartTime:         params.StartTime,
		ExpiryTime:        params.ExpiryTime,
		ReminderFrequency: params.ReminderFrequency,
		RemindersEnabled:  params.RemindersEnabled,
		Status:            models.AlertActive,
		OrgWide:           params.OrgWide,
		TeamIDs:           params.TeamIDs,
		UserIDs:           params.UserIDs,
	}
	if alert.DeliveryType == "" {
		alert.DeliveryType = models.DeliveryInApp
	}
	if alert.ReminderFrequency <= 0 {
		alert.ReminderFrequency = models.DefaultReminderFrequency
	}
	if !alert.HasAudience() {
		return models.Alert{}, errors.Wrap(ErrInvalidAlertSpec, "alert has no audience")
	}

	created, err := s.repo.Create(ctx, alert)
	if err != nil {
		s.logger.Error().Err(err).Str("title", alert.Title).Msg("failed to create alert")
		return models.Alert{}, err
	}
	s.logger.Info().
		Int64("alert_id", created.ID).
		Str("severity", string(created.Severity)).
		Str("delivery_type", string(created.DeliveryType)).
		Msg("alert created")
	return created, nil
}

func (s *service) Get(ctx context.Context, id int64) (models.Alert, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Update(ctx context.Context, id int64, upd repository.AlertUpdate) (models.Alert, error) {
	// Both bounds changing at once can be checked up front; single-bound
	// changes are validated against the stored row by the repository.
	if upd.StartTime != nil && upd.ExpiryTime != nil && upd.StartTime.After(*upd.ExpiryTime) {
		return models.Alert{}, errors.Wrap(ErrInvalidAlertSpec, "start_time is after expiry_time")
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidAlertSpec) {
			s.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to update alert")
		}
		return models.Alert{}, err
	}
	s.logger.Info().Int64("alert_id", id).Msg("alert updated")
	return updated, nil
}

func (s *service) Archive(ctx context.Context, id int64) error {
	if err := s.repo.Archive(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to archive alert")
		return err
	}
	s.logger.Info().Int64("alert_id", id).Msg("alert archived")
	return nil
}

func (s *service) List(ctx context.Context, filter repository.AlertFilter) ([]models.Alert, error) {
	return s.repo.List(ctx, filter)
}
