package preference

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

// Service owns the per-(user, alert) read/snooze state machine. Records are
// created lazily in the Unread state the first time a pair is touched;
// transitions are unconditional and never fail on state grounds.
type Service interface {
	Get(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error)
	MarkRead(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error)
	MarkUnread(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error)
	// Snooze silences the pair for the calendar day of at.
	Snooze(ctx context.Context, userID, alertID int64, at time.Time) (models.UserAlertPreference, error)
	// IsSnoozed reports whether the pair is snoozed for the calendar day of at.
	IsSnoozed(ctx context.Context, userID, alertID int64, at time.Time) (bool, error)
	CountByState(ctx context.Context, state models.PreferenceState) (int, error)
	SnoozedCountPerAlert(ctx context.Context) (map[int64]int, error)
}

type service struct {
	repo   repository.PreferenceRepository
	logger zerolog.Logger
}

func NewService(repo repository.PreferenceRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With().Str("component", "preference_service").Logger(),
	}
}

func (s *service) Get(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	return s.repo.GetOrCreate(ctx, userID, alertID)
}

func (s *service) MarkRead(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	pref, err := s.repo.MarkRead(ctx, userID, alertID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Int64("alert_id", alertID).Msg("failed to mark read")
		return models.UserAlertPreference{}, err
	}
	return pref, nil
}

func (s *service) MarkUnread(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	pref, err := s.repo.MarkUnread(ctx, userID, alertID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Int64("alert_id", alertID).Msg("failed to mark unread")
		return models.UserAlertPreference{}, err
	}
	return pref, nil
}

func (s *service) Snooze(ctx context.Context, userID, alertID int64, at time.Time) (models.UserAlertPreference, error) {
	day := models.DateOf(at)
	pref, err := s.repo.Snooze(ctx, userID, alertID, day)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Int64("alert_id", alertID).Msg("failed to snooze")
		return models.UserAlertPreference{}, err
	}
	s.logger.Debug().
		Int64("user_id", userID).
		Int64("alert_id", alertID).
		Str("snoozed_on", day.String()).
		Msg("alert snoozed for the day")
	return pref, nil
}

func (s *service) IsSnoozed(ctx context.Context, userID, alertID int64, at time.Time) (bool, error) {
	pref, err := s.repo.GetOrCreate(ctx, userID, alertID)
	if err != nil {
		return false, err
	}
	return pref.IsSnoozedOn(models.DateOf(at)), nil
}

func (s *service) CountByState(ctx context.Context, state models.PreferenceState) (int, error) {
	return s.repo.CountByState(ctx, state)
}

func (s *service) SnoozedCountPerAlert(ctx context.Context) (map[int64]int, error) {
	return s.repo.SnoozedCountPerAlert(ctx)
}
