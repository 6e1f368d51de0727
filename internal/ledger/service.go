package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

// Service is the append-only record of every completed delivery. Entries are
// never updated or removed; throttling reads the most recent entry per
// (alert, user) pair.
type Service interface {
	Record(ctx context.Context, alertID, userID int64, at time.Time) error
	LastDelivery(ctx context.Context, alertID, userID int64) (time.Time, bool, error)
	Count(ctx context.Context) (int, error)
}

type service struct {
	repo   repository.DeliveryRepository
	logger zerolog.Logger
}

func NewService(repo repository.DeliveryRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With().Str("component", "ledger_service").Logger(),
	}
}

func (s *service) Record(ctx context.Context, alertID, userID int64, at time.Time) error {
	err := s.repo.Append(ctx, models.NotificationDelivery{
		AlertID:     alertID,
		UserID:      userID,
		DeliveredAt: at,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("alert_id", alertID).Int64("user_id", userID).Msg("failed to record delivery")
		return err
	}
	return nil
}

func (s *service) LastDelivery(ctx context.Context, alertID, userID int64) (time.Time, bool, error) {
	return s.repo.LastDelivery(ctx, alertID, userID)
}

func (s *service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
