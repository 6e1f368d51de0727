package analytics

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

// Service recomputes the operator rollups on demand from the live stores.
// Nothing is cached; the document is cheap at this scale and always current.
type Service interface {
	Overview(ctx context.Context) (models.AnalyticsOverview, error)
}

type service struct {
	alerts      repository.AlertRepository
	preferences repository.PreferenceRepository
	deliveries  repository.DeliveryRepository
	logger      zerolog.Logger
}

func NewService(
	alerts repository.AlertRepository,
	preferences repository.PreferenceRepository,
	deliveries repository.DeliveryRepository,
	logger zerolog.Logger,
) Service {
	return &service{
		alerts:      alerts,
		preferences: preferences,
		deliveries:  deliveries,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *service) Overview(ctx context.Context) (models.AnalyticsOverview, error) {
	total, err := s.alerts.Count(ctx)
	if err != nil {
		return models.AnalyticsOverview{}, errors.Wrap(err, "count alerts")
	}

	delivered, err := s.deliveries.Count(ctx)
	if err != nil {
		return models.AnalyticsOverview{}, errors.Wrap(err, "count deliveries")
	}

	// Delivered counts ledger rows, read counts preference rows. The two
	// track different populations, so they are reported side by side
	// rather than as a ratio.
	read, err := s.preferences.CountByState(ctx, models.StateRead)
	if err != nil {
		return models.AnalyticsOverview{}, errors.Wrap(err, "count read preferences")
	}

	// Counts pairs whose state is Snoozed right now, including snoozes
	// whose calendar day has already lapsed.
	snoozed, err := s.preferences.SnoozedCountPerAlert(ctx)
	if err != nil {
		return models.AnalyticsOverview{}, errors.Wrap(err, "count snoozed preferences")
	}

	bySeverity, err := s.alerts.CountBySeverity(ctx)
	if err != nil {
		return models.AnalyticsOverview{}, errors.Wrap(err, "count alerts by severity")
	}
	// Every severity appears in the breakdown, zero or not.
	for _, sev := range models.Severities {
		if _, ok := bySeverity[sev]; !ok {
			bySeverity[sev] = 0
		}
	}

	return models.AnalyticsOverview{
		TotalAlertsCreated: total,
		DeliveredVsRead:    models.DeliveredVsRead{Delivered: delivered, Read: read},
		SnoozedPerAlert:    snoozed,
		BySeverity:         bySeverity,
	}, nil
}
