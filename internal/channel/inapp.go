package channel

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/models"
)

// InApp surfaces reminders in the product itself. Delivery is the act of
// recording the notification for the user's feed, so it never fails.
type InApp struct {
	logger zerolog.Logger
}

func NewInApp(logger zerolog.Logger) *InApp {
	return &InApp{logger: logger.With().Str("channel", "inapp").Logger()}
}

func (c *InApp) Send(_ context.Context, user models.User, alert models.Alert) error {
	c.logger.Info().
		Int64("user_id", user.ID).
		Str("user", user.Name).
		Int64("alert_id", alert.ID).
		Str("severity", string(alert.Severity)).
		Str("title", alert.Title).
		Msg("in-app reminder delivered")
	return nil
}

func (c *InApp) String() string {
	return "InApp"
}
