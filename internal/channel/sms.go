package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/models"
)

// SMS is a provider stub: it logs the dispatch instead of calling a gateway.
// When disabled it fails every send, so a misconfigured SMS alert shows up
// as per-recipient delivery failures rather than silently recording
// deliveries that never happened.
type SMS struct {
	enabled bool
	sender  string
	logger  zerolog.Logger
}

func NewSMS(cfg config.SMSConfig, logger zerolog.Logger) *SMS {
	return &SMS{
		enabled: cfg.Enabled,
		sender:  strings.TrimSpace(cfg.Sender),
		logger:  logger.With().Str("channel", "sms").Logger(),
	}
}

func (c *SMS) Send(_ context.Context, user models.User, alert models.Alert) error {
	if !c.enabled {
		return fmt.Errorf("sms channel is disabled")
	}
	phone := strings.TrimSpace(user.Phone)
	if phone == "" {
		return fmt.Errorf("user %d has no phone number", user.ID)
	}
	c.logger.Info().
		Int64("user_id", user.ID).
		Int64("alert_id", alert.ID).
		Str("phone", phone).
		Str("sender", c.sender).
		Msg("sms reminder dispatched (mock)")
	return nil
}

func (c *SMS) String() string {
	if !c.enabled {
		return "SMS(disabled)"
	}
	return "SMS"
}
