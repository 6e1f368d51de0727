package channel

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/models"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	inapp := NewInApp(zerolog.Nop())
	reg.Bind(models.DeliveryInApp, inapp)

	ch, err := reg.Resolve(models.DeliveryInApp)
	require.NoError(t, err)
	require.Same(t, inapp, ch)

	_, err = reg.Resolve(models.DeliveryEmail)
	require.ErrorIs(t, err, ErrUnbound)

	require.Equal(t, []models.DeliveryType{models.DeliveryInApp}, reg.Bound())
}

func TestInAppAlwaysDelivers(t *testing.T) {
	ch := NewInApp(zerolog.Nop())
	err := ch.Send(context.Background(), models.User{ID: 1, Name: "Alice"}, models.Alert{ID: 10, Title: "Outage"})
	require.NoError(t, err)
}

func TestEmailRequiresSMTPConfig(t *testing.T) {
	_, err := NewEmail(config.EmailConfig{From: "herald@example.com"}, zerolog.Nop())
	require.Error(t, err)

	_, err = NewEmail(config.EmailConfig{SMTPHost: "smtp.example.com"}, zerolog.Nop())
	require.Error(t, err)

	ch, err := NewEmail(config.EmailConfig{SMTPHost: "smtp.example.com", From: "herald@example.com"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 587, ch.port)
}

func TestEmailRejectsRecipientWithoutAddress(t *testing.T) {
	ch, err := NewEmail(config.EmailConfig{SMTPHost: "smtp.example.com", From: "herald@example.com"}, zerolog.Nop())
	require.NoError(t, err)

	err = ch.Send(context.Background(), models.User{ID: 2, Name: "Bob"}, models.Alert{ID: 10})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no email address")
}

func TestSMSDisabledFailsEverySend(t *testing.T) {
	ch := NewSMS(config.SMSConfig{Enabled: false}, zerolog.Nop())
	err := ch.Send(context.Background(), models.User{ID: 1, Phone: "+15550100"}, models.Alert{ID: 10})
	require.Error(t, err)
	require.Equal(t, "SMS(disabled)", ch.String())
}

func TestSMSRequiresPhoneNumber(t *testing.T) {
	ch := NewSMS(config.SMSConfig{Enabled: true, Sender: "HERALD"}, zerolog.Nop())

	err := ch.Send(context.Background(), models.User{ID: 1, Name: "Alice"}, models.Alert{ID: 10})
	require.Error(t, err)

	err = ch.Send(context.Background(), models.User{ID: 1, Name: "Alice", Phone: "+15550100"}, models.Alert{ID: 10})
	require.NoError(t, err)
}
