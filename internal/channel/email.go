package channel

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/models"
)

// Email delivers reminders over SMTP to the recipient's address on file.
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   zerolog.Logger
}

func NewEmail(cfg config.EmailConfig, logger zerolog.Logger) (*Email, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for the email channel")
	}
	if from == "" {
		return nil, fmt.Errorf("from is required for the email channel")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	return &Email{
		host:     host,
		port:     port,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		from:     from,
		logger:   logger.With().Str("channel", "email").Logger(),
	}, nil
}

func (c *Email) Send(_ context.Context, user models.User, alert models.Alert) error {
	recipient := strings.TrimSpace(user.Email)
	if recipient == "" {
		return fmt.Errorf("user %d has no email address", user.ID)
	}

	subject := fmt.Sprintf("[Herald] %s", strings.TrimSpace(alert.Title))

	body := strings.Builder{}
	body.WriteString(strings.TrimSpace(alert.Message))
	body.WriteString("\n\n")
	body.WriteString(fmt.Sprintf("Severity: %s\n", alert.Severity))
	body.WriteString(fmt.Sprintf("Active: %s until %s\n",
		alert.StartTime.Format("2006-01-02 15:04 MST"),
		alert.ExpiryTime.Format("2006-01-02 15:04 MST")))

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		c.from, recipient, subject)

	message := []byte(headers + body.String())
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}

	if err := smtp.SendMail(addr, auth, c.from, []string{recipient}, message); err != nil {
		return err
	}

	c.logger.Info().
		Int64("user_id", user.ID).
		Int64("alert_id", alert.ID).
		Str("recipient", recipient).
		Msg("email reminder sent")
	return nil
}

func (c *Email) String() string {
	return "Email"
}
