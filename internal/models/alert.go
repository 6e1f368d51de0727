package models

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// Severities lists every severity in a stable order, used by analytics to
// emit zero counts for unused levels.
var Severities = []Severity{SeverityInfo, SeverityWarning, SeverityCritical}

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

type DeliveryType string

const (
	DeliveryInApp DeliveryType = "InApp"
	DeliveryEmail DeliveryType = "Email"
	DeliverySMS   DeliveryType = "SMS"
)

func ParseDeliveryType(s string) (DeliveryType, error) {
	switch DeliveryType(s) {
	case DeliveryInApp, DeliveryEmail, DeliverySMS:
		return DeliveryType(s), nil
	}
	return "", fmt.Errorf("unknown delivery type %q", s)
}

type AlertStatus string

const (
	AlertActive   AlertStatus = "Active"
	AlertArchived AlertStatus = "Archived"
)

func ParseAlertStatus(s string) (AlertStatus, error) {
	switch AlertStatus(s) {
	case AlertActive, AlertArchived:
		return AlertStatus(s), nil
	}
	return "", fmt.Errorf("unknown alert status %q", s)
}

// DefaultReminderFrequency applies when an alert is created without an
// explicit frequency.
const DefaultReminderFrequency = 2 * time.Hour

// Alert is a single announcement owned by the catalog. IDs are assigned by
// the catalog, monotonically increasing and never reused. Visibility is the
// org-wide flag plus explicit team and user id sets.
type Alert struct {
	ID                int64         `json:"id" db:"id"`
	Title             string        `json:"title" db:"title"`
	Message           string        `json:"message" db:"message"`
	Severity          Severity      `json:"severity" db:"severity"`
	DeliveryType      DeliveryType  `json:"delivery_type" db:"delivery_type"`
	StartTime         time.Time     `json:"start_time" db:"start_time"`
	ExpiryTime        time.Time     `json:"expiry_time" db:"expiry_time"`
	ReminderFrequency time.Duration `json:"-" db:"reminder_frequency"`
	RemindersEnabled  bool          `json:"reminders_enabled" db:"reminders_enabled"`
	Status            AlertStatus   `json:"status" db:"status"`
	OrgWide           bool          `json:"visibility_org" db:"org_wide"`
	TeamIDs           []int64       `json:"visibility_teams" db:"team_ids"`
	UserIDs           []int64       `json:"visibility_users" db:"user_ids"`
}

// IsLive reports whether the alert is deliverable at t: status Active and t
// inside [StartTime, ExpiryTime], both boundaries inclusive.
func (a Alert) IsLive(t time.Time) bool {
	return a.Status == AlertActive && !t.Before(a.StartTime) && !t.After(a.ExpiryTime)
}

// AudienceContains reports whether u is a recipient of the alert. The
// org-wide flag short-circuits; otherwise membership is a flat OR over the
// explicit user ids and the user's team id.
func (a Alert) AudienceContains(u User) bool {
	if a.OrgWide {
		return true
	}
	for _, id := range a.UserIDs {
		if id == u.ID {
			return true
		}
	}
	for _, id := range a.TeamIDs {
		if id == u.TeamID {
			return true
		}
	}
	return false
}

// HasAudience reports whether the visibility descriptor can reach anyone at
// all. Creation rejects alerts where this is false.
func (a Alert) HasAudience() bool {
	return a.OrgWide || len(a.TeamIDs) > 0 || len(a.UserIDs) > 0
}
