package models

import "time"

// NotificationDelivery is one ledger row: the alert reached the user at the
// recorded instant. Rows are append-only and never updated.
type NotificationDelivery struct {
	AlertID     int64     `json:"alert_id" db:"alert_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	DeliveredAt time.Time `json:"delivered_at" db:"delivered_at"`
}
