package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/heraldhq/herald-api/internal/models"
)

// DeliveryRepository is the append-only delivery ledger. LastDelivery is the
// dispatcher's throttling input: the most recent delivery instant for a
// (alert, user) pair, if any.
type DeliveryRepository interface {
	Append(ctx context.Context, d models.NotificationDelivery) error
	LastDelivery(ctx context.Context, alertID, userID int64) (time.Time, bool, error)
	Count(ctx context.Context) (int, error)
}

type deliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Append(ctx context.Context, d models.NotificationDelivery) error {
	const query = `INSERT INTO alert_deliveries (alert_id, user_id, delivered_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, d.AlertID, d.UserID, d.DeliveredAt)
	return errors.Wrap(err, "append delivery")
}

func (r *deliveryRepository) LastDelivery(ctx context.Context, alertID, userID int64) (time.Time, bool, error) {
	const query = `SELECT MAX(delivered_at) FROM alert_deliveries WHERE alert_id = $1 AND user_id = $2`
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, alertID, userID).Scan(&last); err != nil {
		return time.Time{}, false, errors.Wrap(err, "last delivery")
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return last.Time, true, nil
}

func (r *deliveryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alert_deliveries`).Scan(&n)
	return n, errors.Wrap(err, "count deliveries")
}
