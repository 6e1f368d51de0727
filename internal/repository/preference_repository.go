package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/heraldhq/herald-api/internal/models"
)

// PreferenceRepository owns the per-(user, alert) state records. Records are
// created lazily; every transition method is an atomic get-or-create plus
// mutate, so concurrent transitions on the same pair never lose updates.
type PreferenceRepository interface {
	GetOrCreate(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error)
	MarkRead(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error)
	MarkUnread(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error)
	Snooze(ctx context.Context, userID, alertID int64, day models.Date) (models.UserAlertPreference, error)
	CountByState(ctx context.Context, state models.PreferenceState) (int, error)
	SnoozedCountPerAlert(ctx context.Context) (map[int64]int, error)
}

type preferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

const preferenceColumns = `user_id, alert_id, state, snoozed_on`

func (r *preferenceRepository) GetOrCreate(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	const insert = `
		INSERT INTO alert_preferences (user_id, alert_id, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, alert_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, userID, alertID, models.StateUnread); err != nil {
		return models.UserAlertPreference{}, errors.Wrap(err, "create preference")
	}

	const query = `SELECT ` + preferenceColumns + ` FROM alert_preferences WHERE user_id = $1 AND alert_id = $2`
	pref, err := scanPreference(r.db.QueryRowContext(ctx, query, userID, alertID))
	if err != nil {
		return models.UserAlertPreference{}, errors.Wrap(err, "get preference")
	}
	return pref, nil
}

func (r *preferenceRepository) MarkRead(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	return r.setState(ctx, userID, alertID, models.StateRead)
}

func (r *preferenceRepository) MarkUnread(ctx context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	return r.setState(ctx, userID, alertID, models.StateUnread)
}

// setState flips the state without touching snoozed_on; a stale snooze date
// is retained on purpose.
func (r *preferenceRepository) setState(ctx context.Context, userID, alertID int64, state models.PreferenceState) (models.UserAlertPreference, error) {
	const query = `
		INSERT INTO alert_preferences (user_id, alert_id, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, alert_id) DO UPDATE SET state = EXCLUDED.state
		RETURNING ` + preferenceColumns
	pref, err := scanPreference(r.db.QueryRowContext(ctx, query, userID, alertID, state))
	if err != nil {
		return models.UserAlertPreference{}, errors.Wrapf(err, "set preference state %s", state)
	}
	return pref, nil
}

func (r *preferenceRepository) Snooze(ctx context.Context, userID, alertID int64, day models.Date) (models.UserAlertPreference, error) {
	const query = `
		INSERT INTO alert_preferences (user_id, alert_id, state, snoozed_on)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, alert_id) DO UPDATE SET state = EXCLUDED.state, snoozed_on = EXCLUDED.snoozed_on
		RETURNING ` + preferenceColumns
	pref, err := scanPreference(r.db.QueryRowContext(ctx, query, userID, alertID, models.StateSnoozed, day.String()))
	if err != nil {
		return models.UserAlertPreference{}, errors.Wrap(err, "snooze preference")
	}
	return pref, nil
}

func (r *preferenceRepository) CountByState(ctx context.Context, state models.PreferenceState) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alert_preferences WHERE state = $1`, state).Scan(&n)
	return n, errors.Wrap(err, "count preferences by state")
}

func (r *preferenceRepository) SnoozedCountPerAlert(ctx context.Context) (map[int64]int, error) {
	const query = `
		SELECT alert_id, COUNT(*)
		FROM alert_preferences
		WHERE state = $1
		GROUP BY alert_id
	`
	rows, err := r.db.QueryContext(ctx, query, models.StateSnoozed)
	if err != nil {
		return nil, errors.Wrap(err, "count snoozed per alert")
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var alertID int64
		var n int
		if err := rows.Scan(&alertID, &n); err != nil {
			return nil, errors.Wrap(err, "scan snoozed count")
		}
		counts[alertID] = n
	}
	return counts, errors.Wrap(rows.Err(), "count snoozed per alert")
}

func scanPreference(scanner interface {
	Scan(dest ...interface{}) error
}) (models.UserAlertPreference, error) {
	var (
		pref      models.UserAlertPreference
		snoozedOn sql.NullTime
	)
	if err := scanner.Scan(&pref.UserID, &pref.AlertID, &pref.State, &snoozedOn); err != nil {
		return models.UserAlertPreference{}, err
	}
	if snoozedOn.Valid {
		day := models.DateOf(snoozedOn.Time.In(time.UTC))
		pref.SnoozedOn = &day
	}
	return pref, nil
}
