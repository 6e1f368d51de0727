package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/heraldhq/herald-api/internal/models"
)

var (
	// ErrNotFound is returned when an operation references an alert id that
	// was never created.
	ErrNotFound = errors.New("alert not found")

	// ErrInvalidAlertSpec is returned when an alert would violate the
	// start_time <= expiry_time invariant or could never reach anyone.
	ErrInvalidAlertSpec = errors.New("invalid alert spec")
)

// AlertUpdate enumerates the fields an admin may change after creation. Nil
// fields are left untouched. Identity, status, and delivery type are
// deliberately absent: ids are immutable, status changes only through
// Archive, and the delivery channel is fixed at creation.
type AlertUpdate struct {
	Title             *string
	Message           *string
	Severity          *models.Severity
	StartTime         *time.Time
	ExpiryTime        *time.Time
	OrgWide           *bool
	TeamIDs           *[]int64
	UserIDs           *[]int64
	ReminderFrequency *time.Duration
	RemindersEnabled  *bool
}

// AlertFilter narrows List results. All criteria are ANDed; the audience
// criterion only applies when AudienceUserID is set, and the team clause
// inside it only when AudienceTeamID is also set.
type AlertFilter struct {
	Severity       *models.Severity
	Status         *models.AlertStatus
	AudienceUserID *int64
	AudienceTeamID *int64
}

// Matches reports whether a passes the filter. Shared by the in-memory store
// and the service tests; the Postgres store expresses the same predicate in
// SQL.
func (f AlertFilter) Matches(a models.Alert) bool {
	if f.Severity != nil && a.Severity != *f.Severity {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.AudienceUserID != nil {
		u := models.User{ID: *f.AudienceUserID}
		if f.AudienceTeamID != nil {
			u.TeamID = *f.AudienceTeamID
		}
		if !a.AudienceContains(u) {
			return false
		}
	}
	return true
}

type AlertRepository interface {
	Create(ctx context.Context, alert models.Alert) (models.Alert, error)
	Get(ctx context.Context, id int64) (models.Alert, error)
	Update(ctx context.Context, id int64, upd AlertUpdate) (models.Alert, error)
	Archive(ctx context.Context, id int64) error
	List(ctx context.Context, filter AlertFilter) ([]models.Alert, error)
	Count(ctx context.Context) (int, error)
	CountBySeverity(ctx context.Context) (map[models.Severity]int, error)
}

type alertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) AlertRepository {
	return &alertRepository{db: db}
}

const alertColumns = `id, title, message, severity, delivery_type, start_time, expiry_time,
	reminder_frequency_seconds, reminders_enabled, status, org_wide, team_ids, user_ids`

func (r *alertRepository) Create(ctx context.Context, alert models.Alert) (models.Alert, error) {
	const query = `
		INSERT INTO alerts (title, message, severity, delivery_type, start_time, expiry_time,
			reminder_frequency_seconds, reminders_enabled, status, org_wide, team_ids, user_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + alertColumns

	row := r.db.QueryRowContext(ctx, query,
		alert.Title,
		alert.Message,
		alert.Severity,
		alert.DeliveryType,
		alert.StartTime,
		alert.ExpiryTime,
		int64(alert.ReminderFrequency/time.Second),
		alert.RemindersEnabled,
		alert.Status,
		alert.OrgWide,
		pq.Array(alert.TeamIDs),
		pq.Array(alert.UserIDs),
	)
	created, err := scanAlert(row)
	if err != nil {
		return models.Alert{}, wrapAlertErr(err, "create alert")
	}
	return created, nil
}

func (r *alertRepository) Get(ctx context.Context, id int64) (models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return models.Alert{}, ErrNotFound
	}
	if err != nil {
		return models.Alert{}, errors.Wrap(err, "get alert")
	}
	return alert, nil
}

func (r *alertRepository) Update(ctx context.Context, id int64, upd AlertUpdate) (models.Alert, error) {
	set := make([]string, 0, 10)
	args := make([]interface{}, 0, 11)
	add := func(column string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Message != nil {
		add("message", *upd.Message)
	}
	if upd.Severity != nil {
		add("severity", *upd.Severity)
	}
	if upd.StartTime != nil {
		add("start_time", *upd.StartTime)
	}
	if upd.ExpiryTime != nil {
		add("expiry_time", *upd.ExpiryTime)
	}
	if upd.OrgWide != nil {
		add("org_wide", *upd.OrgWide)
	}
	if upd.TeamIDs != nil {
		add("team_ids", pq.Array(*upd.TeamIDs))
	}
	if upd.UserIDs != nil {
		add("user_ids", pq.Array(*upd.UserIDs))
	}
	if upd.ReminderFrequency != nil {
		add("reminder_frequency_seconds", int64(*upd.ReminderFrequency/time.Second))
	}
	if upd.RemindersEnabled != nil {
		add("reminders_enabled", *upd.RemindersEnabled)
	}

	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE alerts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), alertColumns)

	updated, err := scanAlert(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return models.Alert{}, ErrNotFound
	}
	if err != nil {
		return models.Alert{}, wrapAlertErr(err, "update alert")
	}
	return updated, nil
}

func (r *alertRepository) Archive(ctx context.Context, id int64) error {
	// Archiving an unknown id is a no-op, matching the admin API's leniency.
	const query = `UPDATE alerts SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, models.AlertArchived, id)
	return errors.Wrap(err, "archive alert")
}

func (r *alertRepository) List(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		where = append(where, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AudienceUserID != nil {
		args = append(args, *filter.AudienceUserID)
		cond := fmt.Sprintf("(org_wide OR $%d = ANY(user_ids)", len(args))
		if filter.AudienceTeamID != nil {
			args = append(args, *filter.AudienceTeamID)
			cond += fmt.Sprintf(" OR $%d = ANY(team_ids)", len(args))
		}
		cond += ")"
		where = append(where, cond)
	}

	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// Ids are monotonic, so id order is insertion order.
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list alerts")
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan alert")
		}
		alerts = append(alerts, alert)
	}
	return alerts, errors.Wrap(rows.Err(), "list alerts")
}

func (r *alertRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n)
	return n, errors.Wrap(err, "count alerts")
}

func (r *alertRepository) CountBySeverity(ctx context.Context) (map[models.Severity]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT severity, COUNT(*) FROM alerts GROUP BY severity`)
	if err != nil {
		return nil, errors.Wrap(err, "count alerts by severity")
	}
	defer rows.Close()

	counts := make(map[models.Severity]int)
	for rows.Next() {
		var sev models.Severity
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, errors.Wrap(err, "scan severity count")
		}
		counts[sev] = n
	}
	return counts, errors.Wrap(rows.Err(), "count alerts by severity")
}

func scanAlert(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Alert, error) {
	var (
		alert       models.Alert
		freqSeconds int64
		teamIDs     pq.Int64Array
		userIDs     pq.Int64Array
	)
	if err := scanner.Scan(
		&alert.ID,
		&alert.Title,
		&alert.Message,
		&alert.Severity,
		&alert.DeliveryType,
		&alert.StartTime,
		&alert.ExpiryTime,
		&freqSeconds,
		&alert.RemindersEnabled,
		&alert.Status,
		&alert.OrgWide,
		&teamIDs,
		&userIDs,
	); err != nil {
		return models.Alert{}, err
	}
	alert.ReminderFrequency = time.Duration(freqSeconds) * time.Second
	alert.TeamIDs = teamIDs
	alert.UserIDs = userIDs
	return alert, nil
}

// wrapAlertErr maps a check-constraint violation on the alert time window to
// ErrInvalidAlertSpec so callers see the domain error, not a pq code.
func wrapAlertErr(err error, msg string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
		return ErrInvalidAlertSpec
	}
	return errors.Wrap(err, msg)
}
