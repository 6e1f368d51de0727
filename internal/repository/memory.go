package repository

import (
	"context"
	"sync"
	"time"

	"github.com/heraldhq/herald-api/internal/models"
)

// The in-memory stores back the default storage driver and the test suites.
// They hold the same contracts as the Postgres stores: per-entity mutations
// are serialized by the store mutex, and the delivery store keeps a
// last-delivery index so throttling lookups stay O(1).

type pairKey struct {
	userID  int64
	alertID int64
}

// MemoryAlertRepository keeps alerts in insertion order and assigns ids
// monotonically starting at 1. Ids are never reused, including after
// archive.
type MemoryAlertRepository struct {
	mu     sync.RWMutex
	alerts map[int64]models.Alert
	order  []int64
	nextID int64
}

func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{alerts: make(map[int64]models.Alert), nextID: 1}
}

func (r *MemoryAlertRepository) Create(_ context.Context, alert models.Alert) (models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alert.StartTime.After(alert.ExpiryTime) {
		return models.Alert{}, ErrInvalidAlertSpec
	}
	alert.ID = r.nextID
	r.nextID++
	r.alerts[alert.ID] = alert
	r.order = append(r.order, alert.ID)
	return alert, nil
}

func (r *MemoryAlertRepository) Get(_ context.Context, id int64) (models.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	alert, ok := r.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	return alert, nil
}

func (r *MemoryAlertRepository) Update(_ context.Context, id int64, upd AlertUpdate) (models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, ok := r.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}

	if upd.Title != nil {
		alert.Title = *upd.Title
	}
	if upd.Message != nil {
		alert.Message = *upd.Message
	}
	if upd.Severity != nil {
		alert.Severity = *upd.Severity
	}
	if upd.StartTime != nil {
		alert.StartTime = *upd.StartTime
	}
	if upd.ExpiryTime != nil {
		alert.ExpiryTime = *upd.ExpiryTime
	}
	if upd.OrgWide != nil {
		alert.OrgWide = *upd.OrgWide
	}
	if upd.TeamIDs != nil {
		alert.TeamIDs = append([]int64(nil), (*upd.TeamIDs)...)
	}
	if upd.UserIDs != nil {
		alert.UserIDs = append([]int64(nil), (*upd.UserIDs)...)
	}
	if upd.ReminderFrequency != nil {
		alert.ReminderFrequency = *upd.ReminderFrequency
	}
	if upd.RemindersEnabled != nil {
		alert.RemindersEnabled = *upd.RemindersEnabled
	}

	// The window invariant is enforced at commit time, like the Postgres
	// CHECK constraint.
	if alert.StartTime.After(alert.ExpiryTime) {
		return models.Alert{}, ErrInvalidAlertSpec
	}

	r.alerts[id] = alert
	return alert, nil
}

func (r *MemoryAlertRepository) Archive(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alert, ok := r.alerts[id]; ok {
		alert.Status = models.AlertArchived
		r.alerts[id] = alert
	}
	return nil
}

func (r *MemoryAlertRepository) List(_ context.Context, filter AlertFilter) ([]models.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var alerts []models.Alert
	for _, id := range r.order {
		if alert := r.alerts[id]; filter.Matches(alert) {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func (r *MemoryAlertRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alerts), nil
}

func (r *MemoryAlertRepository) CountBySeverity(_ context.Context) (map[models.Severity]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.Severity]int)
	for _, alert := range r.alerts {
		counts[alert.Severity]++
	}
	return counts, nil
}

// MemoryPreferenceRepository keys records by (user, alert) and creates them
// lazily in the Unread state.
type MemoryPreferenceRepository struct {
	mu    sync.Mutex
	prefs map[pairKey]models.UserAlertPreference
}

func NewMemoryPreferenceRepository() *MemoryPreferenceRepository {
	return &MemoryPreferenceRepository{prefs: make(map[pairKey]models.UserAlertPreference)}
}

func (r *MemoryPreferenceRepository) getOrCreateLocked(userID, alertID int64) models.UserAlertPreference {
	key := pairKey{userID: userID, alertID: alertID}
	pref, ok := r.prefs[key]
	if !ok {
		pref = models.NewPreference(userID, alertID)
		r.prefs[key] = pref
	}
	return pref
}

func (r *MemoryPreferenceRepository) GetOrCreate(_ context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(userID, alertID), nil
}

func (r *MemoryPreferenceRepository) MarkRead(_ context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pref := r.getOrCreateLocked(userID, alertID)
	pref.MarkRead()
	r.prefs[pairKey{userID: userID, alertID: alertID}] = pref
	return pref, nil
}

func (r *MemoryPreferenceRepository) MarkUnread(_ context.Context, userID, alertID int64) (models.UserAlertPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pref := r.getOrCreateLocked(userID, alertID)
	pref.MarkUnread()
	r.prefs[pairKey{userID: userID, alertID: alertID}] = pref
	return pref, nil
}

func (r *MemoryPreferenceRepository) Snooze(_ context.Context, userID, alertID int64, day models.Date) (models.UserAlertPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pref := r.getOrCreateLocked(userID, alertID)
	pref.Snooze(day)
	r.prefs[pairKey{userID: userID, alertID: alertID}] = pref
	return pref, nil
}

func (r *MemoryPreferenceRepository) CountByState(_ context.Context, state models.PreferenceState) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, pref := range r.prefs {
		if pref.State == state {
			n++
		}
	}
	return n, nil
}

func (r *MemoryPreferenceRepository) SnoozedCountPerAlert(_ context.Context) (map[int64]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int64]int)
	for _, pref := range r.prefs {
		if pref.State == models.StateSnoozed {
			counts[pref.AlertID]++
		}
	}
	return counts, nil
}

// MemoryDeliveryRepository keeps the full append log plus an index from
// (alert, user) to the latest delivery instant.
type MemoryDeliveryRepository struct {
	mu      sync.RWMutex
	entries []models.NotificationDelivery
	latest  map[pairKey]time.Time
}

func NewMemoryDeliveryRepository() *MemoryDeliveryRepository {
	return &MemoryDeliveryRepository{latest: make(map[pairKey]time.Time)}
}

func (r *MemoryDeliveryRepository) Append(_ context.Context, d models.NotificationDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, d)
	key := pairKey{userID: d.UserID, alertID: d.AlertID}
	if last, ok := r.latest[key]; !ok || d.DeliveredAt.After(last) {
		r.latest[key] = d.DeliveredAt
	}
	return nil
}

func (r *MemoryDeliveryRepository) LastDelivery(_ context.Context, alertID, userID int64) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	last, ok := r.latest[pairKey{userID: userID, alertID: alertID}]
	return last, ok, nil
}

func (r *MemoryDeliveryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}

// Entries returns a copy of the full append log, oldest first.
func (r *MemoryDeliveryRepository) Entries() []models.NotificationDelivery {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.NotificationDelivery(nil), r.entries...)
}
