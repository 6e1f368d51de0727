package models

type PreferenceState string

const (
	StateUnread  PreferenceState = "Unread"
	StateRead    PreferenceState = "Read"
	StateSnoozed PreferenceState = "Snoozed"
)

// UserAlertPreference tracks one user's read/snooze state for one alert.
// Records are created lazily on first access, starting Unread.
//
// SnoozedOn is only meaningful while State is Snoozed; transitions to Read or
// Unread leave the old value in place, which is harmless because nothing
// consults it outside the Snoozed state.
type UserAlertPreference struct {
	UserID    int64           `json:"user_id" db:"user_id"`
	AlertID   int64           `json:"alert_id" db:"alert_id"`
	State     PreferenceState `json:"state" db:"state"`
	SnoozedOn *Date           `json:"snoozed_on,omitempty" db:"snoozed_on"`
}

// NewPreference returns the initial record for a (user, alert) pair.
func NewPreference(userID, alertID int64) UserAlertPreference {
	return UserAlertPreference{UserID: userID, AlertID: alertID, State: StateUnread}
}

// Snooze suppresses reminders for the given calendar day. Allowed from any
// state; re-snoozing overwrites the recorded day.
func (p *UserAlertPreference) Snooze(day Date) {
	p.State = StateSnoozed
	p.SnoozedOn = &day
}

func (p *UserAlertPreference) MarkRead() {
	p.State = StateRead
}

func (p *UserAlertPreference) MarkUnread() {
	p.State = StateUnread
}

// IsSnoozedOn reports whether reminders are suppressed on the given day.
// This is a pure query: a snooze that has lapsed (day moved on) leaves State
// at Snoozed, it simply stops matching.
func (p UserAlertPreference) IsSnoozedOn(day Date) bool {
	return p.State == StateSnoozed && p.SnoozedOn != nil && *p.SnoozedOn == day
}
