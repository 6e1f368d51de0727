package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/heraldhq/herald-api/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// alertResponse is the wire shape of an alert. The cadence crosses the wire
// in whole hours.
type alertResponse struct {
	ID                     int64               `json:"id"`
	Title                  string              `json:"title"`
	Message                string              `json:"message"`
	Severity               models.Severity     `json:"severity"`
	DeliveryType           models.DeliveryType `json:"delivery_type"`
	StartTime              time.Time           `json:"start_time"`
	ExpiryTime             time.Time           `json:"expiry_time"`
	ReminderFrequencyHours int                 `json:"reminder_frequency_hours"`
	RemindersEnabled       bool                `json:"reminders_enabled"`
	Status                 models.AlertStatus  `json:"status"`
	VisibilityOrg          bool                `json:"visibility_org"`
	VisibilityTeams        []int64             `json:"visibility_teams"`
	VisibilityUsers        []int64             `json:"visibility_users"`
}

func toAlertResponse(a models.Alert) alertResponse {
	teams := a.TeamIDs
	if teams == nil {
		teams = []int64{}
	}
	users := a.UserIDs
	if users == nil {
		users = []int64{}
	}
	return alertResponse{
		ID:                     a.ID,
		Title:                  a.Title,
		Message:                a.Message,
		Severity:               a.Severity,
		DeliveryType:           a.DeliveryType,
		StartTime:              a.StartTime,
		ExpiryTime:             a.ExpiryTime,
		ReminderFrequencyHours: int(a.ReminderFrequency / time.Hour),
		RemindersEnabled:       a.RemindersEnabled,
		Status:                 a.Status,
		VisibilityOrg:          a.OrgWide,
		VisibilityTeams:        teams,
		VisibilityUsers:        users,
	}
}

func toAlertResponses(alerts []models.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return out
}
