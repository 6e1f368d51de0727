package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/catalog"
	"github.com/heraldhq/herald-api/internal/directory"
	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/preference"
	"github.com/heraldhq/herald-api/internal/repository"
)

// UserHandler is the end-user surface: the personal alert feed and the
// read/unread/snooze actions.
type UserHandler struct {
	directory   *directory.Directory
	catalog     catalog.Service
	preferences preference.Service
	logger      zerolog.Logger
}

func NewUserHandler(dir *directory.Directory, cat catalog.Service, prefs preference.Service, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		directory:   dir,
		catalog:     cat,
		preferences: prefs,
		logger:      logger.With().Str("handler", "user").Logger(),
	}
}

// ListAlerts returns every Active alert whose audience includes the user.
// The feed intentionally shows not-yet-started and expired alerts too; only
// the dispatcher applies the time window.
func (h *UserHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, ok := h.directory.User(userID)
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	status := models.AlertActive
	alerts, err := h.catalog.List(r.Context(), repository.AlertFilter{
		Status:         &status,
		AudienceUserID: &user.ID,
		AudienceTeamID: &user.TeamID,
	})
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list user alerts")
		http.Error(w, "Failed to list alerts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponses(alerts))
}

type userActionRequest struct {
	UserID  int64 `json:"user_id"`
	AlertID int64 `json:"alert_id"`
}

func decodeUserAction(w http.ResponseWriter, r *http.Request) (userActionRequest, bool) {
	var req userActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return userActionRequest{}, false
	}
	if req.UserID <= 0 || req.AlertID <= 0 {
		http.Error(w, "user_id and alert_id are required", http.StatusBadRequest)
		return userActionRequest{}, false
	}
	return req, true
}

func (h *UserHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAction(w, r)
	if !ok {
		return
	}
	if _, err := h.preferences.Snooze(r.Context(), req.UserID, req.AlertID, time.Now()); err != nil {
		http.Error(w, "Failed to snooze alert", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert snoozed for today"})
}

func (h *UserHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAction(w, r)
	if !ok {
		return
	}
	if _, err := h.preferences.MarkRead(r.Context(), req.UserID, req.AlertID); err != nil {
		http.Error(w, "Failed to mark alert as read", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert marked as read"})
}

func (h *UserHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAction(w, r)
	if !ok {
		return
	}
	if _, err := h.preferences.MarkUnread(r.Context(), req.UserID, req.AlertID); err != nil {
		http.Error(w, "Failed to mark alert as unread", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert marked as unread"})
}
