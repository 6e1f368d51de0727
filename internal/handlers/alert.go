package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/catalog"
	"github.com/heraldhq/herald-api/internal/metrics"
	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

// AlertHandler is the admin surface: create, list, inspect, reconfigure,
// and archive alerts.
type AlertHandler struct {
	service catalog.Service
	logger  zerolog.Logger
}

func NewAlertHandler(service catalog.Service, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger.With().Str("handler", "alert").Logger(),
	}
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title                  string    `json:"title"`
		Message                string    `json:"message"`
		Severity               string    `json:"severity"`
		DeliveryType           string    `json:"delivery_type"`
		StartTime              time.Time `json:"start_time"`
		ExpiryTime             time.Time `json:"expiry_time"`
		ReminderFrequencyHours int       `json:"reminder_frequency_hours"`
		RemindersEnabled       *bool     `json:"reminders_enabled"`
		VisibilityOrg          bool      `json:"visibility_org"`
		VisibilityTeams        []int64   `json:"visibility_teams"`
		VisibilityUsers        []int64   `json:"visibility_users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	severity, err := models.ParseSeverity(payload.Severity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deliveryType := models.DeliveryInApp
	if payload.DeliveryType != "" {
		if deliveryType, err = models.ParseDeliveryType(payload.DeliveryType); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	remindersEnabled := true
	if payload.RemindersEnabled != nil {
		remindersEnabled = *payload.RemindersEnabled
	}

	alert, err := h.service.Create(r.Context(), catalog.CreateParams{
		Title:             payload.Title,
		Message:           payload.Message,
		Severity:          severity,
		DeliveryType:      deliveryType,
		StartTime:         payload.StartTime,
		ExpiryTime:        payload.ExpiryTime,
		ReminderFrequency: time.Duration(payload.ReminderFrequencyHours) * time.Hour,
		RemindersEnabled:  remindersEnabled,
		OrgWide:           payload.VisibilityOrg,
		TeamIDs:           payload.VisibilityTeams,
		UserIDs:           payload.VisibilityUsers,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidAlertSpec) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create alert")
		http.Error(w, "Failed to create alert", http.StatusInternalServerError)
		return
	}

	metrics.AlertsCreated.Inc()
	writeJSON(w, http.StatusCreated, toAlertResponse(alert))
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repository.AlertFilter

	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity, err := models.ParseSeverity(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Severity = &severity
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseAlertStatus(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Status = &status
	}

	alerts, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list alerts")
		http.Error(w, "Failed to list alerts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponses(alerts))
}

func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "alertID")
	if !ok {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	alert, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to load alert")
		http.Error(w, "Failed to load alert", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "alertID")
	if !ok {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	// Only the whitelisted fields below can change; anything else in the
	// body is rejected outright.
	var payload struct {
		Title                  *string    `json:"title"`
		Message                *string    `json:"message"`
		Severity               *string    `json:"severity"`
		StartTime              *time.Time `json:"start_time"`
		ExpiryTime             *time.Time `json:"expiry_time"`
		ReminderFrequencyHours *int       `json:"reminder_frequency_hours"`
		RemindersEnabled       *bool      `json:"reminders_enabled"`
		VisibilityOrg          *bool      `json:"visibility_org"`
		VisibilityTeams        *[]int64   `json:"visibility_teams"`
		VisibilityUsers        *[]int64   `json:"visibility_users"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	upd := repository.AlertUpdate{
		Title:            payload.Title,
		Message:          payload.Message,
		StartTime:        payload.StartTime,
		ExpiryTime:       payload.ExpiryTime,
		RemindersEnabled: payload.RemindersEnabled,
		OrgWide:          payload.VisibilityOrg,
		TeamIDs:          payload.VisibilityTeams,
		UserIDs:          payload.VisibilityUsers,
	}
	if payload.Severity != nil {
		severity, err := models.ParseSeverity(*payload.Severity)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		upd.Severity = &severity
	}
	if payload.ReminderFrequencyHours != nil {
		freq := time.Duration(*payload.ReminderFrequencyHours) * time.Hour
		if freq <= 0 {
			http.Error(w, "reminder_frequency_hours must be positive", http.StatusBadRequest)
			return
		}
		upd.ReminderFrequency = &freq
	}

	alert, err := h.service.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			http.Error(w, "Alert not found", http.StatusNotFound)
		case errors.Is(err, catalog.ErrInvalidAlertSpec):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to update alert")
			http.Error(w, "Failed to update alert", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (h *AlertHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "alertID")
	if !ok {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Archive(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Int64("alert_id", id).Msg("failed to archive alert")
		http.Error(w, "Failed to archive alert", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Alert " + strconv.FormatInt(id, 10) + " archived",
	})
}
