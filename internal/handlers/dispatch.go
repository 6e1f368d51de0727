package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/dispatch"
)

// DispatchHandler exposes the manual reminder trigger. The recurring cron
// trigger calls the same dispatcher; this endpoint exists for operators and
// tests.
type DispatchHandler struct {
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
}

func NewDispatchHandler(dispatcher *dispatch.Dispatcher, logger zerolog.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		logger:     logger.With().Str("handler", "dispatch").Logger(),
	}
}

func (h *DispatchHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	report, err := h.dispatcher.Run(r.Context(), time.Now())
	if err != nil {
		h.logger.Error().Err(err).Msg("reminder dispatch failed")
		http.Error(w, "Failed to trigger reminders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
