package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/heraldhq/herald-api/internal/analytics"
)

type AnalyticsHandler struct {
	service analytics.Service
	logger  zerolog.Logger
}

func NewAnalyticsHandler(service analytics.Service, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("handler", "analytics").Logger(),
	}
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build analytics overview")
		http.Error(w, "Failed to build analytics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
