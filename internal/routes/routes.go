package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heraldhq/herald-api/internal/handlers"
)

// NewRouter sets up the API routes
func NewRouter(
	alerts *handlers.AlertHandler,
	users *handlers.UserHandler,
	dispatch *handlers.DispatchHandler,
	analytics *handlers.AnalyticsHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Ops routes
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Admin surface. The bare {alertID} routes must stay last: a later
	// sibling whose path cannot match clears mux's method-mismatch state,
	// and a 405 on an alert id degrades to a 404.
	admin := router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/alerts", alerts.Create).Methods(http.MethodPost)
	admin.HandleFunc("/alerts", alerts.List).Methods(http.MethodGet)
	admin.HandleFunc("/alerts/{alertID}/archive", alerts.Archive).Methods(http.MethodPost)
	admin.HandleFunc("/alerts/{alertID}", alerts.Get).Methods(http.MethodGet)
	admin.HandleFunc("/alerts/{alertID}", alerts.Update).Methods(http.MethodPut)

	// User surface
	user := router.PathPrefix("/user").Subrouter()
	user.HandleFunc("/snooze", users.Snooze).Methods(http.MethodPost)
	user.HandleFunc("/mark_read", users.MarkRead).Methods(http.MethodPost)
	user.HandleFunc("/mark_unread", users.MarkUnread).Methods(http.MethodPost)
	user.HandleFunc("/{userID}/alerts", users.ListAlerts).Methods(http.MethodGet)

	// Dispatch and analytics
	router.HandleFunc("/trigger_reminders", dispatch.Trigger).Methods(http.MethodPost)
	router.HandleFunc("/analytics", analytics.Overview).Methods(http.MethodGet)

	return router
}
