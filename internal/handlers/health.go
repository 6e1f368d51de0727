package handlers

import "net/http"

// HealthCheck returns a simple JSON status
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
