package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/heraldhq/herald-api/internal/metrics"
)

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		metrics.RequestCount.WithLabelValues(r.URL.Path, r.Method, status).Inc()
		metrics.RequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}
