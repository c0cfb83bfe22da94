package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total number of HTTP requests handled by the gallery server",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the gallery server",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics records request counts and latencies per normalized route.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath keeps label cardinality bounded: known routes map to
// themselves, served uploads collapse to one label, everything else is "other".
func normalizePath(path string) string {
	switch path {
	case "/", "/image", "/video", "/image/see", "/image/add",
		"/api/media", "/api/image", "/metrics", "/healthz":
		return path
	}

	if strings.HasPrefix(path, "/uploads/") {
		return "/uploads/{file}"
	}

	return "other"
}
