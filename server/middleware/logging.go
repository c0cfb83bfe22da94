package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/indieinfra/gallery/server/util"
)

// RequestLogging attaches a request-scoped logger to the context and writes
// one access line per request once the handler returns.
func RequestLogging(logger util.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rl := util.WithRequest(logger, r)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(util.ContextWithLogger(r.Context(), rl)))

			rl.Infof("status=%d duration=%s", rec.status, time.Since(start).Round(time.Microsecond))
		})
	}
}
