package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/indieinfra/gallery/config"
)

// CORS applies the configured cross-origin policy. A single "*" entry allows
// every origin, in which case credentials are never allowed.
func CORS(cfg config.ServerCors) func(http.Handler) http.Handler {
	allowAll := len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*"

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: !allowAll,
	})

	return c.Handler
}
