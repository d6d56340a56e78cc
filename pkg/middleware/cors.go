package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the browser front-end to call the API. A single "*" origin
// allows any origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", DefaultIdempotencyHeader, RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Retry-After", ReplayedHeader},
		MaxAge:         600,
	})
	return c.Handler
}
