package middleware

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/tbraam/gamehub-server/internal/configuration"
)

// WithMiddleware applies the shared stack: CORS first, then request
// logging.
func WithMiddleware(next http.Handler, settings configuration.ApplicationSettings) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   settings.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(WithLogging(next))
}
