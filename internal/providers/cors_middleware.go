package providers

import (
	"dailytrack/internal/structures"
	"net/http"

	"github.com/rs/cors"
)

// CorsMiddleware lets the mobile client's web views call the local API.
// With no configured origins every origin is allowed.
func CorsMiddleware(conf *structures.Config, next http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(conf.Cors.AllowedOrigins) > 0 {
		opts.AllowedOrigins = conf.Cors.AllowedOrigins
	} else {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler(next)
}
