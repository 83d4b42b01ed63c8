package middleware

import (
	"net/http"
	"time"

	"travel-booking/internal/metrics"
	"travel-booking/pkg/utils"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RateLimitByIP limits each client IP to requests per window and counts rejections per route
func RateLimitByIP(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			utils.ResponseError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, try again later", nil)
		}),
	)
}

// CORS allows the configured browser origins to call the API with a session token
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
