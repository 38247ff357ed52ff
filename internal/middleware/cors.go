package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API. Entries may use
	// one wildcard, e.g. "https://*.envis.co.uk". Empty disables CORS.
	AllowedOrigins []string

	// MaxAge is the value for Access-Control-Max-Age header (in seconds).
	MaxAge int
}

// DefaultCORSConfig returns production-safe CORS defaults.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{MaxAge: 86400}
}

// CORS handles cross-origin requests and preflights. Credentials are never
// allowed; the admin token travels in the Authorization header.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           cfg.MaxAge,
	})
}

// OriginAllowed reports whether origin matches one of allowed, using the
// same single-wildcard rule as CORS. Matching is case-insensitive.
func OriginAllowed(origin string, allowed []string) bool {
	origin = strings.ToLower(strings.TrimSuffix(origin, "/"))
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSuffix(a, "/"))
		if a == "*" || a == origin {
			return true
		}
		prefix, suffix, ok := strings.Cut(a, "*")
		if ok && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
