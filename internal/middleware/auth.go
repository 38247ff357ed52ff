package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/envis/envis/internal/auth"
)

// TokenVerifier verifies admin tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AdminAuthConfig holds configuration for the admin gate.
type AdminAuthConfig struct {
	Logger      *slog.Logger
	Tokens      TokenVerifier
	Revocations RevocationChecker
}

// AdminAuth admits requests carrying a valid, unrevoked admin token in
// "Authorization: Bearer <token>". Every failure is the same 401. When the
// revocation list cannot be read the request is refused.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string) {
				cfg.Logger.Warn("admin_auth_failed",
					slog.String("reason", reason),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			}

			token := bearerToken(r)
			if token == "" {
				reject("missing_token")
				return
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				reject(err.Error())
				return
			}

			if cfg.Revocations != nil {
				revoked, err := cfg.Revocations.IsTokenRevoked(r.Context(), claims.ID)
				if err != nil {
					cfg.Logger.Error("revocation_check_failed", slog.String("error", err.Error()))
					reject("revocation_unavailable")
					return
				}
				if revoked {
					reject("revoked")
					return
				}
			}

			ctx := auth.ContextWithAdmin(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
