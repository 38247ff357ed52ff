package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/envis/envis/internal/auth"
	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/metrics"
)

// TokenIssuer issues admin tokens.
type TokenIssuer interface {
	Issue() (*auth.IssuedToken, error)
}

// TokenRevoker records revoked token ids until they expire.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AdminHandler handles admin login and logout.
type AdminHandler struct {
	responder
	password string
	tokens   TokenIssuer
	revoker  TokenRevoker
	metrics  metrics.Recorder
}

// NewAdminHandler creates a new AdminHandler. password is the configured
// admin secret.
func NewAdminHandler(password string, tokens TokenIssuer, revoker TokenRevoker, recorder metrics.Recorder, opts Options) *AdminHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AdminHandler{
		responder: newResponder(opts),
		password:  password,
		tokens:    tokens,
		revoker:   revoker,
		metrics:   recorder,
	}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if !h.decode(w, r, &req, nil) {
		return
	}

	if !auth.CompareSecret(req.Password, h.password) {
		h.metrics.IncAdminLogin(metrics.StatusFailed)
		h.logger.Warn("admin_login_failed", slog.String("remote_addr", r.RemoteAddr))
		h.writeError(w, http.StatusUnauthorized, "INVALID_PASSWORD", "Invalid password")
		return
	}

	issued, err := h.tokens.Issue()
	if err != nil {
		h.writeInternalError(w, r, "LOGIN_FAILED", "Login failed", err)
		return
	}

	h.metrics.IncAdminLogin(metrics.StatusSuccess)
	h.logger.Info("admin_login", slog.String("token_id", issued.ID))

	writeJSON(w, http.StatusOK, dto.AdminLoginResponse{
		Success:   true,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	})
}

// Logout handles POST /api/admin/logout. The presented token is revoked.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.AdminFromContext(r.Context())
	if claims == nil || claims.ExpiresAt == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.revoker.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.writeInternalError(w, r, "LOGOUT_FAILED", "Logout failed", err)
		return
	}

	h.logger.Info("admin_logout", slog.String("token_id", claims.ID))
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
