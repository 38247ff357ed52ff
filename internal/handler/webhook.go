package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/envis/envis/internal/payment"
)

// SyncTrigger requests an asynchronous catalog sync.
type SyncTrigger interface {
	Trigger()
}

// WebhookHandler receives provider events and refreshes the catalog mirror
// when products or prices change.
type WebhookHandler struct {
	responder
	secret  string
	trigger SyncTrigger
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret rejects
// every delivery; a nil trigger acknowledges events without syncing.
func NewWebhookHandler(secret string, trigger SyncTrigger, opts Options) *WebhookHandler {
	return &WebhookHandler{responder: newResponder(opts), secret: secret, trigger: trigger}
}

// Stripe handles POST /api/stripe/webhook.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		h.writeError(w, http.StatusInternalServerError, "WEBHOOK_NOT_CONFIGURED", "Webhooks are not configured")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	event, err := payment.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.Warn("webhook_rejected", slog.String("error", err.Error()))
		h.writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid signature")
		return
	}

	syncing := event.AffectsCatalog() && h.trigger != nil
	if syncing {
		h.trigger.Trigger()
	}

	h.logger.Info("webhook_received",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
		slog.Bool("catalog_sync", syncing),
	)
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
