package payment

import (
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
)

// ErrInvalidSignature reports a webhook payload that is unsigned, badly
// signed or outside the replay window.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookTolerance is the replay window for signed webhook payloads.
const WebhookTolerance = 5 * time.Minute

// WebhookEvent is the part of a provider event the service acts on.
type WebhookEvent struct {
	ID   string
	Type string
}

// AffectsCatalog reports whether the event changes products or prices.
func (e WebhookEvent) AffectsCatalog() bool {
	return strings.HasPrefix(e.Type, "product.") || strings.HasPrefix(e.Type, "price.")
}

// VerifyWebhook checks the Stripe-Signature header of payload against
// secret and decodes the event.
func VerifyWebhook(payload []byte, signatureHeader, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		Tolerance:                WebhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}
	return &WebhookEvent{ID: event.ID, Type: string(event.Type)}, nil
}
