package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

// signPayload builds a Stripe-Signature header: HMAC-SHA256 over
// "{timestamp}.{payload}".
func signPayload(secret string, ts time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, typ string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":{}}}`, id, typ))
}

func TestVerifyWebhook(t *testing.T) {
	payload := eventPayload("evt_1", "price.updated")

	event, err := VerifyWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload), testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "price.updated", event.Type)
	assert.True(t, event.AffectsCatalog())
}

func TestVerifyWebhook_Rejects(t *testing.T) {
	payload := eventPayload("evt_1", "product.created")

	tests := []struct {
		name   string
		header string
		body   []byte
	}{
		{"missing header", "", payload},
		{"wrong secret", signPayload("whsec_other", time.Now(), payload), payload},
		{"tampered body", signPayload(testWebhookSecret, time.Now(), payload), eventPayload("evt_2", "product.created")},
		{"replayed", signPayload(testWebhookSecret, time.Now().Add(-time.Hour), payload), payload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyWebhook(tt.body, tt.header, testWebhookSecret)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestWebhookEvent_AffectsCatalog(t *testing.T) {
	assert.True(t, WebhookEvent{Type: "product.deleted"}.AffectsCatalog())
	assert.True(t, WebhookEvent{Type: "price.created"}.AffectsCatalog())
	assert.False(t, WebhookEvent{Type: "checkout.session.completed"}.AffectsCatalog())
	assert.False(t, WebhookEvent{Type: "customer.subscription.updated"}.AffectsCatalog())
}
